package main

import (
	"context"
	"log"
	"os"

	"github.com/nsplugins/nsplugins/pkg/api"
	"github.com/nsplugins/nsplugins/pkg/config"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		log.Fatal(err)
	}
	if err := api.Serve(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}
