package main

import (
	"github.com/nsplugins/nsplugins/pkg/cli"
)

func main() {
	cli.Execute()
}
