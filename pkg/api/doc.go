// Package api wires the nspluginsd daemon.
//
// It is a thin layer over the reusable packages:
//   - pkg/config supplies the configuration
//   - pkg/oci pulls configured bundle artifacts into the bundle root
//   - pkg/bundle loads the bundle root and watches it for changes
//   - pkg/extender feeds bundle lifecycle events into pkg/namespace
//   - pkg/server serves the namespace.Handlers routes
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	return api.Serve(ctx, cfg)
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - GET /v1/namespaces - registered namespace definitions
//   - GET /v1/bundles - registered bundles and registry statistics
//   - GET /v1/catalog - XML catalog entries
//   - GET /v1/resolve/handler?uri= - handler for a namespace URI
//   - GET /v1/resolve/entity?publicId=&systemId=[&raw=true] - schema lookup
//
// System endpoints:
//   - GET /health, GET /ready, GET /metrics
package api
