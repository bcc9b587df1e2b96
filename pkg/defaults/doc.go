// Package defaults centralizes timeouts and tuning constants shared by
// nsplugins components.
//
// Values are chosen so that inner operations finish before the outer
// deadline that wraps them:
//   - Resolve requests: 15s, below the 30s server write timeout
//   - Bundle loading: 10s per bundle, 8 bundles in parallel
//   - OCI transfers: 2m pull, 5m push
//   - Server shutdown: 30s for graceful shutdown
package defaults
