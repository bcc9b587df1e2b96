// Package logging provides structured logging utilities for nsplugins components.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// so the daemon, the CLI and the registry all emit the same JSON shape. It
// supports environment-based level configuration, module/version context
// injection, and source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: diagnostic detail, including source location
//   - INFO: normal operation (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("nspluginsd", version)
//	    slog.Info("bundle installed", "bundle", b.SymbolicName)
//	}
//
// Explicit level, e.g. from a CLI flag:
//
//	logging.SetDefaultStructuredLoggerWithLevel("nsplugins", version, "debug")
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given:
//
//	LOG_LEVEL=debug nspluginsd
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "lazy provider promoted",
//	    "module": "nspluginsd",
//	    "version": "v1.0.0",
//	    "registry": "namespace-plugins",
//	    "key": "org.example.tx@1.0.0"
//	}
package logging
