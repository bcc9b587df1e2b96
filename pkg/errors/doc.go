// Package errors provides structured error types for better observability
// and programmatic error handling across nsplugins.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeActivationFailed,
//	    "failed to activate namespace plugin",
//	    cause,
//	    map[string]any{
//	        "bundle": b.SymbolicName,
//	        "handler": name,
//	    },
//	)
//
// Callers branch on the code rather than on message text:
//
//	if errors.IsCode(err, errors.ErrCodeNotFound) {
//	    // no provider matched
//	}
package errors
