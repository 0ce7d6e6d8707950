// Package logger provides structured logging for the grandkitchen client SDK.
//
// Every API request and response in the SDK is logged through this package, so
// implementations must be cheap when the level filters the record out.
//
// # Logger Interface
//
// The Logger interface defines the contract for all logging implementations:
//
//	type Logger interface {
//	    Debug(msg string, fields map[string]interface{})
//	    Info(msg string, fields map[string]interface{})
//	    Warn(msg string, fields map[string]interface{})
//	    Error(msg string, fields map[string]interface{})
//	    With(fields map[string]interface{}) Logger
//	    SetLevel(level string)
//	}
//
// # Log Levels
//
// Supported log levels in order of severity:
//   - DEBUG: per-request transport detail (method, path, status, duration)
//   - INFO: session and lifecycle events
//   - WARN: degraded but recoverable situations (retries, stale responses dropped)
//   - ERROR: failed operations surfaced to the caller
//
// # Contextual Logging
//
// Create child loggers with persistent fields:
//
//	cartLog := log.With(map[string]interface{}{
//	    "component":   "cart",
//	    "employee_id": 42,
//	})
//
// # Configuration
//
// The default level comes from the GRANDK_LOG_LEVEL environment variable when
// set (debug, info, warn, error), falling back to info.
//
// Never log bearer tokens, OTP codes, or passwords through this package; the
// transport redacts sensitive fields before logging.
package logger
