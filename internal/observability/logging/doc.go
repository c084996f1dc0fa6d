// Package logging builds the slog loggers of the API and the worker.
//
// Use the *Context logging methods inside request handling so trace ids
// reach the log line:
//
//	logger := logging.WithRequestID(ctx, h.Logger)
//	logger.WarnContext(ctx, "url rejected", slog.String("reason", reason))
package logging
