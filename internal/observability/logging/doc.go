// Package logging builds the process logger and small helpers around it.
//
// Logs are JSON by default and plain text when LOG_FORMAT=text. Pipeline
// code attaches the ingest request ID to every line:
//
//	logger := logging.WithRequestID(ctx, slog.Default())
//	logger.Info("notification sent", slog.String("kind", string(ev.Kind)))
//
// Webhook URLs carry their secret in the path, so anything that may contain
// one goes through RedactURL or SanitizeError before it is logged.
package logging
