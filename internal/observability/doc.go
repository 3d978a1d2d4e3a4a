// Package observability groups the notifier's logging and tracing helpers.
//
// Subpackages:
//   - logging: slog construction, request-scoped loggers, webhook URL redaction
//   - tracing: tracer provider setup, ingest span middleware
//
// Prometheus collectors live next to the code they measure (notify, config,
// handler/http) and are registered on the default registry via promauto.
package observability
