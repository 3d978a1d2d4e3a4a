// Package tracing wires OpenTelemetry spans into the notifier.
//
// The ingest server is wrapped in Middleware, which continues any W3C trace
// context sent by the wiki host. The dispatcher starts a child span per
// webhook post. Exporters are left to the global provider; without one the
// spans are no-ops.
package tracing
