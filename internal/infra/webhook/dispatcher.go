// Package webhook delivers formatted notifications to a chat incoming webhook.
//
// A Dispatcher makes exactly one POST per message. It never retries: non-2xx
// responses and transport failures are classified, logged by the caller and
// dropped.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/observability/logging"
	"wiki-notify/internal/observability/tracing"
)

// PermissionChecker is the host capability answering whether a user holds a
// named permission.
type PermissionChecker interface {
	HasPermission(user entity.User, permission string) bool
}

// maxResponseBody bounds how much of a response body is read.
const maxResponseBody = 64 << 10

// Dispatcher posts messages to the configured webhook.
type Dispatcher struct {
	cfg     *config.Config
	perms   PermissionChecker
	poster  poster
	limiter *RateLimiter
}

// NewDispatcher creates a Dispatcher from cfg. perms may be nil when no
// suppressing permission is configured.
//
// The HTTP transport is chosen by webhook.send_method and built once; TLS
// verification stays on unless webhook.insecure_skip_verify is set, which is
// logged as a warning here.
func NewDispatcher(cfg *config.Config, perms PermissionChecker) (*Dispatcher, error) {
	p, err := newPoster(cfg.Webhook)
	if err != nil {
		return nil, fmt.Errorf("create webhook transport: %w", err)
	}

	if cfg.Webhook.InsecureSkipVerify {
		slog.Warn("TLS certificate verification disabled for webhook requests",
			slog.String("webhook", logging.RedactURL(cfg.Webhook.URL)))
	}
	if cfg.Webhook.URL == "" {
		slog.Warn("No webhook URL configured; notifications will be dropped")
	}

	return &Dispatcher{
		cfg:     cfg,
		perms:   perms,
		poster:  p,
		limiter: NewRateLimiter(cfg.Webhook.RateLimitPerSecond, 1),
	}, nil
}

// Send delivers msg on behalf of actor.
//
// Returns:
//   - ErrSuppressedByPermission: actor holds the suppressing permission
//   - ErrNoWebhookURL: no webhook URL configured
//   - *RateLimitError, *ClientError, *ServerError: non-2xx response
//   - other errors: encoding, rate limiter or transport failure
//
// Only the last two groups involve a network call.
func (d *Dispatcher) Send(ctx context.Context, msg entity.OutboundMessage, actor entity.User) error {
	if perm := d.cfg.SuppressingPermission; perm != "" && d.perms != nil && d.perms.HasPermission(actor, perm) {
		return ErrSuppressedByPermission
	}

	if d.cfg.Webhook.URL == "" {
		logging.WithRequestID(ctx, slog.Default()).Warn("Notification not sent: webhook URL is empty",
			slog.String("actor", actor.Name))
		return ErrNoWebhookURL
	}

	body, err := json.Marshal(BuildPayload(msg, d.cfg))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Webhook.Timeout.Std())
	defer cancel()

	ctx, span := tracing.GetTracer().Start(ctx, "webhook.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("webhook.send_method", string(d.cfg.Webhook.Method)),
			attribute.Int("webhook.body_bytes", len(body)),
		))
	defer span.End()

	err = d.post(ctx, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, logging.SanitizeError(err))
	}
	return err
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := d.poster.post(ctx, d.cfg.Webhook.URL, body)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	logging.WithRequestID(ctx, slog.Default()).Debug("Webhook responded",
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	return statusError(resp, respBody)
}
