package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/handler/http/requestid"
	"wiki-notify/internal/infra/webhook"
	"wiki-notify/internal/observability/logging"
)

// Outcome is the final state of one processed callback.
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeQueued     Outcome = "queued"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeNullEdit   Outcome = "null_edit"
	OutcomeMinorEdit  Outcome = "minor_edit"
	OutcomeUploadPage Outcome = "upload_page"
	OutcomeExcluded   Outcome = "excluded"
	OutcomePermission Outcome = "permission"
	OutcomeNoWebhook  Outcome = "no_webhook"
	OutcomeMalformed  Outcome = "malformed"
	OutcomeFailed     Outcome = "failed"
	OutcomeDropped    Outcome = "dropped"
)

// Result describes what happened to one callback. Err is set for every
// outcome other than sent and queued; it is informational only.
type Result struct {
	Kind      entity.Kind
	Outcome   Outcome
	Err       error
	RequestID string
}

// Service runs the pipeline for each callback.
//
// In synchronous mode Notify returns once the webhook has answered or the
// webhook timeout has elapsed. In async mode the dispatch step runs on a
// bounded worker pool and Notify returns OutcomeQueued; ordering between
// queued notifications is not guaranteed.
type Service struct {
	adapter   *Adapter
	filter    *Filter
	formatter Formatter
	sender    Sender

	async          bool
	queueTimeout   time.Duration
	workerPool     chan struct{}      // Semaphore for limiting concurrent dispatches
	wg             sync.WaitGroup     // Track in-flight dispatches
	shutdownCtx    context.Context    // Context for signaling shutdown
	shutdownCancel context.CancelFunc // Cancel function for shutdown
}

// NewService wires the pipeline from cfg.
//
// Parameters:
//   - cfg: Validated configuration (event toggles, exclusions, dispatch mode)
//   - formatter: Renders events into messages
//   - sender: Delivers messages, normally a *webhook.Dispatcher
func NewService(cfg *config.Config, formatter Formatter, sender Sender) *Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	maxConcurrent := cfg.Dispatch.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Service{
		adapter:        NewAdapter(cfg),
		filter:         NewFilter(cfg.Exclusions),
		formatter:      formatter,
		sender:         sender,
		async:          cfg.Dispatch.Async,
		queueTimeout:   cfg.Dispatch.QueueTimeout.Std(),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// Notify processes one host callback. It never fails: every way an event can
// end is reported through Result, logged with the request ID, and counted.
func (s *Service) Notify(ctx context.Context, hook Hook) Result {
	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
		ctx = requestid.WithRequestID(ctx, requestID)
	}

	res := s.run(ctx, hook)
	res.RequestID = requestID
	s.report(ctx, res)
	return res
}

func (s *Service) run(ctx context.Context, hook Hook) Result {
	var kind entity.Kind
	if hook != nil {
		kind = hook.Kind()
	}

	ev, err := s.adapter.Adapt(hook)
	if err != nil {
		return Result{Kind: kind, Outcome: adapterOutcome(err), Err: err}
	}

	if reason, ok := s.filter.Match(ev.Titles()...); ok {
		return Result{Kind: kind, Outcome: OutcomeExcluded, Err: &ExclusionError{Reason: reason}}
	}

	msg, err := s.formatter.Format(ev)
	if err != nil {
		return Result{Kind: kind, Outcome: OutcomeFailed, Err: err}
	}

	if s.async {
		s.wg.Add(1)
		go s.dispatchAsync(requestid.FromContext(ctx), ev, msg)
		return Result{Kind: kind, Outcome: OutcomeQueued}
	}

	outcome, err := s.dispatch(ctx, ev, msg)
	return Result{Kind: kind, Outcome: outcome, Err: err}
}

// dispatch sends msg and classifies the result.
func (s *Service) dispatch(ctx context.Context, ev entity.NotificationEvent, msg entity.OutboundMessage) (Outcome, error) {
	start := time.Now()
	err := s.sender.Send(ctx, msg, ev.Actor)
	outcome := dispatchOutcome(err)
	RecordDispatch(outcome, time.Since(start))
	return outcome, err
}

// dispatchAsync runs dispatch on the worker pool. The caller has already
// added to s.wg.
func (s *Service) dispatchAsync(requestID string, ev entity.NotificationEvent, msg entity.OutboundMessage) {
	defer s.wg.Done()

	ctx := requestid.WithRequestID(s.shutdownCtx, requestID)
	logger := logging.WithRequestID(ctx, slog.Default())

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in notification dispatch",
				slog.String("kind", string(ev.Kind)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			RecordOutcome(string(ev.Kind), OutcomeFailed)
		}
	}()

	// Acquire worker slot (with timeout to prevent piling up goroutines)
	timer := time.NewTimer(s.queueTimeout)
	defer timer.Stop()
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-timer.C:
		s.drop(ctx, ev, "pool_full")
		return
	case <-s.shutdownCtx.Done():
		s.drop(ctx, ev, "shutdown")
		return
	}

	IncrementActiveDispatches()
	defer DecrementActiveDispatches()

	outcome, err := s.dispatch(ctx, ev, msg)
	s.report(ctx, Result{Kind: ev.Kind, Outcome: outcome, Err: err, RequestID: requestID})
}

func (s *Service) drop(ctx context.Context, ev entity.NotificationEvent, reason string) {
	RecordDropped(reason)
	s.report(ctx, Result{Kind: ev.Kind, Outcome: OutcomeDropped, Err: ErrNotificationDropped})
}

// report logs and counts a result. Skips are debug-level, failures warn.
func (s *Service) report(ctx context.Context, res Result) {
	RecordOutcome(string(res.Kind), res.Outcome)

	logger := logging.WithRequestID(ctx, slog.Default())
	attrs := []any{
		slog.String("kind", string(res.Kind)),
		slog.String("outcome", string(res.Outcome)),
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("error", logging.SanitizeError(res.Err)))
	}

	switch res.Outcome {
	case OutcomeSent:
		logger.Info("Notification sent", attrs...)
	case OutcomeQueued:
		logger.Debug("Notification queued", attrs...)
	case OutcomeFailed, OutcomeMalformed, OutcomeDropped, OutcomeNoWebhook:
		logger.Warn("Notification not delivered", attrs...)
	default:
		logger.Debug("Notification skipped", attrs...)
	}
}

// Shutdown stops accepting queued work and waits for in-flight dispatches
// until ctx is done.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")

	// Signal waiting goroutines to stop
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}

// ExclusionError reports which exclusion rule suppressed an event.
type ExclusionError struct {
	Reason Reason
}

func (e *ExclusionError) Error() string        { return "subject excluded by " + string(e.Reason) }
func (e *ExclusionError) Is(target error) bool { return target == ErrSkipped }

func adapterOutcome(err error) Outcome {
	switch {
	case errors.Is(err, ErrKindDisabled):
		return OutcomeDisabled
	case errors.Is(err, ErrNullEdit):
		return OutcomeNullEdit
	case errors.Is(err, ErrMinorEdit):
		return OutcomeMinorEdit
	case errors.Is(err, ErrUploadPage):
		return OutcomeUploadPage
	case errors.Is(err, ErrMalformedPayload):
		return OutcomeMalformed
	default:
		return OutcomeFailed
	}
}

func dispatchOutcome(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSent
	case errors.Is(err, webhook.ErrSuppressedByPermission):
		return OutcomePermission
	case errors.Is(err, webhook.ErrNoWebhookURL):
		return OutcomeNoWebhook
	default:
		return OutcomeFailed
	}
}
