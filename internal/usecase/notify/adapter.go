package notify

import (
	"fmt"
	"time"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
)

// Adapter turns host callbacks into NotificationEvents and decides whether
// the event is notified at all.
//
// Checks run cheapest first: the kind toggle, payload conversion, then the
// save-specific skips (null edit, ignored minor edit, upload page), then
// event validation. A disabled kind returns before the payload is read.
type Adapter struct {
	events  config.EventsConfig
	details config.DetailsConfig
	now     func() time.Time
}

// NewAdapter creates an Adapter from the event toggles and detail settings.
func NewAdapter(cfg *config.Config) *Adapter {
	return &Adapter{
		events:  cfg.Events,
		details: cfg.Details,
		now:     time.Now,
	}
}

// Adapt converts hook. Skips are reported as errors matching ErrSkipped;
// unusable payloads as errors matching ErrMalformedPayload.
func (a *Adapter) Adapt(hook Hook) (entity.NotificationEvent, error) {
	if hook == nil {
		return entity.NotificationEvent{}, fmt.Errorf("%w: nil hook", ErrMalformedPayload)
	}

	kind := hook.Kind()
	if !a.events.Enabled(kind) {
		return entity.NotificationEvent{}, fmt.Errorf("%w: %s", ErrKindDisabled, kind)
	}

	ev, err := hook.event()
	if err != nil {
		return entity.NotificationEvent{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, kind, err)
	}

	// Hosts that omit the time get the time the callback was received.
	if ev.Timestamp.IsZero() {
		ev.Timestamp = a.now().UTC()
	}

	if save, ok := hook.(PageSaveHook); ok {
		if err := a.checkSave(save, ev); err != nil {
			return entity.NotificationEvent{}, err
		}
	}

	if err := ev.Validate(); err != nil {
		return entity.NotificationEvent{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return ev, nil
}

func (a *Adapter) checkSave(h PageSaveHook, ev entity.NotificationEvent) error {
	if h.NullEdit {
		return ErrNullEdit
	}
	if !h.IsNew() && h.IsMinor() && a.details.IgnoreMinorEdits {
		return ErrMinorEdit
	}
	if h.IsNew() && ev.Subject.Title.Namespace == entity.NamespaceFile {
		return ErrUploadPage
	}
	return nil
}
