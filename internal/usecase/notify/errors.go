package notify

import "errors"

// ErrSkipped is matched by every error that means "this event is not
// notified" without anything having gone wrong.
var ErrSkipped = errors.New("notification skipped")

// skipError is a sentinel that also matches ErrSkipped.
type skipError struct{ msg string }

func (e *skipError) Error() string        { return e.msg }
func (e *skipError) Is(target error) bool { return target == ErrSkipped }

// Sentinel errors returned by the adapter.
var (
	// ErrKindDisabled means the event kind is switched off. Nothing else about
	// the event was evaluated.
	ErrKindDisabled error = &skipError{"event kind disabled"}

	// ErrNullEdit means a save produced no content change.
	ErrNullEdit error = &skipError{"null edit"}

	// ErrMinorEdit means a minor edit was skipped because minor edits are ignored.
	ErrMinorEdit error = &skipError{"minor edit ignored"}

	// ErrUploadPage means a File page was created as a side effect of an
	// upload; the upload itself is notified instead.
	ErrUploadPage error = &skipError{"file page created by upload"}

	// ErrMalformedPayload means the host payload is missing fields the event
	// needs. The event is dropped (fail closed).
	ErrMalformedPayload = errors.New("malformed event payload")

	// ErrNotificationDropped means a queued dispatch was dropped because the
	// worker pool stayed full or the service was shutting down.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")
)
