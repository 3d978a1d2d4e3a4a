// Package notify runs the notification pipeline: host callback in, webhook
// post out.
//
// A callback goes through the Adapter (kind toggles, payload conversion, save
// skips), the Filter (subject exclusions), the Formatter and finally the
// Sender. Every step that declines an event reports it as an Outcome; none of
// them surfaces an error to the host.
package notify

import (
	"context"

	"wiki-notify/internal/domain/entity"
)

// Formatter renders a validated event into an outbound message.
type Formatter interface {
	Format(ev entity.NotificationEvent) (entity.OutboundMessage, error)
}

// Sender delivers a message on behalf of the acting user.
//
// Implementations must:
//   - Make at most one network call per message
//   - Respect context cancellation and timeout
//   - Return a sentinel error, not make a call, when the message is suppressed
//
// The webhook Dispatcher is the production Sender.
type Sender interface {
	Send(ctx context.Context, msg entity.OutboundMessage, actor entity.User) error
}
