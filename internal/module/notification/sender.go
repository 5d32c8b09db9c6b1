package notification

import "context"

// Sender delivers notifications over one channel.
type Sender interface {
	// Channel returns the channel this sender serves.
	Channel() string

	// Send delivers the notification. A non-nil error counts as a
	// failed attempt.
	Send(ctx context.Context, n *Notification) error
}
