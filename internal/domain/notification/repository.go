package notification

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, n *Notification) error
	GetByNotificationID(ctx context.Context, notificationID string) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientExternalID string, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, n *Notification, at time.Time) error
}

// Publisher hands notices off for asynchronous delivery. It never reports
// failure to the caller.
type Publisher interface {
	Notify(ctx context.Context, notices ...Notice)
}

type Mailer interface {
	// Send delivers m. A blank recipient is a no-op.
	Send(ctx context.Context, m Mail) error
}
