package notification

import (
	"context"
	"time"

	"device-approval-backend/internal/domain/directory"
	"device-approval-backend/internal/domain/notification"

	"github.com/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type NotificationDTO struct {
	NotificationID string            `json:"notification_id"`
	Kind           string            `json:"kind"`
	Subject        string            `json:"subject"`
	DeepLink       string            `json:"deep_link,omitempty"`
	Vars           map[string]string `json:"vars,omitempty"`
	Read           bool              `json:"read"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Service exposes a user's in-app notifications.
type Service struct {
	store notification.Store
	users directory.Resolver
	now   func() time.Time
}

func NewService(store notification.Store, users directory.Resolver) *Service {
	return &Service{store: store, users: users, now: time.Now}
}

func (s *Service) List(ctx context.Context, actor string, unreadOnly bool, limit int) ([]NotificationDTO, error) {
	u, err := s.users.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.store.ListByRecipient(ctx, u.ExternalID, unreadOnly, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	out := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

// MarkRead is idempotent; an already read notification keeps its first
// read time.
func (s *Service) MarkRead(ctx context.Context, actor, notificationID string) (*NotificationDTO, error) {
	u, err := s.users.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	n, err := s.store.GetByNotificationID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientExternalID != u.ExternalID {
		return nil, notification.ErrNotRecipient
	}
	if !n.IsRead() {
		at := s.now()
		if err := s.store.MarkRead(ctx, n, at); err != nil {
			return nil, errors.Wrap(err, "mark notification read")
		}
		n.ReadAt = &at
	}
	dto := toDTO(n)
	return &dto, nil
}

func toDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		NotificationID: n.NotificationID,
		Kind:           string(n.Kind),
		Subject:        n.Subject,
		DeepLink:       n.DeepLink,
		Vars:           n.Vars.Data(),
		Read:           n.IsRead(),
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
}
