package mysql

import (
	"context"
	"time"

	"device-approval-backend/internal/domain/notification"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type NotificationStore struct{ db *gorm.DB }

func NewNotificationStore(db *gorm.DB) *NotificationStore { return &NotificationStore{db: db} }

func (s *NotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (s *NotificationStore) GetByNotificationID(ctx context.Context, notificationID string) (*notification.Notification, error) {
	var out notification.Notification
	err := s.db.WithContext(ctx).Where("notification_id = ?", notificationID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notification.ErrNotificationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get notification")
	}
	return &out, nil
}

// ListByRecipient returns newest first.
func (s *NotificationStore) ListByRecipient(ctx context.Context, recipientExternalID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	q := s.db.WithContext(ctx).Where("recipient_external_id = ?", recipientExternalID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := []notification.Notification{}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, errors.Wrap(err, "list notifications")
}

// MarkRead keeps the first read timestamp.
func (s *NotificationStore) MarkRead(ctx context.Context, n *notification.Notification, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("id = ? AND read_at IS NULL", n.ID).
		Update("read_at", at).Error
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	return nil
}
