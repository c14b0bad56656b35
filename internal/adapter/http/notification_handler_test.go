package http

import (
	"time"

	"device-approval-backend/internal/domain/notification"
)

func notificationRow(id, recipient string, at time.Time) notification.Notification {
	return notification.Notification{
		NotificationID:      id,
		RecipientExternalID: recipient,
		Kind:                notification.KindApprovalRequested,
		Subject:             "Approval requested",
		CreatedAt:           at,
	}
}
