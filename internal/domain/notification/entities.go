package notification

import (
	"time"

	"device-approval-backend/pkg/apperr"

	"gorm.io/datatypes"
)

var (
	ErrNotificationNotFound = apperr.NotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	ErrNotRecipient         = apperr.Forbidden("NOT_RECIPIENT", "notification belongs to another user")
)

type Kind string

const (
	KindApprovalRequested Kind = "APPROVAL_REQUESTED"
	KindApprovalApproved  Kind = "APPROVAL_APPROVED"
	KindApprovalRejected  Kind = "APPROVAL_REJECTED"
	KindApprovalCancelled Kind = "APPROVAL_CANCELLED"
	KindCommentAdded      Kind = "COMMENT_ADDED"
)

// Notice is an outbound notification produced by a workflow transition.
type Notice struct {
	RecipientExternalID string
	RecipientEmail      string
	RecipientName       string
	Subject             string
	Kind                Kind
	DeepLink            string
	Template            string
	Vars                map[string]string
}

// Table: notifications. In-app copy of every delivered notice.
type Notification struct {
	ID                  uint64                                 `gorm:"column:id;primaryKey;autoIncrement"`
	NotificationID      string                                 `gorm:"column:notification_id;type:varchar(36);not null;uniqueIndex:ux_notifications_notification_id"`
	RecipientExternalID string                                 `gorm:"column:recipient_external_id;type:varchar(64);not null;index:idx_notifications_recipient"`
	Kind                Kind                                   `gorm:"column:kind;type:varchar(32);not null"`
	Subject             string                                 `gorm:"column:subject;type:varchar(255);not null"`
	DeepLink            string                                 `gorm:"column:deep_link;type:varchar(512)"`
	Vars                datatypes.JSONType[map[string]string] `gorm:"column:vars"`
	ReadAt              *time.Time                             `gorm:"column:read_at"`
	CreatedAt           time.Time                              `gorm:"column:created_at;autoCreateTime;index:idx_notifications_recipient"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) IsRead() bool { return n.ReadAt != nil }

// Mail is a single templated message for the mail collaborator.
type Mail struct {
	To       string
	ToName   string
	Subject  string
	Template string
	Vars     map[string]string
}
