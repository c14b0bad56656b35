package approval

import (
	"time"

	"device-approval-backend/internal/domain/directory"
)

type Category string

const (
	CategoryDevice  Category = "DEVICE"
	CategoryLeave   Category = "LEAVE"
	CategorySeminar Category = "SEMINAR"
	CategoryExpense Category = "EXPENSE"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepApproved   StepStatus = "APPROVED"
	StepRejected   StepStatus = "REJECTED"
)

type Action string

const (
	ActionRental   Action = "RENTAL"
	ActionReturn   Action = "RETURN"
	ActionDisposal Action = "DISPOSAL"
	ActionRecovery Action = "RECOVERY"
	ActionPurchase Action = "PURCHASE"
	ActionModify   Action = "MODIFY"
)

func (a Action) Valid() bool {
	switch a {
	case ActionRental, ActionReturn, ActionDisposal, ActionRecovery, ActionPurchase, ActionModify:
		return true
	}
	return false
}

// Identity is a snapshot of a directory user taken when a row is written.
// It is never refreshed from the directory afterwards.
type Identity struct {
	ExternalID string `gorm:"type:varchar(64)"`
	Username   string `gorm:"type:varchar(64)"`
	Name       string `gorm:"type:varchar(128)"`
	Email      string `gorm:"type:varchar(255)"`
}

func IdentityOf(u *directory.User) Identity {
	if u == nil {
		return Identity{}
	}
	return Identity{ExternalID: u.ExternalID, Username: u.Username, Name: u.DisplayName, Email: u.Email}
}

// Table: approval_requests
type Request struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	RequestID   string     `gorm:"column:request_id;type:char(32);not null;uniqueIndex:ux_approval_requests_request_id"`
	Category    Category   `gorm:"column:category;type:varchar(16);not null;index:idx_approval_requests_category_status"`
	Status      Status     `gorm:"column:status;type:varchar(16);not null;index:idx_approval_requests_category_status"`
	Title       string     `gorm:"column:title;type:varchar(255);not null"`
	Reason      string     `gorm:"column:reason;type:text"`
	Requester   Identity   `gorm:"embedded;embeddedPrefix:requester_"`
	SubmittedAt *time.Time `gorm:"column:submitted_at;index"`
	DueAt       *time.Time `gorm:"column:due_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Steps        []Step        `gorm:"foreignKey:ApprovalRequestID"`
	DeviceDetail *DeviceDetail `gorm:"foreignKey:ApprovalRequestID"`
}

func (Request) TableName() string { return "approval_requests" }

// Table: approval_steps
type Step struct {
	ID                uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalRequestID uint64     `gorm:"column:approval_request_id;not null;uniqueIndex:ux_approval_steps_request_seq"`
	Sequence          int        `gorm:"column:sequence;not null;uniqueIndex:ux_approval_steps_request_seq"`
	Approver          Identity   `gorm:"embedded;embeddedPrefix:approver_"`
	Status            StepStatus `gorm:"column:status;type:varchar(16);not null"`
	DecidedAt         *time.Time `gorm:"column:decided_at"`
	Comment           string     `gorm:"column:comment;type:text"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Step) TableName() string { return "approval_steps" }

// Table: approval_comments
type Comment struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	CommentID         string    `gorm:"column:comment_id;type:char(32);not null;uniqueIndex:ux_approval_comments_comment_id"`
	ApprovalRequestID uint64    `gorm:"column:approval_request_id;not null;index"`
	Author            Identity  `gorm:"embedded;embeddedPrefix:author_"`
	Content           string    `gorm:"column:content;type:text;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Comment) TableName() string { return "approval_comments" }

// Detail is the category-specific payload of a request.
type Detail interface {
	Category() Category
}

// Table: device_approval_details. Override fields are deltas applied to the
// device only once the request is approved.
type DeviceDetail struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalRequestID uint64 `gorm:"column:approval_request_id;not null;uniqueIndex:ux_device_details_request"`

	DeviceRefID  uint64 `gorm:"column:device_ref_id;not null;index"`
	DeviceID     string `gorm:"column:device_id;type:varchar(64);not null"`
	DeviceName   string `gorm:"column:device_name;type:varchar(128)"`
	DeviceStatus string `gorm:"column:device_status;type:varchar(32)"`

	Action         Action     `gorm:"column:action;type:varchar(16);not null"`
	Status         string     `gorm:"column:status;type:varchar(32)"`
	Purpose        string     `gorm:"column:purpose;type:varchar(255)"`
	ProjectID      *uint64    `gorm:"column:project_id"`
	ProjectCode    string     `gorm:"column:project_code;type:varchar(32)"`
	ProjectName    string     `gorm:"column:project_name;type:varchar(128)"`
	DepartmentID   *uint64    `gorm:"column:department_id"`
	DepartmentCode string     `gorm:"column:department_code;type:varchar(32)"`
	DepartmentName string     `gorm:"column:department_name;type:varchar(128)"`
	RealUser       string     `gorm:"column:real_user;type:varchar(64)"`
	UsageStart     *time.Time `gorm:"column:usage_start"`
	UsageEnd       *time.Time `gorm:"column:usage_end"`
	Memo           string     `gorm:"column:memo;type:text"`
	AttachmentRef  string     `gorm:"column:attachment_ref;type:varchar(512)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeviceDetail) TableName() string { return "device_approval_details" }

func (DeviceDetail) Category() Category { return CategoryDevice }

// Detail returns the payload matching the request category, or nil.
func (r *Request) Detail() Detail {
	switch r.Category {
	case CategoryDevice:
		if r.DeviceDetail != nil {
			return r.DeviceDetail
		}
	}
	return nil
}
