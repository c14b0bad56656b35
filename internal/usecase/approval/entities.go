package approval

import (
	"time"

	"device-approval-backend/internal/domain/approval"
)

// DeviceFields are the requested changes to the device. Blank values mean
// "leave as is".
type DeviceFields struct {
	Status        string
	Purpose       string
	ProjectID     *uint64
	DepartmentID  *uint64
	RealUser      string
	UsageStart    *time.Time
	UsageEnd      *time.Time
	Memo          string
	AttachmentRef string
}

type SubmitInput struct {
	DeviceID  string
	Requester string
	// Approver usernames in step order.
	Approvers []string
	Action    approval.Action
	Title     string
	Reason    string
	DueAt     *time.Time
	Device    DeviceFields
}

// DecisionInput carries the approval comment or the rejection reason.
type DecisionInput struct {
	RequestID string
	Actor     string
	Comment   string
}

type ActorInput struct {
	RequestID string
	Actor     string
}

type UpdateApproversInput struct {
	RequestID string
	Actor     string
	Approvers []string
}

// DevicePatch holds partial detail changes; nil fields are untouched.
type DevicePatch struct {
	Status        *string
	Purpose       *string
	ProjectID     *uint64
	DepartmentID  *uint64
	RealUser      *string
	UsageStart    *time.Time
	UsageEnd      *time.Time
	Memo          *string
	AttachmentRef *string
}

type UpdateApplicationInput struct {
	RequestID string
	Actor     string
	Title     *string
	Reason    *string
	DueAt     *time.Time
	Device    DevicePatch
}

type ListPendingInput struct {
	// Approver narrows the list to requests waiting on this user.
	Approver string
	Statuses []approval.Status
	Page     int
	Limit    int
}

type DetailInput struct {
	RequestID string
	// Viewer is optional; when set the response carries the viewer's steps.
	Viewer string
}

type CommentInput struct {
	RequestID string
	CommentID string
	Actor     string
	Content   string
}

type PersonDTO struct {
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
}

type StepDTO struct {
	Sequence  int        `json:"sequence"`
	Approver  PersonDTO  `json:"approver"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

type DeviceDetailDTO struct {
	DeviceID       string     `json:"device_id"`
	DeviceName     string     `json:"device_name"`
	DeviceStatus   string     `json:"device_status"`
	Action         string     `json:"action"`
	Status         string     `json:"status,omitempty"`
	Purpose        string     `json:"purpose,omitempty"`
	ProjectID      *uint64    `json:"project_id,omitempty"`
	ProjectCode    string     `json:"project_code,omitempty"`
	ProjectName    string     `json:"project_name,omitempty"`
	DepartmentID   *uint64    `json:"department_id,omitempty"`
	DepartmentCode string     `json:"department_code,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	RealUser       string     `json:"real_user,omitempty"`
	UsageStart     *time.Time `json:"usage_start,omitempty"`
	UsageEnd       *time.Time `json:"usage_end,omitempty"`
	Memo           string     `json:"memo,omitempty"`
	AttachmentRef  string     `json:"attachment_ref,omitempty"`
}

type ApprovalDTO struct {
	RequestID     string           `json:"request_id"`
	Category      string           `json:"category"`
	Status        string           `json:"status"`
	DisplayStatus string           `json:"display_status"`
	Title         string           `json:"title"`
	Reason        string           `json:"reason,omitempty"`
	Requester     PersonDTO        `json:"requester"`
	SubmittedAt   *time.Time       `json:"submitted_at,omitempty"`
	DueAt         *time.Time       `json:"due_at,omitempty"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	CurrentStep   *int             `json:"current_step,omitempty"`
	Steps         []StepDTO        `json:"steps"`
	Device        *DeviceDetailDTO `json:"device,omitempty"`
}

type CommentDTO struct {
	CommentID string    `json:"comment_id"`
	Author    PersonDTO `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ApprovalDetailDTO struct {
	ApprovalDTO
	Comments []CommentDTO `json:"comments"`
	MySteps  []StepDTO    `json:"my_steps,omitempty"`
}

type PageDTO struct {
	Items []ApprovalDTO `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
