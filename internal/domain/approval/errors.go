package approval

import "device-approval-backend/pkg/apperr"

var (
	ErrRequestNotFound = apperr.NotFound("APPROVAL_NOT_FOUND", "approval request not found")
	ErrStepNotFound    = apperr.NotFound("APPROVAL_STEP_NOT_FOUND", "approval step not found")
	ErrCommentNotFound = apperr.NotFound("COMMENT_NOT_FOUND", "comment not found")

	ErrStepNotAssigned  = apperr.Forbidden("STEP_NOT_ASSIGNED", "no approval step is assigned to this user")
	ErrNotRequester     = apperr.Forbidden("NOT_REQUESTER", "only the requester may perform this action")
	ErrNotCommentAuthor = apperr.Forbidden("NOT_COMMENT_AUTHOR", "only the author may modify this comment")

	ErrStepAlreadyDecided     = apperr.Conflict("STEP_ALREADY_DECIDED", "approval step already decided")
	ErrPreviousStepIncomplete = apperr.Conflict("PREVIOUS_STEP_INCOMPLETE", "previous approval step is not complete")
	ErrRequestCompleted       = apperr.Conflict("APPROVAL_COMPLETED", "approval request is already completed")
	ErrInvalidTransition      = apperr.Conflict("INVALID_TRANSITION", "approval request is not in a state that allows this action")

	ErrInvalidApprovers   = apperr.InvalidInput("INVALID_APPROVERS", "exactly two approvers are required")
	ErrDuplicateApprover  = apperr.InvalidInput("DUPLICATE_APPROVER", "the same approver cannot be assigned twice")
	ErrInvalidAction      = apperr.InvalidInput("INVALID_ACTION", "unknown device action")
	ErrTitleRequired      = apperr.InvalidInput("TITLE_REQUIRED", "title is required")
	ErrReasonRequired     = apperr.InvalidInput("REASON_REQUIRED", "reason is required")
	ErrContentRequired    = apperr.InvalidInput("CONTENT_REQUIRED", "comment content is required")
	ErrInvalidUsageWindow = apperr.InvalidInput("INVALID_USAGE_WINDOW", "usage end must not be before usage start")
	ErrInvalidSequence    = apperr.InvalidInput("INVALID_STEP_SEQUENCE", "step sequence must be contiguous from 1")
)
