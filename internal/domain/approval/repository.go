package approval

import "context"

// ListFilter selects requests for the pending queue.
type ListFilter struct {
	Category Category
	Statuses []Status
	// When set, only requests whose active step is held by this approver.
	ApproverExternalID string
	Limit              int
	Offset             int
}

type Repository interface {
	// Create inserts the request together with its steps and detail.
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	// GetByRequestIDForUpdate locks the request row; call inside a tx.
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*Request, error)
	SaveState(ctx context.Context, r *Request) error
	SaveDetail(ctx context.Context, d *DeviceDetail) error
	ListByCategoryAndStatuses(ctx context.Context, f ListFilter) ([]Request, int64, error)
	ListByCategoryAndRequester(ctx context.Context, category Category, requesterExternalID string) ([]Request, error)
	// Delete removes the request with its steps, comments and detail.
	Delete(ctx context.Context, r *Request) error
}

type StepRepository interface {
	ListByRequest(ctx context.Context, requestPK uint64) ([]Step, error)
	GetBySequence(ctx context.Context, requestPK uint64, seq int) (*Step, error)
	// ListByApprover returns the steps of one request held by an approver.
	ListByApprover(ctx context.Context, requestPK uint64, approverExternalID string) ([]Step, error)
	// UpdateFrom writes s only if the stored status still equals prev.
	// Returns ErrStepAlreadyDecided when the row was changed underneath.
	UpdateFrom(ctx context.Context, s *Step, prev StepStatus) error
	// ReplaceAll deletes every step of the request and inserts steps.
	ReplaceAll(ctx context.Context, requestPK uint64, steps []Step) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByCommentID(ctx context.Context, requestPK uint64, commentID string) (*Comment, error)
	ListByRequest(ctx context.Context, requestPK uint64) ([]Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, c *Comment) error
}
