package approvalmock

import (
	"context"

	domain "device-approval-backend/internal/domain/approval"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.StepRepository    = (*StepRepo)(nil)
	_ domain.CommentRepository = (*CommentRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes are no-ops.
type Repo struct {
	CreateFn                     func(ctx context.Context, r *domain.Request) error
	GetByRequestIDFn             func(ctx context.Context, requestID string) (*domain.Request, error)
	GetByRequestIDForUpdateFn    func(ctx context.Context, requestID string) (*domain.Request, error)
	SaveStateFn                  func(ctx context.Context, r *domain.Request) error
	SaveDetailFn                 func(ctx context.Context, d *domain.DeviceDetail) error
	ListByCategoryAndStatusesFn  func(ctx context.Context, f domain.ListFilter) ([]domain.Request, int64, error)
	ListByCategoryAndRequesterFn func(ctx context.Context, c domain.Category, requester string) ([]domain.Request, error)
	DeleteFn                     func(ctx context.Context, r *domain.Request) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveState(ctx context.Context, r *domain.Request) error {
	if m.SaveStateFn != nil {
		return m.SaveStateFn(ctx, r)
	}
	return nil
}

func (m *Repo) SaveDetail(ctx context.Context, d *domain.DeviceDetail) error {
	if m.SaveDetailFn != nil {
		return m.SaveDetailFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListByCategoryAndStatuses(ctx context.Context, f domain.ListFilter) ([]domain.Request, int64, error) {
	if m.ListByCategoryAndStatusesFn != nil {
		return m.ListByCategoryAndStatusesFn(ctx, f)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) ListByCategoryAndRequester(ctx context.Context, c domain.Category, requester string) ([]domain.Request, error) {
	if m.ListByCategoryAndRequesterFn != nil {
		return m.ListByCategoryAndRequesterFn(ctx, c, requester)
	}
	return nil, context.Canceled
}

func (m *Repo) Delete(ctx context.Context, r *domain.Request) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, r)
	}
	return nil
}

// StepRepo is a function-backed mock that satisfies domain.StepRepository.
type StepRepo struct {
	ListByRequestFn  func(ctx context.Context, requestPK uint64) ([]domain.Step, error)
	GetBySequenceFn  func(ctx context.Context, requestPK uint64, seq int) (*domain.Step, error)
	ListByApproverFn func(ctx context.Context, requestPK uint64, approver string) ([]domain.Step, error)
	UpdateFromFn     func(ctx context.Context, s *domain.Step, prev domain.StepStatus) error
	ReplaceAllFn     func(ctx context.Context, requestPK uint64, steps []domain.Step) error
}

func (m *StepRepo) ListByRequest(ctx context.Context, requestPK uint64) ([]domain.Step, error) {
	if m.ListByRequestFn != nil {
		return m.ListByRequestFn(ctx, requestPK)
	}
	return nil, context.Canceled
}

func (m *StepRepo) GetBySequence(ctx context.Context, requestPK uint64, seq int) (*domain.Step, error) {
	if m.GetBySequenceFn != nil {
		return m.GetBySequenceFn(ctx, requestPK, seq)
	}
	return nil, context.Canceled
}

func (m *StepRepo) ListByApprover(ctx context.Context, requestPK uint64, approver string) ([]domain.Step, error) {
	if m.ListByApproverFn != nil {
		return m.ListByApproverFn(ctx, requestPK, approver)
	}
	return nil, context.Canceled
}

func (m *StepRepo) UpdateFrom(ctx context.Context, s *domain.Step, prev domain.StepStatus) error {
	if m.UpdateFromFn != nil {
		return m.UpdateFromFn(ctx, s, prev)
	}
	return nil
}

func (m *StepRepo) ReplaceAll(ctx context.Context, requestPK uint64, steps []domain.Step) error {
	if m.ReplaceAllFn != nil {
		return m.ReplaceAllFn(ctx, requestPK, steps)
	}
	return nil
}

// CommentRepo is a function-backed mock that satisfies domain.CommentRepository.
type CommentRepo struct {
	CreateFn         func(ctx context.Context, c *domain.Comment) error
	GetByCommentIDFn func(ctx context.Context, requestPK uint64, commentID string) (*domain.Comment, error)
	ListByRequestFn  func(ctx context.Context, requestPK uint64) ([]domain.Comment, error)
	UpdateFn         func(ctx context.Context, c *domain.Comment) error
	DeleteFn         func(ctx context.Context, c *domain.Comment) error
}

func (m *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *CommentRepo) GetByCommentID(ctx context.Context, requestPK uint64, commentID string) (*domain.Comment, error) {
	if m.GetByCommentIDFn != nil {
		return m.GetByCommentIDFn(ctx, requestPK, commentID)
	}
	return nil, context.Canceled
}

func (m *CommentRepo) ListByRequest(ctx context.Context, requestPK uint64) ([]domain.Comment, error) {
	if m.ListByRequestFn != nil {
		return m.ListByRequestFn(ctx, requestPK)
	}
	return nil, context.Canceled
}

func (m *CommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, c)
	}
	return nil
}

func (m *CommentRepo) Delete(ctx context.Context, c *domain.Comment) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, c)
	}
	return nil
}
