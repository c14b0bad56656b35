package uow

import (
	"context"

	"device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/device"
)

// Repos is bound to a single transaction.
type Repos struct {
	Requests approval.Repository
	Steps    approval.StepRepository
	Comments approval.CommentRepository
	Devices  device.Registry
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the request row first, reload steps and detail, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *approval.Request) error) error
}
