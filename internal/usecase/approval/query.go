package approval

import (
	"context"

	domain "device-approval-backend/internal/domain/approval"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListPending lists open device requests, optionally only those waiting on
// a given approver.
func (u *Usecase) ListPending(ctx context.Context, in ListPendingInput) (*PageDTO, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	statuses := in.Statuses
	if len(statuses) == 0 {
		statuses = []domain.Status{domain.StatusPending, domain.StatusInProgress}
	}

	f := domain.ListFilter{
		Category: domain.CategoryDevice,
		Statuses: statuses,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if in.Approver != "" {
		usr, err := u.users.Resolve(ctx, in.Approver)
		if err != nil {
			return nil, err
		}
		f.ApproverExternalID = usr.ExternalID
	}

	rows, total, err := u.requests.ListByCategoryAndStatuses(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &PageDTO{Items: make([]ApprovalDTO, 0, len(rows)), Total: total, Page: page, Limit: limit}
	for i := range rows {
		out.Items = append(out.Items, *toDTO(&rows[i]))
	}
	return out, nil
}

// ListForUser returns the actor's own device requests, newest submission first.
func (u *Usecase) ListForUser(ctx context.Context, actor string) ([]ApprovalDTO, error) {
	usr, err := u.users.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	rows, err := u.requests.ListByCategoryAndRequester(ctx, domain.CategoryDevice, usr.ExternalID)
	if err != nil {
		return nil, err
	}
	out := make([]ApprovalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func (u *Usecase) GetDetail(ctx context.Context, in DetailInput) (*ApprovalDetailDTO, error) {
	req, err := u.requests.GetByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	comments, err := u.comments.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	out := &ApprovalDetailDTO{ApprovalDTO: *toDTO(req), Comments: make([]CommentDTO, 0, len(comments))}
	for i := range comments {
		out.Comments = append(out.Comments, commentDTO(&comments[i]))
	}

	if in.Viewer != "" {
		usr, err := u.users.Resolve(ctx, in.Viewer)
		if err != nil {
			return nil, err
		}
		mine, err := u.steps.ListByApprover(ctx, req.ID, usr.ExternalID)
		if err != nil {
			return nil, err
		}
		for i := range mine {
			out.MySteps = append(out.MySteps, stepDTO(&mine[i]))
		}
	}
	return out, nil
}
