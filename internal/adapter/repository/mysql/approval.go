package mysql

import (
	"context"

	approvalDomain "device-approval-backend/internal/domain/approval"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

// Create inserts the request; steps and detail are written by gorm's association save.
func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Request) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(a).Error, "create approval request")
}

func (r *ApprovalRepository) GetByRequestID(ctx context.Context, requestID string) (*approvalDomain.Request, error) {
	return r.get(ctx, r.db.WithContext(ctx), requestID)
}

func (r *ApprovalRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*approvalDomain.Request, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), requestID)
}

// get locks (when asked) only the request row; children are read afterwards.
func (r *ApprovalRepository) get(ctx context.Context, q *gorm.DB, requestID string) (*approvalDomain.Request, error) {
	var out approvalDomain.Request
	if err := q.Where("request_id = ?", requestID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalDomain.ErrRequestNotFound
		}
		return nil, errors.Wrapf(err, "get approval request %s", requestID)
	}
	if err := r.loadChildren(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApprovalRepository) loadChildren(ctx context.Context, a *approvalDomain.Request) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("approval_request_id = ?", a.ID).Order("sequence ASC").Find(&a.Steps).Error; err != nil {
		return errors.Wrap(err, "load approval steps")
	}
	var details []approvalDomain.DeviceDetail
	if err := db.Where("approval_request_id = ?", a.ID).Limit(1).Find(&details).Error; err != nil {
		return errors.Wrap(err, "load device detail")
	}
	if len(details) == 1 {
		a.DeviceDetail = &details[0]
	}
	return nil
}

// SaveState writes the workflow columns only. Callers hold the row lock.
func (r *ApprovalRepository) SaveState(ctx context.Context, a *approvalDomain.Request) error {
	err := r.db.WithContext(ctx).
		Model(&approvalDomain.Request{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":       a.Status,
			"title":        a.Title,
			"reason":       a.Reason,
			"submitted_at": a.SubmittedAt,
			"due_at":       a.DueAt,
			"completed_at": a.CompletedAt,
		}).Error
	return errors.Wrapf(err, "save approval request %s", a.RequestID)
}

func (r *ApprovalRepository) SaveDetail(ctx context.Context, d *approvalDomain.DeviceDetail) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(d).Error, "save device detail")
}

// Delete removes children explicitly; the schema carries no ON DELETE CASCADE.
func (r *ApprovalRepository) Delete(ctx context.Context, a *approvalDomain.Request) error {
	db := r.db.WithContext(ctx)
	for _, child := range []any{&approvalDomain.Step{}, &approvalDomain.Comment{}, &approvalDomain.DeviceDetail{}} {
		if err := db.Where("approval_request_id = ?", a.ID).Delete(child).Error; err != nil {
			return errors.Wrapf(err, "delete children of %s", a.RequestID)
		}
	}
	res := db.Delete(&approvalDomain.Request{}, a.ID)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete approval request %s", a.RequestID)
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrRequestNotFound
	}
	return nil
}

func (r *ApprovalRepository) ListByCategoryAndStatuses(ctx context.Context, f approvalDomain.ListFilter) ([]approvalDomain.Request, int64, error) {
	q := r.db.WithContext(ctx).Model(&approvalDomain.Request{}).Where("category = ?", f.Category)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ApproverExternalID != "" {
		active := r.db.Model(&approvalDomain.Step{}).
			Select("approval_request_id").
			Where("approver_external_id = ? AND status = ?", f.ApproverExternalID, approvalDomain.StepInProgress)
		q = q.Where("id IN (?)", active)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count approval requests")
	}

	page := withChildren(q).Order("submitted_at DESC, id DESC").Offset(f.Offset)
	if f.Limit > 0 {
		page = page.Limit(f.Limit)
	}
	out := []approvalDomain.Request{}
	if err := page.Find(&out).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list approval requests")
	}
	return out, total, nil
}

func (r *ApprovalRepository) ListByCategoryAndRequester(ctx context.Context, category approvalDomain.Category, requesterExternalID string) ([]approvalDomain.Request, error) {
	out := []approvalDomain.Request{}
	err := withChildren(r.db.WithContext(ctx)).
		Where("category = ? AND requester_external_id = ?", category, requesterExternalID).
		Order("submitted_at DESC, id DESC").
		Find(&out).Error
	return out, errors.Wrap(err, "list approval requests by requester")
}

func withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("DeviceDetail")
}
