package mysql

import (
	"context"
	"time"

	approvalDomain "device-approval-backend/internal/domain/approval"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type StepRepository struct{ db *gorm.DB }

func NewStepRepository(db *gorm.DB) *StepRepository { return &StepRepository{db: db} }

func (r *StepRepository) ListByRequest(ctx context.Context, requestPK uint64) ([]approvalDomain.Step, error) {
	out := []approvalDomain.Step{}
	err := r.db.WithContext(ctx).Where("approval_request_id = ?", requestPK).Order("sequence ASC").Find(&out).Error
	return out, errors.Wrap(err, "list steps")
}

func (r *StepRepository) GetBySequence(ctx context.Context, requestPK uint64, seq int) (*approvalDomain.Step, error) {
	var out approvalDomain.Step
	err := r.db.WithContext(ctx).Where("approval_request_id = ? AND sequence = ?", requestPK, seq).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrStepNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get step by sequence")
	}
	return &out, nil
}

func (r *StepRepository) ListByApprover(ctx context.Context, requestPK uint64, approverExternalID string) ([]approvalDomain.Step, error) {
	out := []approvalDomain.Step{}
	err := r.db.WithContext(ctx).
		Where("approval_request_id = ? AND approver_external_id = ?", requestPK, approverExternalID).
		Order("sequence ASC").
		Find(&out).Error
	return out, errors.Wrap(err, "list steps by approver")
}

// UpdateFrom is a compare-and-set on the step status.
func (r *StepRepository) UpdateFrom(ctx context.Context, s *approvalDomain.Step, prev approvalDomain.StepStatus) error {
	res := r.db.WithContext(ctx).
		Model(&approvalDomain.Step{}).
		Where("id = ? AND status = ?", s.ID, prev).
		Updates(map[string]any{
			"status":     s.Status,
			"decided_at": s.DecidedAt,
			"comment":    s.Comment,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update step %d", s.ID)
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrStepAlreadyDecided
	}
	return nil
}

func (r *StepRepository) ReplaceAll(ctx context.Context, requestPK uint64, steps []approvalDomain.Step) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("approval_request_id = ?", requestPK).Delete(&approvalDomain.Step{}).Error; err != nil {
		return errors.Wrap(err, "delete steps")
	}
	if len(steps) == 0 {
		return nil
	}
	for i := range steps {
		steps[i].ID = 0
		steps[i].ApprovalRequestID = requestPK
	}
	return errors.Wrap(db.Create(&steps).Error, "insert steps")
}
