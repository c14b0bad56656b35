package mysql

import (
	"context"

	approvalDomain "device-approval-backend/internal/domain/approval"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CommentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) *CommentRepository { return &CommentRepository{db: db} }

func (r *CommentRepository) Create(ctx context.Context, c *approvalDomain.Comment) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(c).Error, "create comment")
}

func (r *CommentRepository) GetByCommentID(ctx context.Context, requestPK uint64, commentID string) (*approvalDomain.Comment, error) {
	var out approvalDomain.Comment
	err := r.db.WithContext(ctx).
		Where("approval_request_id = ? AND comment_id = ?", requestPK, commentID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrCommentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get comment")
	}
	return &out, nil
}

// ListByRequest returns the thread oldest first.
func (r *CommentRepository) ListByRequest(ctx context.Context, requestPK uint64) ([]approvalDomain.Comment, error) {
	out := []approvalDomain.Comment{}
	err := r.db.WithContext(ctx).
		Where("approval_request_id = ?", requestPK).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, errors.Wrap(err, "list comments")
}

func (r *CommentRepository) Update(ctx context.Context, c *approvalDomain.Comment) error {
	err := r.db.WithContext(ctx).Model(c).Select("content", "updated_at").Updates(c).Error
	return errors.Wrap(err, "update comment")
}

func (r *CommentRepository) Delete(ctx context.Context, c *approvalDomain.Comment) error {
	res := r.db.WithContext(ctx).Delete(&approvalDomain.Comment{}, c.ID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrCommentNotFound
	}
	return nil
}
