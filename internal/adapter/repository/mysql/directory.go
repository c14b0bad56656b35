package mysql

import (
	"context"

	"device-approval-backend/internal/domain/directory"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DirectoryResolver reads the users table kept in sync with the company directory.
type DirectoryResolver struct{ db *gorm.DB }

func NewDirectoryResolver(db *gorm.DB) *DirectoryResolver { return &DirectoryResolver{db: db} }

func (r *DirectoryResolver) Resolve(ctx context.Context, ref string) (*directory.User, error) {
	if ref == "" {
		return nil, directory.ErrUserNotFound
	}
	for _, col := range []string{"username", "external_id"} {
		var u directory.User
		err := r.db.WithContext(ctx).Where(col+" = ?", ref).First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(err, "resolve user %s", ref)
		}
	}
	return nil, directory.ErrUserNotFound
}
