package directory

import (
	"time"

	"device-approval-backend/pkg/apperr"
)

var ErrUserNotFound = apperr.NotFound("USER_NOT_FOUND", "user not found")

// Table: users. Provisioned by the directory sync; read-only here.
type User struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID  string    `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex:ux_users_external_id"`
	Username    string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex:ux_users_username"`
	DisplayName string    `gorm:"column:display_name;type:varchar(128);not null"`
	Email       string    `gorm:"column:email;type:varchar(255)"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
