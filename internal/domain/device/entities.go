package device

import (
	"time"

	"device-approval-backend/pkg/apperr"
)

var (
	ErrDeviceNotFound     = apperr.NotFound("DEVICE_NOT_FOUND", "device not found")
	ErrProjectNotFound    = apperr.NotFound("PROJECT_NOT_FOUND", "project not found")
	ErrDepartmentNotFound = apperr.NotFound("DEPARTMENT_NOT_FOUND", "department not found")
	ErrDeviceUnavailable  = apperr.Conflict("DEVICE_UNAVAILABLE", "device is not available for rental")
)

const (
	StatusAvailable = "AVAILABLE"
	StatusInUse     = "IN_USE"
	StatusDisposed  = "DISPOSED"
)

// Table: devices
type Device struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID     string    `gorm:"column:device_id;type:varchar(64);not null;uniqueIndex:ux_devices_device_id"`
	Name         string    `gorm:"column:name;type:varchar(128);not null"`
	Status       string    `gorm:"column:status;type:varchar(32);not null"`
	IsUsable     bool      `gorm:"column:is_usable;not null"`
	Purpose      string    `gorm:"column:purpose;type:varchar(255)"`
	ProjectID    *uint64   `gorm:"column:project_id"`
	DepartmentID *uint64   `gorm:"column:department_id"`
	RealUser     string    `gorm:"column:real_user;type:varchar(64)"`
	AssignedUser string    `gorm:"column:assigned_user;type:varchar(64)"`
	Memo         string    `gorm:"column:memo;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Device) TableName() string { return "devices" }

// Table: projects
type Project struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;type:varchar(32);not null;uniqueIndex:ux_projects_code"`
	Name string `gorm:"column:name;type:varchar(128);not null"`
}

func (Project) TableName() string { return "projects" }

// Table: departments
type Department struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Code string `gorm:"column:code;type:varchar(32);not null;uniqueIndex:ux_departments_code"`
	Name string `gorm:"column:name;type:varchar(128);not null"`
}

func (Department) TableName() string { return "departments" }
