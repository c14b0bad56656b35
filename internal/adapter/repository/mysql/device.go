package mysql

import (
	"context"

	deviceDomain "device-approval-backend/internal/domain/device"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRegistry struct{ db *gorm.DB }

func NewDeviceRegistry(db *gorm.DB) *DeviceRegistry { return &DeviceRegistry{db: db} }

func (r *DeviceRegistry) GetByDeviceID(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	return r.getDevice(r.db.WithContext(ctx), deviceID)
}

func (r *DeviceRegistry) GetByDeviceIDForUpdate(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	return r.getDevice(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), deviceID)
}

func (r *DeviceRegistry) getDevice(q *gorm.DB, deviceID string) (*deviceDomain.Device, error) {
	var out deviceDomain.Device
	err := q.Where("device_id = ?", deviceID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deviceDomain.ErrDeviceNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get device %s", deviceID)
	}
	return &out, nil
}

func (r *DeviceRegistry) Save(ctx context.Context, d *deviceDomain.Device) error {
	return errors.Wrapf(r.db.WithContext(ctx).Save(d).Error, "save device %s", d.DeviceID)
}

func (r *DeviceRegistry) GetProject(ctx context.Context, id uint64) (*deviceDomain.Project, error) {
	var out deviceDomain.Project
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deviceDomain.ErrProjectNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get project")
	}
	return &out, nil
}

func (r *DeviceRegistry) GetDepartment(ctx context.Context, id uint64) (*deviceDomain.Department, error) {
	var out deviceDomain.Department
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deviceDomain.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get department")
	}
	return &out, nil
}
