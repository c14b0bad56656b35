package device

import "context"

type Registry interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*Device, error)
	// Locks the device row for the rest of the transaction.
	GetByDeviceIDForUpdate(ctx context.Context, deviceID string) (*Device, error)
	Save(ctx context.Context, d *Device) error

	GetProject(ctx context.Context, id uint64) (*Project, error)
	GetDepartment(ctx context.Context, id uint64) (*Department, error)
}
