package devicemock

import (
	"context"
	"sync"

	"device-approval-backend/internal/domain/device"
)

var _ device.Registry = (*Registry)(nil)

// Registry is a function-backed mock that satisfies device.Registry.
// NewRegistry pre-wires the fields to an in-memory set of devices.
type Registry struct {
	GetByDeviceIDFn          func(ctx context.Context, deviceID string) (*device.Device, error)
	GetByDeviceIDForUpdateFn func(ctx context.Context, deviceID string) (*device.Device, error)
	SaveFn                   func(ctx context.Context, d *device.Device) error
	GetProjectFn             func(ctx context.Context, id uint64) (*device.Project, error)
	GetDepartmentFn          func(ctx context.Context, id uint64) (*device.Department, error)

	mu          sync.Mutex
	devices     map[string]*device.Device
	projects    map[uint64]*device.Project
	departments map[uint64]*device.Department
}

func NewRegistry() *Registry {
	m := &Registry{
		devices:     map[string]*device.Device{},
		projects:    map[uint64]*device.Project{},
		departments: map[uint64]*device.Department{},
	}
	m.GetByDeviceIDFn = m.byDeviceID
	m.GetByDeviceIDForUpdateFn = m.byDeviceID
	m.SaveFn = m.save
	m.GetProjectFn = func(_ context.Context, id uint64) (*device.Project, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if p, ok := m.projects[id]; ok {
			cp := *p
			return &cp, nil
		}
		return nil, device.ErrProjectNotFound
	}
	m.GetDepartmentFn = func(_ context.Context, id uint64) (*device.Department, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if d, ok := m.departments[id]; ok {
			cp := *d
			return &cp, nil
		}
		return nil, device.ErrDepartmentNotFound
	}
	return m
}

func (m *Registry) AddDevice(d device.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = uint64(len(m.devices) + 1)
	}
	m.devices[d.DeviceID] = &d
}

func (m *Registry) AddProject(p device.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = &p
}

func (m *Registry) AddDepartment(d device.Department) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = &d
}

// Device returns a copy of the stored device, or nil.
func (m *Registry) Device(deviceID string) *device.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.devices[deviceID]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (m *Registry) byDeviceID(_ context.Context, deviceID string) (*device.Device, error) {
	if d := m.Device(deviceID); d != nil {
		return d, nil
	}
	return nil, device.ErrDeviceNotFound
}

func (m *Registry) save(_ context.Context, d *device.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.devices[d.DeviceID] = &cp
	return nil
}

func (m *Registry) GetByDeviceID(ctx context.Context, deviceID string) (*device.Device, error) {
	if m.GetByDeviceIDFn != nil {
		return m.GetByDeviceIDFn(ctx, deviceID)
	}
	return nil, context.Canceled
}

func (m *Registry) GetByDeviceIDForUpdate(ctx context.Context, deviceID string) (*device.Device, error) {
	if m.GetByDeviceIDForUpdateFn != nil {
		return m.GetByDeviceIDForUpdateFn(ctx, deviceID)
	}
	return nil, context.Canceled
}

func (m *Registry) Save(ctx context.Context, d *device.Device) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Registry) GetProject(ctx context.Context, id uint64) (*device.Project, error) {
	if m.GetProjectFn != nil {
		return m.GetProjectFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Registry) GetDepartment(ctx context.Context, id uint64) (*device.Department, error) {
	if m.GetDepartmentFn != nil {
		return m.GetDepartmentFn(ctx, id)
	}
	return nil, context.Canceled
}
