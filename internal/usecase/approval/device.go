package approval

import (
	"context"
	"strings"

	domain "device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/device"
)

// newDeviceDetail snapshots the device and the requested changes.
func newDeviceDetail(ctx context.Context, reg device.Registry, dev *device.Device, action domain.Action, f DeviceFields) (*domain.DeviceDetail, error) {
	d := &domain.DeviceDetail{
		DeviceRefID:   dev.ID,
		DeviceID:      dev.DeviceID,
		DeviceName:    dev.Name,
		DeviceStatus:  dev.Status,
		Action:        action,
		Status:        strings.TrimSpace(f.Status),
		Purpose:       strings.TrimSpace(f.Purpose),
		RealUser:      strings.TrimSpace(f.RealUser),
		UsageStart:    f.UsageStart,
		UsageEnd:      f.UsageEnd,
		Memo:          f.Memo,
		AttachmentRef: strings.TrimSpace(f.AttachmentRef),
	}
	if err := setProject(ctx, reg, d, f.ProjectID); err != nil {
		return nil, err
	}
	if err := setDepartment(ctx, reg, d, f.DepartmentID); err != nil {
		return nil, err
	}
	return d, nil
}

func patchDeviceDetail(ctx context.Context, reg device.Registry, d *domain.DeviceDetail, p DevicePatch) error {
	if p.Status != nil {
		d.Status = strings.TrimSpace(*p.Status)
	}
	if p.Purpose != nil {
		d.Purpose = strings.TrimSpace(*p.Purpose)
	}
	if p.RealUser != nil {
		d.RealUser = strings.TrimSpace(*p.RealUser)
	}
	if p.UsageStart != nil {
		d.UsageStart = p.UsageStart
	}
	if p.UsageEnd != nil {
		d.UsageEnd = p.UsageEnd
	}
	if p.Memo != nil {
		d.Memo = *p.Memo
	}
	if p.AttachmentRef != nil {
		d.AttachmentRef = strings.TrimSpace(*p.AttachmentRef)
	}
	if err := checkUsageWindow(d.UsageStart, d.UsageEnd); err != nil {
		return err
	}
	if p.ProjectID != nil {
		if err := setProject(ctx, reg, d, p.ProjectID); err != nil {
			return err
		}
	}
	if p.DepartmentID != nil {
		if err := setDepartment(ctx, reg, d, p.DepartmentID); err != nil {
			return err
		}
	}
	return nil
}

func setProject(ctx context.Context, reg device.Registry, d *domain.DeviceDetail, id *uint64) error {
	if id == nil {
		return nil
	}
	p, err := reg.GetProject(ctx, *id)
	if err != nil {
		return err
	}
	pid := p.ID
	d.ProjectID, d.ProjectCode, d.ProjectName = &pid, p.Code, p.Name
	return nil
}

func setDepartment(ctx context.Context, reg device.Registry, d *domain.DeviceDetail, id *uint64) error {
	if id == nil {
		return nil
	}
	dep, err := reg.GetDepartment(ctx, *id)
	if err != nil {
		return err
	}
	did := dep.ID
	d.DepartmentID, d.DepartmentCode, d.DepartmentName = &did, dep.Code, dep.Name
	return nil
}

// reserve marks a rented device unusable as soon as the request exists.
// The reservation is not released on rejection or cancellation.
func reserve(ctx context.Context, reg device.Registry, dev *device.Device) error {
	if !dev.IsUsable {
		return device.ErrDeviceUnavailable
	}
	dev.IsUsable = false
	return reg.Save(ctx, dev)
}

// applyApproval writes the approved changes onto the device.
func applyApproval(ctx context.Context, reg device.Registry, req *domain.Request) error {
	d := req.DeviceDetail
	if d == nil {
		return nil
	}
	dev, err := reg.GetByDeviceIDForUpdate(ctx, d.DeviceID)
	if err != nil {
		return err
	}

	if d.Purpose != "" {
		dev.Purpose = d.Purpose
	}
	if d.ProjectID != nil {
		dev.ProjectID = d.ProjectID
	}
	if d.DepartmentID != nil {
		dev.DepartmentID = d.DepartmentID
	}
	if d.Memo != "" {
		dev.Memo = d.Memo
	}

	switch d.Action {
	case domain.ActionRental:
		dev.Status = or(d.Status, device.StatusInUse)
		dev.AssignedUser = req.Requester.Username
		dev.RealUser = or(d.RealUser, req.Requester.Username)
		dev.IsUsable = false
	case domain.ActionReturn, domain.ActionRecovery:
		dev.Status = or(d.Status, device.StatusAvailable)
		dev.AssignedUser = ""
		dev.RealUser = ""
		dev.IsUsable = true
	case domain.ActionDisposal:
		dev.Status = or(d.Status, device.StatusDisposed)
		dev.IsUsable = false
	default:
		dev.Status = or(d.Status, dev.Status)
		dev.RealUser = or(d.RealUser, dev.RealUser)
	}
	return reg.Save(ctx, dev)
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
