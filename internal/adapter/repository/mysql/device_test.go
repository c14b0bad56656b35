package mysql

import (
	"context"
	"errors"
	"testing"

	"device-approval-backend/internal/domain/device"
	"device-approval-backend/internal/domain/directory"
)

func TestDeviceRegistry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seeded := seedDevice(t, db)
	proj := &device.Project{Code: "PRJ-A", Name: "Apollo"}
	dept := &device.Department{Code: "ENG", Name: "Engineering"}
	if err := db.Create(proj).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(dept).Error; err != nil {
		t.Fatal(err)
	}
	reg := NewDeviceRegistry(db)

	d, err := reg.GetByDeviceIDForUpdate(ctx, "DEV-1")
	if err != nil || d.ID != seeded.ID {
		t.Fatalf("GetByDeviceIDForUpdate = %+v, %v", d, err)
	}
	d.Status = device.StatusInUse
	d.IsUsable = false
	d.AssignedUser = "E-ALICE"
	if err := reg.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := reg.GetByDeviceID(ctx, "DEV-1")
	if err != nil {
		t.Fatalf("GetByDeviceID: %v", err)
	}
	if got.Status != device.StatusInUse || got.IsUsable || got.AssignedUser != "E-ALICE" {
		t.Fatalf("saved device = %+v", got)
	}

	if _, err := reg.GetByDeviceID(ctx, "nope"); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Fatalf("want ErrDeviceNotFound, got %v", err)
	}
	if p, err := reg.GetProject(ctx, proj.ID); err != nil || p.Code != "PRJ-A" {
		t.Fatalf("GetProject = %+v, %v", p, err)
	}
	if _, err := reg.GetProject(ctx, 999); !errors.Is(err, device.ErrProjectNotFound) {
		t.Fatalf("want ErrProjectNotFound, got %v", err)
	}
	if dd, err := reg.GetDepartment(ctx, dept.ID); err != nil || dd.Name != "Engineering" {
		t.Fatalf("GetDepartment = %+v, %v", dd, err)
	}
	if _, err := reg.GetDepartment(ctx, 999); !errors.Is(err, device.ErrDepartmentNotFound) {
		t.Fatalf("want ErrDepartmentNotFound, got %v", err)
	}
}

func TestDirectoryResolver(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db)
	res := NewDirectoryResolver(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		ref     string
		wantExt string
		wantErr error
	}{
		{name: "by username", ref: "alice", wantExt: "E-ALICE"},
		{name: "by external id", ref: "E-ALICE", wantExt: "E-ALICE"},
		{name: "external id differs from username", ref: "bob", wantExt: "bob"},
		{name: "unknown", ref: "zed", wantErr: directory.ErrUserNotFound},
		{name: "blank", ref: "", wantErr: directory.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := res.Resolve(ctx, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || u.ExternalID != tt.wantExt {
				t.Fatalf("Resolve(%q) = %+v, %v", tt.ref, u, err)
			}
		})
	}
}
