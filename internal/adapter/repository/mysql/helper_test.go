package mysql

import (
	"path/filepath"
	"testing"
	"time"

	approvalDomain "device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/device"
	"device-approval-backend/internal/domain/directory"
	infradb "device-approval-backend/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB uses a file per test so every pooled connection sees the same schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(infradb.Models()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

var (
	alice = approvalDomain.Identity{ExternalID: "E-ALICE", Username: "alice", Name: "Alice", Email: "alice@example.com"}
	bob   = approvalDomain.Identity{ExternalID: "E-BOB", Username: "bob", Name: "Bob", Email: "bob@example.com"}
	carol = approvalDomain.Identity{ExternalID: "E-CAROL", Username: "carol", Name: "Carol", Email: "carol@example.com"}
)

func makeRequest(requestID string, submitted time.Time) *approvalDomain.Request {
	at := submitted.UTC()
	return &approvalDomain.Request{
		RequestID:   requestID,
		Category:    approvalDomain.CategoryDevice,
		Status:      approvalDomain.StatusInProgress,
		Title:       "Laptop for " + requestID,
		Reason:      "onboarding",
		Requester:   alice,
		SubmittedAt: &at,
		Steps: []approvalDomain.Step{
			{Sequence: 1, Approver: bob, Status: approvalDomain.StepInProgress},
			{Sequence: 2, Approver: carol, Status: approvalDomain.StepPending},
		},
		DeviceDetail: &approvalDomain.DeviceDetail{
			DeviceRefID: 1,
			DeviceID:    "DEV-1",
			DeviceName:  "ThinkPad",
			Action:      approvalDomain.ActionRental,
		},
	}
}

func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	users := []directory.User{
		{ExternalID: "E-ALICE", Username: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		{ExternalID: "bob", Username: "robert", DisplayName: "Robert"},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
}

func seedDevice(t *testing.T, db *gorm.DB) *device.Device {
	t.Helper()
	d := &device.Device{DeviceID: "DEV-1", Name: "ThinkPad", Status: device.StatusAvailable, IsUsable: true}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("seed device: %v", err)
	}
	return d
}
