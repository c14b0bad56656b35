package approval

import (
	"context"
	"io"
	"testing"
	"time"

	domain "device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/device"
	"device-approval-backend/internal/domain/directory"
	"device-approval-backend/internal/domain/notification"
	"device-approval-backend/internal/domain/uow"
	"device-approval-backend/internal/testutil/approvalmock"
	"device-approval-backend/internal/testutil/devicemock"
	"device-approval-backend/internal/testutil/directorymock"
	"device-approval-backend/internal/testutil/notificationmock"
	"device-approval-backend/internal/testutil/uowmock"

	"github.com/sirupsen/logrus"
)

var (
	alice = directory.User{ExternalID: "E-ALICE", Username: "alice", DisplayName: "Alice", Email: "alice@example.com"}
	bob   = directory.User{ExternalID: "E-BOB", Username: "bob", DisplayName: "Bob", Email: "bob@example.com"}
	carol = directory.User{ExternalID: "E-CAROL", Username: "carol", DisplayName: "Carol", Email: "carol@example.com"}
	dave  = directory.User{ExternalID: "E-DAVE", Username: "dave", DisplayName: "Dave", Email: ""}
)

type fixture struct {
	uc      *Usecase
	mem     *approvalmock.Memory
	devices *devicemock.Registry
	pub     *notificationmock.Publisher
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem:     approvalmock.NewMemory(),
		devices: devicemock.NewRegistry(),
		pub:     &notificationmock.Publisher{},
		now:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.devices.AddDevice(device.Device{ID: 1, DeviceID: "DEV-1", Name: "ThinkPad X1", Status: device.StatusAvailable, IsUsable: true})
	f.devices.AddDevice(device.Device{ID: 2, DeviceID: "DEV-2", Name: "MacBook Pro", Status: device.StatusInUse, IsUsable: false, AssignedUser: "dave", RealUser: "dave"})
	f.devices.AddProject(device.Project{ID: 10, Code: "PRJ-A", Name: "Apollo"})
	f.devices.AddDepartment(device.Department{ID: 20, Code: "ENG", Name: "Engineering"})

	repos := uow.Repos{Requests: f.mem.Requests, Steps: f.mem.Steps, Comments: f.mem.Comments, Devices: f.devices}
	log := logrus.New()
	log.SetOutput(io.Discard)

	f.uc = NewUsecase(Deps{
		UoW:      uowmock.Passthrough(repos),
		Requests: f.mem.Requests,
		Steps:    f.mem.Steps,
		Comments: f.mem.Comments,
		Users:    directorymock.New(alice, bob, carol, dave),
		Notifier: f.pub,
		Log:      logrus.NewEntry(log),
		LinkBase: "https://devices.example.com/",
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) tick() { f.now = f.now.Add(time.Minute) }

// submitRental submits DEV-1 for alice with bob then carol as approvers.
func (f *fixture) submitRental(t *testing.T) *ApprovalDTO {
	t.Helper()
	dto, err := f.uc.Submit(context.Background(), SubmitInput{
		DeviceID:  "DEV-1",
		Requester: "alice",
		Approvers: []string{"bob", "carol"},
		Action:    domain.ActionRental,
		Title:     "Laptop for onboarding",
		Reason:    "new hire",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.pub.Reset()
	f.tick()
	return dto
}

func (f *fixture) stored(t *testing.T, requestID string) *domain.Request {
	t.Helper()
	r := f.mem.Stored(requestID)
	if r == nil {
		t.Fatalf("request %s not stored", requestID)
	}
	return r
}

func (f *fixture) comments(t *testing.T, requestID string) []domain.Comment {
	t.Helper()
	r := f.stored(t, requestID)
	cs, err := f.mem.Comments.ListByRequest(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	return cs
}

func recipients(ns []notification.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.RecipientExternalID)
	}
	return out
}
