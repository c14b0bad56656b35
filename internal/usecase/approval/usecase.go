package approval

import (
	"context"
	"strings"
	"time"

	domain "device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/directory"
	"device-approval-backend/internal/domain/notification"
	"device-approval-backend/internal/domain/uow"
	"device-approval-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

const requiredApprovers = 2

type Deps struct {
	UoW      uow.UnitOfWork
	Requests domain.Repository
	Steps    domain.StepRepository
	Comments domain.CommentRepository
	Users    directory.Resolver
	Notifier notification.Publisher
	Log      *logrus.Entry
	// LinkBase prefixes deep links in notifications, e.g. https://devices.example.com
	LinkBase string
	Now      func() time.Time
}

type Usecase struct {
	uow      uow.UnitOfWork
	requests domain.Repository
	steps    domain.StepRepository
	comments domain.CommentRepository
	users    directory.Resolver
	notifier notification.Publisher
	log      *logrus.Entry
	linkBase string
	now      func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		uow:      d.UoW,
		requests: d.Requests,
		steps:    d.Steps,
		comments: d.Comments,
		users:    d.Users,
		notifier: d.Notifier,
		log:      d.Log,
		linkBase: strings.TrimRight(d.LinkBase, "/"),
		now:      d.Now,
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	if u.log == nil {
		u.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return u
}

// Submit creates a device request, reserves the device for rentals, starts
// the workflow and notifies the first approver.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*ApprovalDTO, error) {
	if !in.Action.Valid() {
		return nil, domain.ErrInvalidAction
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" && (in.Action == domain.ActionDisposal || in.Action == domain.ActionRecovery) {
		return nil, domain.ErrReasonRequired
	}
	if err := checkUsageWindow(in.Device.UsageStart, in.Device.UsageEnd); err != nil {
		return nil, err
	}
	approvers, err := u.resolveApprovers(ctx, in.Approvers)
	if err != nil {
		return nil, err
	}
	requester, err := u.users.Resolve(ctx, in.Requester)
	if err != nil {
		return nil, err
	}

	var req *domain.Request
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		dev, err := r.Devices.GetByDeviceIDForUpdate(ctx, in.DeviceID)
		if err != nil {
			return err
		}
		detail, err := newDeviceDetail(ctx, r.Devices, dev, in.Action, in.Device)
		if err != nil {
			return err
		}
		if in.Action == domain.ActionRental {
			if err := reserve(ctx, r.Devices, dev); err != nil {
				return err
			}
		}

		req = &domain.Request{
			RequestID:    id.NewID32(),
			Category:     domain.CategoryDevice,
			Status:       domain.StatusPending,
			Title:        title,
			Reason:       reason,
			Requester:    domain.IdentityOf(requester),
			DueAt:        in.DueAt,
			Steps:        domain.NewSteps(approvers),
			DeviceDetail: detail,
		}
		if err := req.Submit(u.now()); err != nil {
			return err
		}
		return r.Requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", req.RequestID).
		WithField("device_id", in.DeviceID).
		WithField("action", in.Action).
		Info("approval submitted")
	u.notifier.Notify(ctx, u.requestedNotice(req, req.ActiveStep())...)
	return toDTO(req), nil
}

// Approve records the actor's approval of their active step.
func (u *Usecase) Approve(ctx context.Context, in DecisionInput) (*ApprovalDTO, error) {
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var (
		out     *domain.Request
		notices []notification.Notice
	)
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		before := stepStatuses(req)
		step, err := req.ApproveStep(actor.ExternalID, in.Comment, u.now())
		if err != nil {
			return err
		}
		if err := persistSteps(ctx, r.Steps, req, before); err != nil {
			return err
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		if step.Comment != "" {
			if err := r.Comments.Create(ctx, newComment(req, actor, step.Comment)); err != nil {
				return err
			}
		}

		if req.Status == domain.StatusApproved {
			if err := applyApproval(ctx, r.Devices, req); err != nil {
				return err
			}
			notices = u.approvedNotice(req)
		} else {
			next, err := r.Steps.GetBySequence(ctx, req.ID, step.Sequence+1)
			if err != nil {
				return err
			}
			notices = u.requestedNotice(req, next)
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).
		WithField("approver", actor.Username).
		WithField("status", out.Status).
		Info("approval step approved")
	u.notifier.Notify(ctx, notices...)
	return toDTO(out), nil
}

// Reject ends the workflow. Any undecided step held by the actor may reject,
// even before earlier steps are approved.
func (u *Usecase) Reject(ctx context.Context, in DecisionInput) (*ApprovalDTO, error) {
	if strings.TrimSpace(in.Comment) == "" {
		return nil, domain.ErrReasonRequired
	}
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var out *domain.Request
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		before := stepStatuses(req)
		step, err := req.RejectStep(actor.ExternalID, in.Comment, u.now())
		if err != nil {
			return err
		}
		if err := persistSteps(ctx, r.Steps, req, before); err != nil {
			return err
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		if err := r.Comments.Create(ctx, newComment(req, actor, step.Comment)); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).
		WithField("approver", actor.Username).
		Info("approval rejected")
	u.notifier.Notify(ctx, u.rejectedNotices(out, actor, strings.TrimSpace(in.Comment))...)
	return toDTO(out), nil
}

// Cancel withdraws a request. Only the requester may cancel.
func (u *Usecase) Cancel(ctx context.Context, in ActorInput) (*ApprovalDTO, error) {
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var (
		out     *domain.Request
		waiting *domain.Step
	)
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		if s := req.ActiveStep(); s != nil {
			cp := *s
			waiting = &cp
		}
		if err := req.Cancel(actor.ExternalID, u.now()); err != nil {
			return err
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).Info("approval cancelled")
	u.notifier.Notify(ctx, u.cancelledNotice(out, waiting)...)
	return toDTO(out), nil
}

// Restart reopens a rejected or cancelled request from step 1.
func (u *Usecase) Restart(ctx context.Context, in ActorInput) (*ApprovalDTO, error) {
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var out *domain.Request
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		if req.Requester.ExternalID != actor.ExternalID {
			return domain.ErrNotRequester
		}
		before := stepStatuses(req)
		if err := req.RestartWorkflow(u.now()); err != nil {
			return err
		}
		if err := persistSteps(ctx, r.Steps, req, before); err != nil {
			return err
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).Info("approval restarted")
	u.notifier.Notify(ctx, u.requestedNotice(out, out.ActiveStep())...)
	return toDTO(out), nil
}

// UpdateApprovers replaces the whole approver list. Existing decisions are
// discarded and the workflow starts again at step 1.
func (u *Usecase) UpdateApprovers(ctx context.Context, in UpdateApproversInput) (*ApprovalDTO, error) {
	approvers, err := u.resolveApprovers(ctx, in.Approvers)
	if err != nil {
		return nil, err
	}
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var out *domain.Request
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		if req.Requester.ExternalID != actor.ExternalID {
			return domain.ErrNotRequester
		}
		if err := req.ReplaceApprovers(approvers); err != nil {
			return err
		}
		if err := r.Steps.ReplaceAll(ctx, req.ID, req.Steps); err != nil {
			return err
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).Info("approvers replaced")
	u.notifier.Notify(ctx, u.requestedNotice(out, out.ActiveStep())...)
	return toDTO(out), nil
}

// UpdateApplication edits the request while it is still open.
func (u *Usecase) UpdateApplication(ctx context.Context, in UpdateApplicationInput) (*ApprovalDTO, error) {
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	var out *domain.Request
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domain.Request) error {
		if req.Requester.ExternalID != actor.ExternalID {
			return domain.ErrNotRequester
		}
		if req.IsTerminal() {
			return domain.ErrRequestCompleted
		}
		if in.Title != nil {
			t := strings.TrimSpace(*in.Title)
			if t == "" {
				return domain.ErrTitleRequired
			}
			req.Title = t
		}
		if in.Reason != nil {
			reason := strings.TrimSpace(*in.Reason)
			if reason == "" {
				return domain.ErrReasonRequired
			}
			req.Reason = reason
		}
		if in.DueAt != nil {
			req.DueAt = in.DueAt
		}
		if req.DeviceDetail != nil {
			if err := patchDeviceDetail(ctx, r.Devices, req.DeviceDetail, in.Device); err != nil {
				return err
			}
			if err := r.Requests.SaveDetail(ctx, req.DeviceDetail); err != nil {
				return err
			}
		}
		if err := r.Requests.SaveState(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithField("request_id", out.RequestID).Info("application updated")
	return toDTO(out), nil
}

func (u *Usecase) resolveApprovers(ctx context.Context, refs []string) ([]domain.Identity, error) {
	if len(refs) != requiredApprovers {
		return nil, domain.ErrInvalidApprovers
	}
	seen := make(map[string]bool, len(refs))
	out := make([]domain.Identity, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, domain.ErrInvalidApprovers
		}
		usr, err := u.users.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		if seen[usr.ExternalID] {
			return nil, domain.ErrDuplicateApprover
		}
		seen[usr.ExternalID] = true
		out = append(out, domain.IdentityOf(usr))
	}
	return out, nil
}

func stepStatuses(req *domain.Request) map[uint64]domain.StepStatus {
	m := make(map[uint64]domain.StepStatus, len(req.Steps))
	for _, s := range req.Steps {
		m[s.ID] = s.Status
	}
	return m
}

// persistSteps writes every step whose status moved since before, guarded on
// the status it was read with.
func persistSteps(ctx context.Context, steps domain.StepRepository, req *domain.Request, before map[uint64]domain.StepStatus) error {
	for i := range req.Steps {
		s := &req.Steps[i]
		prev, ok := before[s.ID]
		if !ok || prev == s.Status {
			continue
		}
		if err := steps.UpdateFrom(ctx, s, prev); err != nil {
			return err
		}
	}
	return nil
}

func newComment(req *domain.Request, author *directory.User, content string) *domain.Comment {
	return &domain.Comment{
		CommentID:         id.NewID32(),
		ApprovalRequestID: req.ID,
		Author:            domain.IdentityOf(author),
		Content:           content,
	}
}

func checkUsageWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domain.ErrInvalidUsageWindow
	}
	return nil
}
