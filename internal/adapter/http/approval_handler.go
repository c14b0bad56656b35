package http

import (
	"context"
	"net/http"
	"time"

	"device-approval-backend/internal/domain/approval"
	uc "device-approval-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ApprovalHandler struct {
	uc  *uc.Usecase
	log *logrus.Entry
}

func NewApprovalHandler(u *uc.Usecase, log *logrus.Entry) *ApprovalHandler {
	return &ApprovalHandler{uc: u, log: log}
}

type submitDeviceReq struct {
	DeviceID  string     `json:"device_id" validate:"required,max=64"`
	Approvers []string   `json:"approvers" validate:"required,approvers"`
	Action    string     `json:"action"    validate:"required,action"`
	Title     string     `json:"title"     validate:"required,max=255"`
	Reason    string     `json:"reason"    validate:"max=4000"`
	DueAt     *time.Time `json:"due_at"`

	Status        string     `json:"status"         validate:"max=32"`
	Purpose       string     `json:"purpose"        validate:"max=255"`
	ProjectID     *uint64    `json:"project_id"`
	DepartmentID  *uint64    `json:"department_id"`
	RealUser      string     `json:"real_user"      validate:"max=64"`
	UsageStart    *time.Time `json:"usage_start"`
	UsageEnd      *time.Time `json:"usage_end"`
	Memo          string     `json:"memo"`
	AttachmentRef string     `json:"attachment_ref" validate:"max=512"`
}

type requestPath struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
}

type decisionReq struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
	Comment   string `json:"comment"     validate:"max=2000"`
}

type rejectReq struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
	Reason    string `json:"reason"      validate:"max=2000"`
}

type approversReq struct {
	RequestID string   `param:"request_id" validate:"required,hex32"`
	Approvers []string `json:"approvers"   validate:"required,approvers"`
}

type updateApplicationReq struct {
	RequestID string     `param:"request_id" validate:"required,hex32"`
	Title     *string    `json:"title"  validate:"omitempty,max=255"`
	Reason    *string    `json:"reason" validate:"omitempty,max=4000"`
	DueAt     *time.Time `json:"due_at"`

	Status        *string    `json:"status"         validate:"omitempty,max=32"`
	Purpose       *string    `json:"purpose"        validate:"omitempty,max=255"`
	ProjectID     *uint64    `json:"project_id"`
	DepartmentID  *uint64    `json:"department_id"`
	RealUser      *string    `json:"real_user"      validate:"omitempty,max=64"`
	UsageStart    *time.Time `json:"usage_start"`
	UsageEnd      *time.Time `json:"usage_end"`
	Memo          *string    `json:"memo"`
	AttachmentRef *string    `json:"attachment_ref" validate:"omitempty,max=512"`
}

type pendingQuery struct {
	Approver string   `query:"approver" validate:"omitempty,max=64"`
	Status   []string `query:"status"   validate:"dive,oneof=PENDING IN_PROGRESS APPROVED REJECTED CANCELLED"`
	Page     int      `query:"page"     validate:"gte=0"`
	Limit    int      `query:"limit"    validate:"gte=0,lte=100"`
}

func (h *ApprovalHandler) SubmitDevice(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req submitDeviceReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Submit(c.Request().Context(), uc.SubmitInput{
		DeviceID:  req.DeviceID,
		Requester: actor,
		Approvers: req.Approvers,
		Action:    approval.Action(req.Action),
		Title:     req.Title,
		Reason:    req.Reason,
		DueAt:     req.DueAt,
		Device: uc.DeviceFields{
			Status:        req.Status,
			Purpose:       req.Purpose,
			ProjectID:     req.ProjectID,
			DepartmentID:  req.DepartmentID,
			RealUser:      req.RealUser,
			UsageStart:    req.UsageStart,
			UsageEnd:      req.UsageEnd,
			Memo:          req.Memo,
			AttachmentRef: req.AttachmentRef,
		},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApprovalHandler) ListPending(c echo.Context) error {
	if _, ok, err := actorOf(c); !ok {
		return err
	}
	var q pendingQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	statuses := make([]approval.Status, 0, len(q.Status))
	for _, s := range q.Status {
		statuses = append(statuses, approval.Status(s))
	}
	page, err := h.uc.ListPending(c.Request().Context(), uc.ListPendingInput{
		Approver: q.Approver,
		Statuses: statuses,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ApprovalHandler) ListMine(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	items, err := h.uc.ListForUser(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *ApprovalHandler) GetDetail(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var p requestPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	dto, err := h.uc.GetDetail(c.Request().Context(), uc.DetailInput{RequestID: p.RequestID, Viewer: actor})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Approve(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req decisionReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), uc.DecisionInput{RequestID: req.RequestID, Actor: actor, Comment: req.Comment})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Reject(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req rejectReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), uc.DecisionInput{RequestID: req.RequestID, Actor: actor, Comment: req.Reason})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Cancel(c echo.Context) error {
	return h.actorOnly(c, h.uc.Cancel)
}

func (h *ApprovalHandler) Restart(c echo.Context) error {
	return h.actorOnly(c, h.uc.Restart)
}

func (h *ApprovalHandler) actorOnly(c echo.Context, op func(ctx context.Context, in uc.ActorInput) (*uc.ApprovalDTO, error)) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var p requestPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	dto, err := op(c.Request().Context(), uc.ActorInput{RequestID: p.RequestID, Actor: actor})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) UpdateApprovers(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req approversReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateApprovers(c.Request().Context(), uc.UpdateApproversInput{
		RequestID: req.RequestID,
		Actor:     actor,
		Approvers: req.Approvers,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) UpdateApplication(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req updateApplicationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateApplication(c.Request().Context(), uc.UpdateApplicationInput{
		RequestID: req.RequestID,
		Actor:     actor,
		Title:     req.Title,
		Reason:    req.Reason,
		DueAt:     req.DueAt,
		Device: uc.DevicePatch{
			Status:        req.Status,
			Purpose:       req.Purpose,
			ProjectID:     req.ProjectID,
			DepartmentID:  req.DepartmentID,
			RealUser:      req.RealUser,
			UsageStart:    req.UsageStart,
			UsageEnd:      req.UsageEnd,
			Memo:          req.Memo,
			AttachmentRef: req.AttachmentRef,
		},
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
