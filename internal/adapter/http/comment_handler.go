package http

import (
	"net/http"

	uc "device-approval-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type commentReq struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
	Content   string `json:"content"     validate:"required,max=4000"`
}

type commentPath struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
	CommentID string `param:"comment_id" validate:"required,hex32"`
}

type commentEditReq struct {
	RequestID string `param:"request_id" validate:"required,hex32"`
	CommentID string `param:"comment_id" validate:"required,hex32"`
	Content   string `json:"content"     validate:"required,max=4000"`
}

func (h *ApprovalHandler) ListComments(c echo.Context) error {
	if _, ok, err := actorOf(c); !ok {
		return err
	}
	var p requestPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	items, err := h.uc.ListComments(c.Request().Context(), p.RequestID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *ApprovalHandler) AddComment(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req commentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.AddComment(c.Request().Context(), uc.CommentInput{RequestID: req.RequestID, Actor: actor, Content: req.Content})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApprovalHandler) UpdateComment(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req commentEditReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateComment(c.Request().Context(), uc.CommentInput{
		RequestID: req.RequestID,
		CommentID: req.CommentID,
		Actor:     actor,
		Content:   req.Content,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) DeleteComment(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var p commentPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	err = h.uc.DeleteComment(c.Request().Context(), uc.CommentInput{RequestID: p.RequestID, CommentID: p.CommentID, Actor: actor})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
