package http

import (
	"net/http"

	"device-approval-backend/internal/usecase/notification"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	svc *notification.Service
	log *logrus.Entry
}

func NewNotificationHandler(svc *notification.Service, log *logrus.Entry) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

type notificationsQuery struct {
	Unread bool `query:"unread"`
	Limit  int  `query:"limit" validate:"gte=0,lte=200"`
}

type notificationPath struct {
	NotificationID string `param:"notification_id" validate:"required,uuid"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var q notificationsQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), actor, q.Unread, q.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var p notificationPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	dto, err := h.svc.MarkRead(c.Request().Context(), actor, p.NotificationID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
