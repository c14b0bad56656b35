package http

import (
	"time"

	"device-approval-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Approvals     *ApprovalHandler
	Notifications *NotificationHandler
	Health        *Handler
	// Redis enables idempotent replays on mutating routes; nil disables them.
	Redis         *redis.Client
	IdempTTL      time.Duration
	Log           *logrus.Entry
}

func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	return e
}

func Register(e *echo.Echo, d RouterDeps) {
	e.GET("/health", d.Health.Health)
	e.GET("/metrics", d.Health.Metrics())

	var mw []echo.MiddlewareFunc
	if d.Redis != nil {
		mw = append(mw, middleware.Idempotency(d.Redis, d.IdempTTL, d.Log))
	}

	g := e.Group("/approvals", mw...)
	a := d.Approvals
	g.POST("/device", a.SubmitDevice)
	g.GET("/pending", a.ListPending)
	g.GET("/mine", a.ListMine)
	g.GET("/:request_id", a.GetDetail)
	g.PATCH("/:request_id", a.UpdateApplication)
	g.POST("/:request_id/approve", a.Approve)
	g.POST("/:request_id/reject", a.Reject)
	g.POST("/:request_id/cancel", a.Cancel)
	g.POST("/:request_id/restart", a.Restart)
	g.PUT("/:request_id/approvers", a.UpdateApprovers)
	g.GET("/:request_id/comments", a.ListComments)
	g.POST("/:request_id/comments", a.AddComment)
	g.PUT("/:request_id/comments/:comment_id", a.UpdateComment)
	g.DELETE("/:request_id/comments/:comment_id", a.DeleteComment)

	n := e.Group("/notifications", mw...)
	n.GET("", d.Notifications.List)
	n.POST("/:notification_id/read", d.Notifications.MarkRead)
}
