package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"device-approval-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check probes one backing service for /health.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Handler struct {
	checks  []Check
	timeout time.Duration
}

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks, timeout: 2 * time.Second} }

// Health reports 503 with the failing dependencies when any check fails.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Probe(ctx); err != nil {
			deps[chk.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"deps":   deps,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Metrics serves the default prometheus registry.
func (h *Handler) Metrics() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// actorOf reads the acting identity. On false the 400 has been written.
func actorOf(c echo.Context) (string, bool, error) {
	actor := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActor))
	if actor == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + middleware.HeaderActor})
	}
	if !middleware.ValidActor(actor) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + middleware.HeaderActor})
	}
	return actor, true, nil
}

// bindAndValidate writes the 400/422 response itself; callers return its error as is.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
