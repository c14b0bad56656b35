package http

import (
	"net/http"

	"device-approval-backend/pkg/apperr"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInvalidInput: http.StatusBadRequest,
}

// writeError maps domain errors to status codes. Anything unclassified is
// logged in full and answered with an opaque 500.
func writeError(c echo.Context, log *logrus.Entry, err error) error {
	if e, ok := apperr.As(err); ok {
		if status, known := kindStatus[e.Kind]; known {
			return c.JSON(status, ErrorResponse{Code: e.Code, Error: e.Message})
		}
	}
	log.WithError(err).
		WithField("method", c.Request().Method).
		WithField("path", c.Path()).
		Error("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Error: "internal error"})
}
