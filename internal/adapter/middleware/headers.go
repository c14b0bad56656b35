package middleware

import (
	"strconv"
	"strings"
	"time"

	"device-approval-backend/pkg/id"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
)

// parseRequestID accepts a dashed uuid or the 32-char hex form and returns
// the hex form, so both spellings of one id share a record.
func parseRequestID(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", errors.New("missing " + HeaderRequestID)
	}
	if id.Valid32(raw) {
		return raw, nil
	}
	u, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		return "", errors.New("invalid " + HeaderRequestID + " format")
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}

// parseRequestAt accepts epoch seconds, epoch milliseconds or RFC3339 with a zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
	}
	return t.UTC(), nil
}
