package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const route = "/approvals/:request_id/approve"

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// counting returns a handler that answers with status and counts its calls.
func counting(status int, calls *int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		n := atomic.AddInt32(calls, 1)
		return c.JSON(status, map[string]any{"call": n})
	}
}

func newEcho(rdb *redis.Client, h echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	g := e.Group("", Idempotency(rdb, 5*time.Minute, quietLog()))
	g.POST(route, h)
	g.GET(route, h)
	return e
}

func headers(actor, reqID string) map[string]string {
	return map[string]string{
		HeaderRequestID: reqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
		HeaderActor:     actor,
	}
}

func send(e *echo.Echo, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const reqHex = "0123456789abcdef0123456789abcdef"

func TestIdempotency_GetBypasses(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))

	rec := send(e, http.MethodGet, "/approvals/r1/approve", "", nil)
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("GET: code=%d calls=%d", rec.Code, calls)
	}
}

func TestIdempotency_RejectsBadHeaders(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))

	stale := strconv.FormatInt(time.Now().Add(-maxClockSkew-time.Minute).Unix(), 10)
	tests := []struct {
		name string
		mod  func(h map[string]string)
		code string
	}{
		{"missing request id", func(h map[string]string) { delete(h, HeaderRequestID) }, "BAD_REQUEST_ID"},
		{"malformed request id", func(h map[string]string) { h[HeaderRequestID] = "NOT-VALID" }, "BAD_REQUEST_ID"},
		{"missing request at", func(h map[string]string) { delete(h, HeaderRequestAt) }, "BAD_REQUEST_AT"},
		{"naive timestamp", func(h map[string]string) { h[HeaderRequestAt] = "2025-09-05T10:00:00" }, "BAD_REQUEST_AT"},
		{"skewed timestamp", func(h map[string]string) { h[HeaderRequestAt] = stale }, "BAD_REQUEST_AT"},
		{"missing actor", func(h map[string]string) { delete(h, HeaderActor) }, "BAD_ACTOR"},
		{"invalid actor", func(h map[string]string) { h[HeaderActor] = "not a user!" }, "BAD_ACTOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := headers("alice", reqHex)
			tt.mod(h)
			rec := send(e, http.MethodPost, "/approvals/r1/approve", `{}`, h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("code = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.code) {
				t.Fatalf("body %s missing %s", rec.Body.String(), tt.code)
			}
		})
	}
	if calls != 0 {
		t.Fatalf("handler reached %d times", calls)
	}
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusCreated, &calls))
	h := headers("alice", reqHex)

	first := send(e, http.MethodPost, "/approvals/r1/approve", `{"comment":"ok"}`, h)
	second := send(e, http.MethodPost, "/approvals/r1/approve", `{"comment":"ok"}`, h)

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("codes = %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body %q, want %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_DashedAndHexIdsShareRecord(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))

	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("alice", "01234567-89ab-cdef-0123-456789abcdef"))
	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("alice", reqHex))
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))
	h := headers("alice", reqHex)

	send(e, http.MethodPost, "/approvals/r1/approve", `{"comment":"a"}`, h)
	rec := send(e, http.MethodPost, "/approvals/r1/approve", `{"comment":"b"}`, h)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "REQUEST_ID_REUSED") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))

	store := NewIdempotencyStore(rdb, time.Minute)
	key := Key(http.MethodPost, route, "alice", reqHex)
	if _, ok, err := store.Reserve(context.Background(), key, fingerprint([]byte(`{}`))); err != nil || !ok {
		t.Fatalf("seed reserve ok=%v err=%v", ok, err)
	}

	rec := send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("alice", reqHex))
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "REQUEST_IN_PROGRESS") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if calls != 0 {
		t.Fatalf("handler reached")
	}
}

func TestIdempotency_ServerErrorReleased(t *testing.T) {
	mr, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusInternalServerError, &calls))
	h := headers("alice", reqHex)

	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, h)
	if mr.Exists(Key(http.MethodPost, route, "alice", reqHex)) {
		t.Fatalf("5xx response must not be kept")
	}
	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, h)
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func TestIdempotency_ScopedByActor(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))

	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("alice", reqHex))
	send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("bob", reqHex))
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func TestIdempotency_StoreDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	var calls int32
	e := newEcho(rdb, counting(http.StatusOK, &calls))
	mr.Close()

	rec := send(e, http.MethodPost, "/approvals/r1/approve", `{}`, headers("alice", reqHex))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", rec.Code)
	}
}
