package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Allowed client/server clock skew for Ax-Request-At.
const maxClockSkew = 10 * time.Minute

type recorder struct {
	http.ResponseWriter
	body bytes.Buffer
	code int
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func reject(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, map[string]string{"code": code, "error": msg})
}

// Idempotency replays the stored response of a mutating call retried with
// the same Ax-Request-Id by the same actor on the same route. A retry with a
// different body is a conflict. Server errors are released, not stored.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *logrus.Entry) echo.MiddlewareFunc {
	store := NewIdempotencyStore(rdb, ttl)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, err := parseRequestID(req.Header.Get(HeaderRequestID))
			if err != nil {
				return reject(c, http.StatusBadRequest, "BAD_REQUEST_ID", err.Error())
			}
			at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, "BAD_REQUEST_AT", err.Error())
			}
			if skew := store.now().Sub(at); skew > maxClockSkew || skew < -maxClockSkew {
				return reject(c, http.StatusBadRequest, "BAD_REQUEST_AT", HeaderRequestAt+" too skewed")
			}
			actor := strings.TrimSpace(req.Header.Get(HeaderActor))
			if !ValidActor(actor) {
				return reject(c, http.StatusBadRequest, "BAD_ACTOR", "missing or invalid "+HeaderActor)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			fp := fingerprint(body)
			key := Key(req.Method, c.Path(), actor, reqID)
			log := log.WithField("idempotency_key", key)

			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			cur, fresh, err := store.Reserve(ctx, key, fp)
			if err != nil {
				log.WithError(err).Error("idempotency: reserve failed")
				return reject(c, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "idempotency store unavailable")
			}
			if !fresh {
				switch {
				case cur.Fingerprint != "" && cur.Fingerprint != fp:
					return reject(c, http.StatusConflict, "REQUEST_ID_REUSED", HeaderRequestID+" reused with different body")
				case cur.Completed():
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				default:
					return reject(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "request is already in progress")
				}
			}

			rec := &recorder{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone once the handler returns
			bg := context.Background()
			if rec.code >= http.StatusInternalServerError {
				if err := store.Release(bg, key); err != nil {
					log.WithError(err).Warn("idempotency: release failed")
				}
				return nil
			}
			if err := store.Complete(bg, key, fp, rec.code, rec.body.Bytes()); err != nil {
				log.WithError(err).Warn("idempotency: complete failed")
			}
			return nil
		}
	}
}
