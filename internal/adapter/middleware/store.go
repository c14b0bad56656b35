package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const reserveTTL = 60 * time.Second

// Record is what the store keeps per idempotency key. A reserved record has
// no Code yet; a completed one carries the response to replay.
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	Code        int       `json:"code,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

func (r Record) Completed() bool { return r.Code != 0 }

// IdempotencyStore keeps replayable responses in Redis.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Key scopes a request id to the route and the actor that sent it.
func Key(method, route, actor, requestID string) string {
	return strings.Join([]string{"idemp", strings.ToLower(method), route, actor, requestID}, ":")
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Reserve claims key for fp. When the key is already taken it returns the
// existing record and false.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fp string) (Record, bool, error) {
	payload, err := json.Marshal(Record{Fingerprint: fp, StoredAt: s.now()})
	if err != nil {
		return Record{}, false, errors.Wrap(err, "encode record")
	}
	ok, err := s.rdb.SetNX(ctx, key, payload, reserveTTL).Result()
	if err != nil {
		return Record{}, false, errors.Wrap(err, "reserve key")
	}
	if ok {
		return Record{}, true, nil
	}
	cur, err := s.Load(ctx, key)
	return cur, false, err
}

func (s *IdempotencyStore) Load(ctx context.Context, key string) (Record, error) {
	var rec Record
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, errors.Wrap(err, "load record")
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, errors.Wrap(err, "decode record")
	}
	return rec, nil
}

// Complete stores the final response for replay until the ttl expires.
func (s *IdempotencyStore) Complete(ctx context.Context, key, fp string, code int, body []byte) error {
	payload, err := json.Marshal(Record{Fingerprint: fp, Code: code, Body: body, StoredAt: s.now()})
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	return errors.Wrap(s.rdb.Set(ctx, key, payload, s.ttl).Err(), "complete record")
}

// Release drops a reservation so the caller may retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, key).Err(), "release key")
}
