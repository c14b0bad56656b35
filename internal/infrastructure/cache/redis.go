package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects and pings. The client backs the idempotency records only.
func OpenRedis(opts Options) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, errors.Wrapf(err, "redis ping %s", opts.Addr)
	}
	log.WithField("addr", opts.Addr).WithField("db", opts.DB).Info("redis: connected")
	return r, nil
}
