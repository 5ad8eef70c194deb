package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// DayLock guards the daily event batch so that only one process runs it for
// a given calendar day. The lock key embeds the day, so a crashed holder
// blocks at most until the TTL expires.
type DayLock interface {
	Acquire(ctx context.Context, day time.Time) (bool, error)
	Release(ctx context.Context, day time.Time) error
	Close() error
}

type dayLock struct {
	log    *logger.Logger
	client *goredis.Client
	ttl    time.Duration
}

func NewDayLock(cfg config.RedisConfig, log *logger.Logger) (DayLock, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.Addr})
	return &dayLock{
		log:    log.With("service", "DayLock"),
		client: client,
		ttl:    6 * time.Hour,
	}, nil
}

func lockKey(day time.Time) string {
	return "dosecare:batch:" + day.Format("2006-01-02")
}

func (l *dayLock) Acquire(ctx context.Context, day time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(day), "1", l.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		l.log.Info("Batch lock already held", "day", day.Format("2006-01-02"))
	}
	return ok, nil
}

func (l *dayLock) Release(ctx context.Context, day time.Time) error {
	return l.client.Del(ctx, lockKey(day)).Err()
}

func (l *dayLock) Close() error {
	return l.client.Close()
}
