package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dosecare/dosecare-backend/internal/clients/fcm"
	"github.com/dosecare/dosecare-backend/internal/clients/redis"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/services"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// DailyBatch generates the day's reminder events for every active user and
// pushes each user one notification carrying the day's event list. One user's
// failure never stops the rest of the run.
type DailyBatch struct {
	log         *logger.Logger
	lock        redis.DayLock
	push        fcm.Client
	userRepo    repos.UserRepo
	events      services.EventService
	concurrency int
}

func NewDailyBatch(
	baseLog *logger.Logger,
	lock redis.DayLock,
	push fcm.Client,
	userRepo repos.UserRepo,
	events services.EventService,
	concurrency int,
) *DailyBatch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DailyBatch{
		log:         baseLog.With("job", "DailyBatch"),
		lock:        lock,
		push:        push,
		userRepo:    userRepo,
		events:      events,
		concurrency: concurrency,
	}
}

// Run executes one batch for day. The distributed lock keeps concurrent
// deployments from double-running; when the lock backend is down the batch
// runs anyway, since event creation itself is idempotent per day.
func (b *DailyBatch) Run(ctx context.Context, day time.Time) error {
	locked := false
	if b.lock != nil {
		acquired, err := b.lock.Acquire(ctx, day)
		if err != nil {
			b.log.Warn("Batch lock unavailable, running without it", "error", err)
		} else if !acquired {
			return nil
		} else {
			locked = true
		}
	}

	users, err := b.userRepo.GetAllActive(ctx, nil)
	if err != nil {
		// A failed run frees the lock so a same-day retry can go. A run
		// that finishes keeps it until the TTL expires.
		if locked {
			b.releaseLock(ctx, day)
		}
		return fmt.Errorf("failed to load active users: %w", err)
	}

	started := time.Now()
	var generated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, u := range users {
		user := u
		g.Go(func() error {
			dtos, err := b.events.GenerateForUser(gctx, user.ID, day)
			if err != nil {
				failed.Add(1)
				b.log.Error("Event generation failed for user",
					"user_id", user.ID,
					"error", err,
				)
				return nil
			}
			generated.Add(int64(len(dtos)))
			b.notify(gctx, user, dtos)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if locked {
			b.releaseLock(ctx, day)
		}
		return err
	}

	b.log.Info("Daily batch finished",
		"day", day.Format("2006-01-02"),
		"users", len(users),
		"events", generated.Load(),
		"failed_users", failed.Load(),
		"elapsed", time.Since(started).String(),
	)
	return nil
}

func (b *DailyBatch) releaseLock(ctx context.Context, day time.Time) {
	if err := b.lock.Release(ctx, day); err != nil {
		b.log.Warn("Batch lock release failed", "error", err)
	}
}

// notify delivers one push per user carrying the whole day's event list in
// the data payload. The device unpacks the list locally; no per-event pushes.
func (b *DailyBatch) notify(ctx context.Context, user *types.User, dtos []services.EventDTO) {
	if b.push == nil || user.FcmToken == "" || len(dtos) == 0 {
		return
	}
	payload, err := json.Marshal(dtos)
	if err != nil {
		b.log.Warn("Could not encode push payload",
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	err = b.push.Send(ctx, fcm.Notification{
		Token: user.FcmToken,
		Title: "Medication reminder",
		Body:  fmt.Sprintf("You have %d medication reminders today", len(dtos)),
		Data: map[string]string{
			"events": string(payload),
		},
	})
	if err != nil {
		b.log.Warn("Push delivery failed",
			"user_id", user.ID,
			"error", err,
		)
	}
}
