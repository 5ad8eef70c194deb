package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dosecare/dosecare-backend/internal/logger"
)

// Scheduler fires the daily batch on a cron schedule. The spec uses the
// six-field form with seconds, e.g. "0 0 0 * * *" for midnight.
type Scheduler struct {
	log   *logger.Logger
	cron  *cron.Cron
	batch *DailyBatch
}

func NewScheduler(schedule string, batch *DailyBatch, baseLog *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		log:   baseLog.With("component", "BatchScheduler"),
		cron:  cron.New(cron.WithSeconds()),
		batch: batch,
	}
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := s.batch.Run(ctx, time.Now()); err != nil {
			s.log.Error("Daily batch run failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Batch scheduler started")
}

// Stop waits for a running batch to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Batch scheduler stopped")
}
