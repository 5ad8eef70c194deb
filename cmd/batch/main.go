// One-shot runner for the daily reminder batch. Meant for cron-less
// deployments and for replaying a missed day by hand.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dosecare/dosecare-backend/internal/clients/fcm"
	"github.com/dosecare/dosecare-backend/internal/clients/redis"
	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/db"
	"github.com/dosecare/dosecare-backend/internal/jobs"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/services"
	"github.com/dosecare/dosecare-backend/internal/utils"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "production"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(utils.GetEnv("CONFIG_PATH", "config.yaml", log), log)
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}

	postgresService, err := db.NewPostgresService(cfg.Database, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	thePG := postgresService.DB()

	userRepo := repos.NewUserRepo(thePG, log)
	medicationRepo := repos.NewMedicationRepo(thePG, log)
	cycleRepo := repos.NewCycleRepo(thePG, log)
	alarmTimeRepo := repos.NewAlarmTimeRepo(thePG, log)
	eventRepo := repos.NewEventRepo(thePG, log)
	eventKindRepo := repos.NewEventKindRepo(thePG, log)
	descRepo := repos.NewDescriptionRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	quizOptionRepo := repos.NewQuizOptionRepo(thePG, log)

	var dayLock redis.DayLock
	if cfg.Redis.Addr != "" {
		dayLock, err = redis.NewDayLock(cfg.Redis, log)
		if err != nil {
			log.Warn("Could not init batch lock, running unlocked", "error", err)
		} else {
			defer dayLock.Close()
		}
	}
	pushClient, err := fcm.NewClient(cfg.Push, log)
	if err != nil {
		log.Warn("Could not init push client, notifications disabled", "error", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	eventService := services.NewEventService(
		thePG, log, rng, services.NewTTSService(log, nil), medicationRepo,
		cycleRepo, alarmTimeRepo, eventRepo, eventKindRepo, descRepo,
		quizRepo, quizOptionRepo,
	)

	batch := jobs.NewDailyBatch(log, dayLock, pushClient, userRepo, eventService, cfg.Batch.Concurrency)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	if err := batch.Run(ctx, time.Now()); err != nil {
		log.Fatal("Daily batch failed", "error", err)
	}
}
