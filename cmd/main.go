package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dosecare/dosecare-backend/internal/clients/fcm"
	"github.com/dosecare/dosecare-backend/internal/clients/ocr"
	"github.com/dosecare/dosecare-backend/internal/clients/openai"
	"github.com/dosecare/dosecare-backend/internal/clients/redis"
	"github.com/dosecare/dosecare-backend/internal/clients/tts"
	"github.com/dosecare/dosecare-backend/internal/config"
	"github.com/dosecare/dosecare-backend/internal/db"
	"github.com/dosecare/dosecare-backend/internal/handlers"
	"github.com/dosecare/dosecare-backend/internal/jobs"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/middleware"
	"github.com/dosecare/dosecare-backend/internal/observability"
	"github.com/dosecare/dosecare-backend/internal/parser"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/server"
	"github.com/dosecare/dosecare-backend/internal/services"
	"github.com/dosecare/dosecare-backend/internal/utils"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "dosecare",
		Environment: logMode,
	})
	defer func() {
		if shutdownOTel == nil {
			return
		}
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Database, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	if err := db.SeedReferenceData(thePG); err != nil {
		log.Fatal("Reference data seed failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	slotTimeRepo := repos.NewSlotTimeRepo(thePG, log)
	userSlotTimeRepo := repos.NewUserSlotTimeRepo(thePG, log)
	medicineRepo := repos.NewMedicineRepo(thePG, log)
	materialRepo := repos.NewMaterialRepo(thePG, log)
	ruleRepo := repos.NewInteractionRuleRepo(thePG, log)
	comboRepo := repos.NewAlarmComboRepo(thePG, log)
	medicationRepo := repos.NewMedicationRepo(thePG, log)
	itemRepo := repos.NewMedicationItemRepo(thePG, log)
	cycleRepo := repos.NewCycleRepo(thePG, log)
	alarmTimeRepo := repos.NewAlarmTimeRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	quizOptionRepo := repos.NewQuizOptionRepo(thePG, log)
	eventKindRepo := repos.NewEventKindRepo(thePG, log)
	descRepo := repos.NewDescriptionRepo(thePG, log)
	eventRepo := repos.NewEventRepo(thePG, log)
	effectRepo := repos.NewEffectRepo(thePG, log)
	conditionRepo := repos.NewConditionRepo(thePG, log)
	reportRepo := repos.NewReportRepo(thePG, log)

	// External clients
	log.Info("Setting up Clients from main...")
	ocrClient, err := ocr.NewClient(cfg.OCR, log)
	if err != nil {
		log.Fatal("Could not init OCR client", "error", err)
	}
	llmClient, err := openai.NewClient(cfg.LLM, log)
	if err != nil {
		log.Fatal("Could not init LLM client", "error", err)
	}
	var ttsClient tts.Client
	if cfg.TTS.BaseURL != "" {
		ttsClient, err = tts.NewClient(cfg.TTS, log)
		if err != nil {
			log.Warn("Could not init TTS client, audio disabled", "error", err)
		}
	}
	pushClient, err := fcm.NewClient(cfg.Push, log)
	if err != nil {
		log.Warn("Could not init push client, notifications disabled", "error", err)
	}
	var dayLock redis.DayLock
	if cfg.Redis.Addr != "" {
		dayLock, err = redis.NewDayLock(cfg.Redis, log)
		if err != nil {
			log.Warn("Could not init batch lock, running unlocked", "error", err)
		} else {
			defer dayLock.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ttsService := services.NewTTSService(log, ttsClient)
	prescriptionParser := parser.New(log)
	resolver := services.NewMedicineResolver(log, llmClient, medicineRepo, ruleRepo)
	scheduleBuilder := services.NewScheduleBuilder(thePG, log, medicationRepo, comboRepo, alarmTimeRepo, slotTimeRepo, userSlotTimeRepo)
	quizGenerator := services.NewQuizGenerator(log, rng, quizRepo, quizOptionRepo, medicineRepo, materialRepo)
	medicationService := services.NewMedicationService(
		thePG, log, ocrClient, prescriptionParser, resolver, scheduleBuilder,
		quizGenerator, ttsService, medicationRepo, itemRepo, cycleRepo,
		reportRepo, descRepo, eventKindRepo, alarmTimeRepo, ruleRepo,
	)
	eventService := services.NewEventService(
		thePG, log, rng, ttsService, medicationRepo, cycleRepo, alarmTimeRepo,
		eventRepo, eventKindRepo, descRepo, quizRepo, quizOptionRepo,
	)
	reportService := services.NewReportService(
		thePG, log, llmClient, medicationRepo, cycleRepo, reportRepo,
		eventRepo, itemRepo, conditionRepo,
	)
	userService := services.NewUserService(thePG, log, userRepo, slotTimeRepo, userSlotTimeRepo)
	authService := services.NewAuthService(log, userRepo, cfg.Auth.JWTSecretKey, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	conditionService := services.NewConditionService(thePG, log, effectRepo, conditionRepo)
	presetService := services.NewPresetService(log, slotTimeRepo, effectRepo)

	// Daily batch
	dailyBatch := jobs.NewDailyBatch(log, dayLock, pushClient, userRepo, eventService, cfg.Batch.Concurrency)
	scheduler, err := jobs.NewScheduler(cfg.Batch.Schedule, dailyBatch, log)
	if err != nil {
		log.Fatal("Invalid batch schedule", "schedule", cfg.Batch.Schedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:    middleware.NewAuthMiddleware(log, cfg.Auth.JWTSecretKey),
		AuthHandler:       handlers.NewAuthHandler(userService, authService),
		UserHandler:       handlers.NewUserHandler(userService),
		MedicationHandler: handlers.NewMedicationHandler(medicationService, scheduleBuilder),
		EventHandler:      handlers.NewEventHandler(eventService),
		ReportHandler:     handlers.NewReportHandler(reportService),
		ConditionHandler:  handlers.NewConditionHandler(conditionService, presetService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		log.Info("Server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
}
