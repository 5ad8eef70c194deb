package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dosecare/dosecare-backend/internal/handlers"
	"github.com/dosecare/dosecare-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	MedicationHandler *handlers.MedicationHandler
	EventHandler      *handlers.EventHandler
	ReportHandler     *handlers.ReportHandler
	ConditionHandler  *handlers.ConditionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("dosecare"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/signup", cfg.AuthHandler.Signup)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// User
		protected.GET("/user", cfg.UserHandler.GetMe)
		protected.PATCH("/user", cfg.UserHandler.UpdateMe)
		protected.DELETE("/user", cfg.UserHandler.Deactivate)
		protected.GET("/user/slots/:slot", cfg.UserHandler.GetSlotTime)
		protected.PUT("/user/slots/:slot", cfg.UserHandler.SetSlotTime)

		// Medications
		protected.POST("/medications", cfg.MedicationHandler.Register)
		protected.GET("/medications", cfg.MedicationHandler.List)
		protected.GET("/medications/today", cfg.MedicationHandler.ListToday)
		protected.GET("/medications/:id", cfg.MedicationHandler.GetDetail)
		protected.PATCH("/medications/:id/category", cfg.MedicationHandler.RenameCategory)
		protected.GET("/medications/:id/combination", cfg.MedicationHandler.GetCombination)
		protected.PUT("/medications/:id/combination", cfg.MedicationHandler.UpdateCombination)
		protected.PUT("/alarm-times/:id", cfg.MedicationHandler.UpdateAlarmTime)
		protected.GET("/medications/:id/script", cfg.EventHandler.AIScript)

		// Events
		protected.GET("/events/today", cfg.EventHandler.Today)
		protected.POST("/events/:id/complete", cfg.EventHandler.Complete)

		// Conditions and presets
		protected.POST("/conditions", cfg.ConditionHandler.Record)
		protected.GET("/effects", cfg.ConditionHandler.Effects)
		protected.GET("/slots/:slot/hours", cfg.ConditionHandler.SlotHours)

		// Reports, addressed by medication
		protected.GET("/reports", cfg.ReportHandler.List)
		protected.GET("/medications/:id/report", cfg.ReportHandler.Detail)
		protected.GET("/medications/:id/report/summary", cfg.ReportHandler.Summary)
	}

	return router
}
