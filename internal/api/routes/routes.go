package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"hireloop/internal/api/handlers"
	"hireloop/internal/api/middleware"
	"hireloop/internal/config"
	"hireloop/internal/interview"
	"hireloop/internal/llm"
	"hireloop/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *interview.Service, st store.Store, llmManager *llm.Manager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Selective timeout: 30s for most endpoints, 2 minutes for AI-backed ones
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(st, llmManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(st, llmManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		// Operator routes, bearer key plus organization scoping
		candidates := v1.Group("/candidates", middleware.OperatorAuth(cfg))
		{
			candidates.GET("/:id", handlers.GetCandidateHandler(svc))
			candidates.POST("/:id/review", handlers.ReviewHandler(svc))
			candidates.POST("/:id/interview", handlers.TriggerHandler(svc))
			candidates.POST("/:id/cancel", handlers.CancelHandler(svc))
			candidates.POST("/:id/questions", handlers.QuestionsHandler(svc))
		}

		// Public scheduling surface, token-gated and rate limited
		v1.POST("/schedule", handlers.ScheduleHandler(svc), middleware.PublicRateLimit(cfg))

		// Machine callback from the interview agent
		v1.POST("/agent/callback", handlers.AgentCallbackHandler(svc), middleware.AgentAuth(cfg))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Hireloop Interview Orchestrator",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
