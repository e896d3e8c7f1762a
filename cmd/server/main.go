package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"hireloop/internal/agent"
	"hireloop/internal/api/routes"
	"hireloop/internal/config"
	"hireloop/internal/interview"
	"hireloop/internal/llm"
	"hireloop/internal/logging"
	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logging.Initialize(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.GetGlobalLogger()
	logger.Info("Starting Hireloop Interview Orchestrator")

	// Initialize the interview state store
	var st store.Store
	if cfg.Database.DSN != "" {
		pgStore, err := store.NewPostgresStore(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
		}
		st = pgStore
	} else {
		logger.Warn("No database DSN configured, using in-memory store")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{"error": err.Error()})
	}

	// Optional Redis client for cross-replica sweep coordination
	var redisClient *utils.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = utils.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
		if err := redisClient.Ping(pingCtx); err != nil {
			logger.Fatal("Redis ping failed", map[string]interface{}{"error": err.Error()})
		}
		cancel()
		defer redisClient.Close()
	}

	// Wire the orchestration core
	notifier := notify.NewNotifier(cfg)
	agentClient := agent.NewClient(cfg)
	svc := interview.NewService(cfg, st, llmManager, notifier)

	// Start the recurring interview sweep
	scheduler := interview.NewScheduler(cfg, st, agentClient, redisClient)
	scheduler.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, svc, st, llmManager)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop the sweep first so no new interviews get claimed mid-shutdown
		logger.Info("Stopping interview scheduler...")
		scheduler.Stop()

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
