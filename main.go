package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alt-text-pipeline/config"
	"alt-text-pipeline/database"
	"alt-text-pipeline/handlers"
	"alt-text-pipeline/metrics"
	"alt-text-pipeline/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required when LLM_PROVIDER=openai")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Initialize the batch processing service
	svc := service.NewService(cfg, db)
	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("Failed to prepare result store")
	}

	metrics.Register()

	// Initialize handlers
	h := handlers.NewHandlers(cfg, db, svc)

	// Setup HTTP server
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/models", h.GetModels)
		api.POST("/process", h.ProcessImages)
		api.GET("/results", h.GetResults)
		api.GET("/export", h.ExportCSV)
		api.POST("/delete", h.DeleteResults)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the processing service
	svc.Stop()

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}
