package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"serptrack/internal/config"
	"serptrack/internal/db"
	"serptrack/internal/metrics"
	"serptrack/internal/provider"
	"serptrack/internal/ranking"
	"serptrack/internal/scheduler"
	"serptrack/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	metrics.Init(database)

	// Ranking providers and orchestration
	registry := provider.NewRegistry(
		provider.NewSerpAPI(database, cfg.ProviderTimeout),
		provider.NewScrapingRobot(database, cfg.ProviderTimeout),
	)
	svc := ranking.NewService(registry, database, database, database, logger)

	sched := scheduler.New(database, svc, scheduler.Config{
		Interval:         cfg.SchedulerInterval,
		BatchSize:        cfg.ScheduledBatchSize,
		ManualBatchSize:  cfg.ManualBatchSize,
		BatchDelay:       cfg.BatchDelay,
		ManualBatchDelay: cfg.ManualBatchDelay,
	}, logger)
	if cfg.SchedulerEnabled {
		sched.Start()
		log.Printf("Scheduler started, interval %s", cfg.SchedulerInterval)
	} else {
		log.Println("Scheduler disabled")
	}

	// HTTP server
	srv := server.New(cfg)
	srv.RegisterRoutes(database, registry, svc, sched)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	log.Printf("Server started on %s", cfg.ServerAddr)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sched.Stop()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
