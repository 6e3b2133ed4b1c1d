package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmcruz/news-digest/app/api"
	"github.com/dmcruz/news-digest/app/cfg"
	"github.com/dmcruz/news-digest/app/config"
	"github.com/dmcruz/news-digest/app/database"
	"github.com/dmcruz/news-digest/app/delivery"
	"github.com/dmcruz/news-digest/app/digest"
	"github.com/dmcruz/news-digest/app/news"
	"github.com/dmcruz/news-digest/app/scheduler"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting News Digest server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	userRepo := database.NewUserRepository(db)

	// Seed user profiles from the configuration file, if present
	seedLoader := config.NewLoader(appCfg.SeedFile)
	seed, err := seedLoader.Load()
	if err != nil {
		slog.Error("Failed to load user profiles", "file", appCfg.SeedFile, "error", err)
		os.Exit(1)
	}
	applied, err := seedLoader.Apply(seed, userRepo)
	if err != nil {
		slog.Error("Failed to apply user profiles", "file", appCfg.SeedFile, "error", err)
		os.Exit(1)
	}
	slog.Info("User profiles applied", "file", appCfg.SeedFile, "users", applied)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	searcherFactory := func(apiKey string) news.Searcher {
		if appCfg.NewsProvider == "rss" {
			return news.NewRSSSearcher(httpClient)
		}
		return news.NewAPISearcher(apiKey, httpClient)
	}

	whatsappSender := delivery.NewWhatsAppSender(httpClient)
	emailSender := delivery.NewEmailSender()
	dispatcher := delivery.NewDispatcher(whatsappSender, emailSender)

	runner := digest.NewRunner(userRepo, searcherFactory, dispatcher)

	digestScheduler := scheduler.NewScheduler(runner, scheduler.SystemClock())
	if err := digestScheduler.Start(appCfg.DailyTime); err != nil {
		slog.Error("Failed to start scheduler", "daily_time", appCfg.DailyTime, "error", err)
		os.Exit(1)
	}
	defer digestScheduler.Stop()

	apiHandler := api.NewHandler(userRepo, runner, digestScheduler, searcherFactory, whatsappSender, emailSender)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("News Digest server started", "daily_time", appCfg.DailyTime)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer; an in-flight digest run completes
	slog.Info("Shutdown complete")
}
