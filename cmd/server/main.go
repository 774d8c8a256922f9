package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/cost-signal/backend/internal/config"
	"example.com/cost-signal/backend/internal/database"
	"example.com/cost-signal/backend/internal/logging"
	"example.com/cost-signal/backend/internal/server"
	"example.com/cost-signal/backend/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		slog.Error("failed to init logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		_ = closeLog()
		os.Exit(1)
	}

	_ = closeLog()
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.Files); err != nil {
			return err
		}
	}

	app, err := server.New(cfg, logger, db)
	if err != nil {
		return err
	}
	httpServer := server.NewHTTPServer(cfg.Server, app.Echo)

	if app.Scheduler != nil {
		app.Scheduler.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := app.Echo.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-shutdownSignal:
	case runErr = <-serverErr:
		logger.Error("http server failed", slog.String("error", runErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.Scheduler != nil {
		app.Scheduler.Stop(shutdownCtx)
	}

	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}

	return runErr
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
