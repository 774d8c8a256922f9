package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/config"
	"example.com/cost-signal/backend/internal/handlers"
	"example.com/cost-signal/backend/internal/notifications"
	"example.com/cost-signal/backend/internal/repository"
	"example.com/cost-signal/backend/internal/scheduler"
	"example.com/cost-signal/backend/internal/signals"
)

// App держит HTTP-сервер и фоновые части, которыми управляет main.
type App struct {
	Echo      *echo.Echo
	Signals   *signals.Service
	Scheduler *scheduler.Scheduler
	Hub       *notifications.Hub
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
// Планировщик создается, но не запускается; Scheduler равен nil, если он выключен.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	userRepo := repository.NewUserRepository(db)
	indicatorRepo := repository.NewIndicatorRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	spendingRepo := repository.NewSpendingRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()

	signalService := NewSignalService(cfg, logger, db, notificationHub)

	var sched *scheduler.Scheduler
	var schedStatus handlers.SchedulerStatus
	if cfg.Scheduler.Enabled {
		var err error
		sched, err = scheduler.New(cfg.Scheduler.Cron, weeklyJob(signalService), cfg.Scheduler.RunTimeout, logger)
		if err != nil {
			return nil, err
		}
		schedStatus = sched
	}

	signalHandler := handlers.NewSignalHandler(signalRepo, indicatorRepo, userRepo, spendingRepo, logger)
	indicatorHandler := handlers.NewIndicatorHandler(indicatorRepo)
	spendingHandler := handlers.NewSpendingHandler(spendingRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)
	adminHandler := handlers.NewAdminHandler(signalService, userRepo, adminRepo, schedStatus, notificationHub, logger)

	registerRoutes(
		e,
		db,
		signalHandler,
		indicatorHandler,
		spendingHandler,
		notificationHandler,
		adminHandler,
		auth.JWTMiddleware(tokenManager),
		handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		apiRateLimiter(cfg.Server),
	)

	return &App{
		Echo:      e,
		Signals:   signalService,
		Scheduler: sched,
		Hub:       notificationHub,
	}, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// weeklyJob пересчитывает неделю, в которую сработало расписание.
func weeklyJob(service *signals.Service) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := service.RunWeek(ctx, service.CurrentWeek())
		return err
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func apiRateLimiter(cfg config.ServerConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
