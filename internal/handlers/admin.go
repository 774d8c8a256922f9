package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/repository"
	"example.com/cost-signal/backend/internal/scheduler"
	"example.com/cost-signal/backend/internal/signals"
)

const (
	defaultUsageWeeks = 8
	maxUsageWeeks     = 52
)

type AdminHandler struct {
	Signals   WeekRunner
	Users     UserCounter
	Usage     UsageReader
	Scheduler SchedulerStatus
	Streams   StreamCounter
	Logger    *slog.Logger
}

// NewAdminHandler создает обработчик админских эндпоинтов. sched и streams могут быть nil.
func NewAdminHandler(runner WeekRunner, users UserCounter, usage UsageReader, sched SchedulerStatus, streams StreamCounter, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminHandler{
		Signals:   runner,
		Users:     users,
		Usage:     usage,
		Scheduler: sched,
		Streams:   streams,
		Logger:    logger,
	}
}

type AdminUsageResponse struct {
	Users     int                    `json:"users"`
	Plans     []repository.PlanCount `json:"plans"`
	Usage     repository.UsageStats  `json:"usage"`
	Scheduler *scheduler.Status      `json:"scheduler,omitempty"`
	Streams   int                    `json:"open_streams"`
}

// RunSignals запускает загрузку и расчет текущей недели вне расписания.
func (h *AdminHandler) RunSignals(c echo.Context) error {
	week := h.Signals.CurrentWeek()
	if raw := strings.TrimSpace(c.QueryParam("week")); raw != "" {
		parsed, err := parseWeek(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		week = parsed
	}

	result, err := h.Signals.RunWeek(c.Request().Context(), week)
	if err != nil {
		return h.signalError(c, "run", err)
	}

	return c.JSON(http.StatusOK, result)
}

// RecomputeSignals пересобирает сигнал недели из сохраненных показаний.
func (h *AdminHandler) RecomputeSignals(c echo.Context) error {
	week, err := parseWeek(c.QueryParam("week"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.Signals.Recompute(c.Request().Context(), week)
	if err != nil {
		return h.signalError(c, "recompute", err)
	}

	return c.JSON(http.StatusOK, result)
}

// UsageStats возвращает счетчики пользователей, тарифов и недельных расчетов.
func (h *AdminHandler) UsageStats(c echo.Context) error {
	weeks, err := parseWeeks(c, defaultUsageWeeks, maxUsageWeeks)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	users, err := h.Users.Count(ctx)
	if err != nil {
		return serverError(c)
	}

	plans, err := h.Users.CountByPlan(ctx)
	if err != nil {
		return serverError(c)
	}

	stats, err := h.Usage.UsageStats(ctx, weeks)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid weeks")
		}
		return serverError(c)
	}

	response := AdminUsageResponse{
		Users: users,
		Plans: plans,
		Usage: stats,
	}
	if h.Streams != nil {
		response.Streams = h.Streams.SubscriberCount()
	}
	if h.Scheduler != nil {
		status := h.Scheduler.Status()
		response.Scheduler = &status
	}

	return c.JSON(http.StatusOK, response)
}

func (h *AdminHandler) signalError(c echo.Context, action string, err error) error {
	switch {
	case errors.Is(err, signals.ErrWeekClosed):
		return conflict(c, "week is closed, use recompute")
	case errors.Is(err, signals.ErrWeekNotOpen):
		return unprocessable(c, "week has not started")
	case errors.Is(err, signals.ErrNoReadings):
		return notFound(c, "no readings for week")
	case errors.Is(err, signals.ErrNoObservations):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "indicator sources unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "signal run timed out"})
	}

	h.Logger.Error("signal "+action+" failed", slog.String("error", err.Error()))
	return serverError(c)
}

// AdminMiddleware ограничивает доступ к админским роутам по email.
func AdminMiddleware(users UserReader, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) == 0 {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return serverError(c)
			}

			email := strings.ToLower(strings.TrimSpace(user.Email))
			if _, ok := allowed[email]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}
