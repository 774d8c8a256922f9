package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/impact"
	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
)

const (
	defaultHistoryWeeks = 12
	maxHistoryWeeks     = 52
)

type SignalHandler struct {
	Signals  SignalReader
	Readings ReadingReader
	Users    UserReader
	Spending SpendingStore
	Logger   *slog.Logger
}

// NewSignalHandler создает обработчик недельных сигналов.
func NewSignalHandler(signals SignalReader, readings ReadingReader, users UserReader, spending SpendingStore, logger *slog.Logger) *SignalHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SignalHandler{
		Signals:  signals,
		Readings: readings,
		Users:    users,
		Spending: spending,
		Logger:   logger,
	}
}

type CurrentSignalResponse struct {
	WeekStart               string                    `json:"week_start"`
	OverallStatus           models.OverallStatus      `json:"overall_status"`
	RiskCount               int                       `json:"risk_count"`
	Explanation             *string                   `json:"explanation"`
	Indicators              []models.IndicatorReading `json:"indicators"`
	UpdatedAt               time.Time                 `json:"updated_at"`
	ImpactAnalysis          *impact.Analysis          `json:"impact_analysis,omitempty"`
	UpgradeRequired         bool                      `json:"upgrade_required"`
	SpendingPatternRequired bool                      `json:"spending_pattern_required,omitempty"`
}

type SignalHistoryResponse struct {
	Weeks   int                   `json:"weeks"`
	Signals []models.WeeklySignal `json:"signals"`
}

// Current возвращает сигнал последней рассчитанной недели.
// Персональный анализ влияния доступен только premium-пользователям с заполненным профилем расходов.
func (h *SignalHandler) Current(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	signal, err := h.Signals.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "no signal yet")
		}
		return serverError(c)
	}

	readings, err := h.Readings.ListByWeek(ctx, signal.WeekStart)
	if err != nil {
		return serverError(c)
	}

	response := CurrentSignalResponse{
		WeekStart:     signal.WeekStart.Format(dateLayout),
		OverallStatus: signal.OverallStatus,
		RiskCount:     signal.RiskCount,
		Explanation:   signal.Explanation,
		Indicators:    readings,
		UpdatedAt:     signal.UpdatedAt,
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}
	if err != nil || !user.IsPremium() {
		response.UpgradeRequired = true
		return c.JSON(http.StatusOK, response)
	}

	pattern, err := h.Spending.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.SpendingPatternRequired = true
			return c.JSON(http.StatusOK, response)
		}
		return serverError(c)
	}

	analysis := impact.Calculate(readings, &pattern)
	response.ImpactAnalysis = &analysis

	h.Logger.Debug("impact analysis attached",
		slog.String("user_id", userID.String()),
		slog.String("week_start", response.WeekStart),
		slog.Float64("total_weekly_change", analysis.TotalWeeklyChange),
	)

	return c.JSON(http.StatusOK, response)
}

// History возвращает сигналы последних недель, новые первыми.
func (h *SignalHandler) History(c echo.Context) error {
	weeks, err := parseWeeks(c, defaultHistoryWeeks, maxHistoryWeeks)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.Signals.ListRecent(c.Request().Context(), weeks)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, SignalHistoryResponse{Weeks: weeks, Signals: items})
}
