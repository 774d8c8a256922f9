package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/models"
)

type IndicatorHandler struct {
	Readings ReadingReader
}

// NewIndicatorHandler создает обработчик истории индикаторов и выгрузок.
func NewIndicatorHandler(readings ReadingReader) *IndicatorHandler {
	return &IndicatorHandler{Readings: readings}
}

type IndicatorHistoryResponse struct {
	IndicatorType *models.IndicatorType     `json:"indicator_type"`
	Weeks         int                       `json:"weeks"`
	Readings      []models.IndicatorReading `json:"readings"`
}

// History возвращает показания индикаторов за последние недели, с фильтром по типу.
func (h *IndicatorHandler) History(c echo.Context) error {
	indicator, weeks, err := parseHistoryQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	readings, err := h.Readings.ListHistory(c.Request().Context(), indicator, weeks)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, IndicatorHistoryResponse{
		IndicatorType: indicator,
		Weeks:         weeks,
		Readings:      readings,
	})
}

func parseHistoryQuery(c echo.Context) (*models.IndicatorType, int, error) {
	indicator, err := parseIndicatorFilter(c)
	if err != nil {
		return nil, 0, err
	}

	weeks, err := parseWeeks(c, defaultHistoryWeeks, maxHistoryWeeks)
	if err != nil {
		return nil, 0, err
	}

	return indicator, weeks, nil
}
