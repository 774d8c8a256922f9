package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/models"
)

const dateLayout = "2006-01-02"

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func unprocessable(c echo.Context, message string) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": message})
}

// parseWeeks читает параметр weeks: значение по умолчанию, если пусто, и не больше maxWeeks.
func parseWeeks(c echo.Context, defaultWeeks, maxWeeks int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("weeks"))
	if raw == "" {
		return defaultWeeks, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid weeks")
	}
	if parsed > maxWeeks {
		parsed = maxWeeks
	}

	return parsed, nil
}

// parseWeek разбирает дату YYYY-MM-DD и приводит ее к понедельнику недели.
func parseWeek(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("week is required")
	}

	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("week must be YYYY-MM-DD")
	}

	return models.WeekStart(day), nil
}

// parseIndicatorFilter разбирает необязательный параметр type.
func parseIndicatorFilter(c echo.Context) (*models.IndicatorType, error) {
	raw := strings.TrimSpace(c.QueryParam("type"))
	if raw == "" {
		return nil, nil
	}

	indicator, ok := models.ParseIndicatorType(strings.ToLower(raw))
	if !ok {
		return nil, errors.New("invalid indicator type")
	}

	return &indicator, nil
}
