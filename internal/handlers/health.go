package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status string `json:"status"`
}

// Pinger проверяет доступность базы; pgxpool.Pool подходит как есть.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health возвращает простой статус сервиса.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready отвечает 503, пока база недоступна.
func Ready(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "database unavailable"})
		}

		return c.JSON(http.StatusOK, HealthResponse{Status: "ready"})
	}
}
