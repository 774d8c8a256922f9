package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/notifications"
)

const (
	eventConnected    = "connected"
	heartbeatInterval = 25 * time.Second
	clientRetryMillis = 5000
)

type NotificationHandler struct {
	Hub       *notifications.Hub
	Heartbeat time.Duration
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Heartbeat: heartbeatInterval}
}

// Stream открывает SSE-поток: signal_updated приходит после каждого пересчета недели,
// между событиями идут комментарии-пинги, чтобы прокси не закрывали соединение.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	if _, err := fmt.Fprintf(c.Response(), "retry: %d\n\n", clientRetryMillis); err != nil {
		return nil
	}
	_ = writeSSE(c, notifications.Event{Type: eventConnected, Data: map[string]string{"user_id": userID.String()}})
	flusher.Flush()

	interval := h.Heartbeat
	if interval <= 0 {
		interval = heartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.Response().Write([]byte(": ping\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}
