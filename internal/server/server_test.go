package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/config"
	"example.com/cost-signal/backend/internal/handlers"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()

	manager := auth.NewTokenManager("secret", "cost-signal", time.Hour)
	registerRoutes(
		e,
		okPinger{},
		&handlers.SignalHandler{},
		&handlers.IndicatorHandler{},
		&handlers.SpendingHandler{},
		&handlers.NotificationHandler{},
		&handlers.AdminHandler{},
		auth.JWTMiddleware(manager),
		handlers.AdminMiddleware(nil, nil),
		apiRateLimiter(config.ServerConfig{RateLimitPerMinute: 120, RateLimitBurst: 20}),
	)
	return e
}

// TestRegisterRoutes проверяет, что все публичные роуты зарегистрированы.
func TestRegisterRoutes(t *testing.T) {
	e := testEcho()

	registered := map[string]bool{}
	for _, route := range e.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/signals/current",
		"GET /api/v1/signals/history",
		"GET /api/v1/indicators/history",
		"GET /api/v1/indicators/export/csv",
		"GET /api/v1/indicators/export/xlsx",
		"GET /api/v1/spending-pattern",
		"PUT /api/v1/spending-pattern",
		"GET /api/v1/notifications/stream",
		"POST /api/v1/admin/signals/run",
		"POST /api/v1/admin/signals/recompute",
		"GET /api/v1/admin/usage",
	} {
		if !registered[want] {
			t.Fatalf("route %s is not registered", want)
		}
	}
}

// TestRoutesRequireToken проверяет, что API закрыто без Bearer-токена, а health открыт.
func TestRoutesRequireToken(t *testing.T) {
	e := testEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/signals/current", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// TestAdminRoutesForbiddenWithoutAllowList проверяет закрытую админку при пустом ADMIN_EMAILS.
func TestAdminRoutesForbiddenWithoutAllowList(t *testing.T) {
	e := testEcho()

	token, _, err := auth.NewTokenManager("secret", "cost-signal", time.Hour).IssueAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/usage", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

// TestNewHTTPServer проверяет адрес и таймауты.
func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080, ReadTimeout: time.Second}, http.NewServeMux())
	if srv.Addr != "127.0.0.1:8080" || srv.ReadTimeout != time.Second {
		t.Fatalf("unexpected server %+v", srv)
	}
}

type validatedRequest struct {
	MonthlyRent *float64 `json:"monthly_rent" validate:"omitempty,gte=0"`
}

// TestValidatorUsesJSONNames проверяет имена полей в ошибках валидации.
func TestValidatorUsesJSONNames(t *testing.T) {
	rent := -1.0
	err := NewValidator().Validate(&validatedRequest{MonthlyRent: &rent})
	if err == nil || !strings.Contains(err.Error(), "monthly_rent") {
		t.Fatalf("expected error naming monthly_rent, got %v", err)
	}
}
