package server

import (
	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	db handlers.Pinger,
	signalHandler *handlers.SignalHandler,
	indicatorHandler *handlers.IndicatorHandler,
	spendingHandler *handlers.SpendingHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	apiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)
	e.GET("/ready", handlers.Ready(db))

	api := e.Group("/api/v1", authMiddleware)

	signalsGroup := api.Group("/signals", apiRateLimiter)
	signalsGroup.GET("/current", signalHandler.Current)
	signalsGroup.GET("/history", signalHandler.History)

	indicators := api.Group("/indicators", apiRateLimiter)
	indicators.GET("/history", indicatorHandler.History)
	indicators.GET("/export/csv", indicatorHandler.ExportCSV)
	indicators.GET("/export/xlsx", indicatorHandler.ExportXLSX)

	spending := api.Group("/spending-pattern", apiRateLimiter)
	spending.GET("", spendingHandler.Get)
	spending.PUT("", spendingHandler.Put)

	notifications := api.Group("/notifications")
	notifications.GET("/stream", notificationHandler.Stream)

	admin := api.Group("/admin", adminMiddleware)
	admin.POST("/signals/run", adminHandler.RunSignals)
	admin.POST("/signals/recompute", adminHandler.RecomputeSignals)
	admin.GET("/usage", adminHandler.UsageStats)
}
