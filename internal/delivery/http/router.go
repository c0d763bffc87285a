package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hotelrevenue/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, revenueSvc *service.RevenueService, log *zap.Logger) {
	handler := NewHandler(revenueSvc, log)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Demand forecasting endpoints
		api.Post("/train", handler.Train)
		api.Get("/forecast", handler.Forecast)
		api.Get("/features/importance", handler.FeatureImportance)

		// Pricing endpoints
		api.Post("/pricing/optimal", handler.OptimalPrice)
		api.Get("/pricing/scenarios", handler.Scenarios)
		api.Get("/insights", handler.Insights)
	}
}
