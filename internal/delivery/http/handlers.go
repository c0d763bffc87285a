package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/internal/pricing"
	"github.com/hotelrevenue/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	revenueSvc *service.RevenueService
	log        *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(revenueSvc *service.RevenueService, log *zap.Logger) *Handler {
	return &Handler{revenueSvc: revenueSvc, log: log}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if err := h.revenueSvc.Health(c.Context()); err != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":  status,
		"service": "hotelrevenue-backend",
		"version": "1.0.0",
	})
}

type trainRequest struct {
	RoomType string `json:"room_type"`
}

// Train fits a fresh demand model for a room type
func (h *Handler) Train(c *fiber.Ctx) error {
	var req trainRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.RoomType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "room_type is required")
	}

	mae, err := h.revenueSvc.Train(c.Context(), req.RoomType)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"room_type": req.RoomType,
		"mae":       mae,
	})
}

// Forecast returns predicted occupancy with confidence bounds
func (h *Handler) Forecast(c *fiber.Ctx) error {
	roomType := c.Query("room_type", domain.StandardRoomType)
	days := c.QueryInt("days", 30)
	if days < 1 || days > 90 {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 90")
	}

	start := time.Now().AddDate(0, 0, 1)
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		start = parsed
	}

	preds, err := h.revenueSvc.Forecast(c.Context(), roomType, start, days)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(domain.ForecastResponse{Data: preds, Success: true})
}

type optimalPriceRequest struct {
	RoomType         string    `json:"room_type"`
	Date             string    `json:"date,omitempty"`
	BaseDemand       *float64  `json:"base_demand,omitempty"`
	CompetitorPrices []float64 `json:"competitor_prices,omitempty"`
	Target           string    `json:"target,omitempty"`
}

// OptimalPrice computes the revenue-maximizing price for a room type
func (h *Handler) OptimalPrice(c *fiber.Ctx) error {
	var req optimalPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.RoomType == "" {
		return fiber.NewError(fiber.StatusBadRequest, "room_type is required")
	}

	svcReq := service.PriceRequest{
		RoomType:         req.RoomType,
		BaseDemand:       req.BaseDemand,
		CompetitorPrices: req.CompetitorPrices,
		Target:           pricing.Target(req.Target),
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		svcReq.Date = date
	}

	result, err := h.revenueSvc.RecommendPrice(c.Context(), svcReq)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Scenarios returns the demand/revenue table over the configured price grid
func (h *Handler) Scenarios(c *fiber.Ctx) error {
	roomType := c.Query("room_type", domain.StandardRoomType)
	baseDemand := c.QueryFloat("base_demand", -1)
	if baseDemand < 0 || baseDemand > 1 {
		return fiber.NewError(fiber.StatusBadRequest, "base_demand must be in [0, 1]")
	}

	competitors, err := parsePriceList(c.Query("competitor_prices"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "competitor_prices must be comma-separated numbers")
	}

	points, err := h.revenueSvc.Scenarios(baseDemand, roomType, competitors)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    points,
		"count":   len(points),
	})
}

// Insights returns historical pricing insights for a room type
func (h *Handler) Insights(c *fiber.Ctx) error {
	roomType := c.Query("room_type", domain.StandardRoomType)

	summary, err := h.revenueSvc.Insights(c.Context(), roomType)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// FeatureImportance returns the trained model's feature ranking
func (h *Handler) FeatureImportance(c *fiber.Ctx) error {
	roomType := c.Query("room_type", domain.StandardRoomType)

	importance, err := h.revenueSvc.FeatureImportance(roomType)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    importance,
	})
}

// parsePriceList decodes a comma-separated price list query parameter.
func parsePriceList(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	prices := make([]float64, 0, len(parts))
	for _, part := range parts {
		price, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		prices = append(prices, price)
	}
	return prices, nil
}

// mapError converts domain error kinds to HTTP statuses.
func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownRoomType):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotTrained):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case domain.IsConfigError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case domain.IsDataError(err):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	h.log.Error("request failed", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
}
