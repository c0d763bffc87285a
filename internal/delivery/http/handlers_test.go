package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/internal/forecast"
	"github.com/hotelrevenue/backend/internal/pricing"
	"github.com/hotelrevenue/backend/internal/repository/postgres"
	"github.com/hotelrevenue/backend/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	rules := domain.DefaultRuleSet()
	repo := postgres.NewSyntheticRepository(rules, 400)

	forecaster, err := forecast.NewForecaster(forecast.DefaultConfig(), nil)
	require.NoError(t, err)
	engine, err := pricing.NewEngine(rules, nil)
	require.NoError(t, err)

	svc := service.NewRevenueService(repo, forecaster, engine, rules, t.TempDir(), nil)
	app := fiber.New()
	SetupRoutes(app, svc, zap.NewNop())
	return app
}

func TestForecastRejectsOutOfRangeDays(t *testing.T) {
	app := newTestApp(t)

	for _, days := range []string{"0", "365", "-5"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/forecast?days="+days, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "days=%s", days)
	}
}

func TestScenariosUsesCompetitorPrices(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET",
		"/api/v1/pricing/scenarios?room_type=Deluxe&base_demand=0.75&competitor_prices=140,160,155,170", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []domain.ScenarioPoint `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data)

	// Reference is the competitor mean (155), not the Deluxe base price.
	first := body.Data[0]
	assert.InDelta(t, 120.0, first.Price, 1e-9)
	assert.InDelta(t, (120.0/155.0-1)*100, first.VsReferencePct, 1e-9)
}

func TestScenariosRejectsMalformedCompetitorPrices(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET",
		"/api/v1/pricing/scenarios?base_demand=0.75&competitor_prices=140,abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScenariosRejectsOutOfRangeBaseDemand(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/pricing/scenarios?base_demand=1.5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
