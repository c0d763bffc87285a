package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/internal/forecast"
	"github.com/hotelrevenue/backend/internal/pricing"
)

// historyWindowYears bounds how far back training and insights reach.
const historyWindowYears = 2

// RevenueService orchestrates booking history, demand forecasting and price
// optimization. Trained models are keyed by room type; each model instance is
// only ever read after the write that published it, guarded by the mutex.
type RevenueService struct {
	repo       BookingRepository
	forecaster *forecast.Forecaster
	engine     *pricing.Engine
	rules      domain.RuleSet
	modelDir   string
	log        *zap.Logger

	mu     sync.RWMutex
	models map[string]*forecast.TrainedModel

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewRevenueService creates a new revenue service
func NewRevenueService(
	repo BookingRepository,
	forecaster *forecast.Forecaster,
	engine *pricing.Engine,
	rules domain.RuleSet,
	modelDir string,
	log *zap.Logger,
) *RevenueService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RevenueService{
		repo:       repo,
		forecaster: forecaster,
		engine:     engine,
		rules:      rules,
		modelDir:   modelDir,
		log:        log,
		models:     make(map[string]*forecast.TrainedModel),
	}
}

// WaitBackground blocks until all background persistence goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *RevenueService) WaitBackground() {
	s.wgBg.Wait()
}

// Train fits a fresh demand model for roomType from repository history and
// returns the cross-validation mean absolute error. The model replaces any
// previously trained one and its artifact is saved under the model directory.
func (s *RevenueService) Train(ctx context.Context, roomType string) (float64, error) {
	if _, err := s.rules.Get(roomType); err != nil {
		return 0, err
	}

	to := time.Now()
	from := to.AddDate(-historyWindowYears, 0, 0)
	history, err := s.repo.GetBookingHistory(ctx, roomType, from, to)
	if err != nil {
		return 0, fmt.Errorf("loading booking history: %w", err)
	}

	model, mae, err := s.forecaster.Train(history, roomType)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.models[roomType] = model
	s.mu.Unlock()

	if s.modelDir != "" {
		path := filepath.Join(s.modelDir, roomType+".model")
		if err := os.MkdirAll(s.modelDir, 0o755); err != nil {
			s.log.Warn("failed to create model directory", zap.String("dir", s.modelDir), zap.Error(err))
		} else if err := model.Save(path); err != nil {
			s.log.Warn("failed to save model artifact", zap.String("path", path), zap.Error(err))
		}
	}
	return mae, nil
}

// LoadModel restores a previously saved model artifact for roomType.
func (s *RevenueService) LoadModel(roomType string) error {
	if _, err := s.rules.Get(roomType); err != nil {
		return err
	}
	model, err := forecast.Load(filepath.Join(s.modelDir, roomType+".model"))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.models[roomType] = model
	s.mu.Unlock()
	return nil
}

// model returns the trained model for roomType or ErrNotTrained.
func (s *RevenueService) model(roomType string) (*forecast.TrainedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[roomType]
	if !ok {
		return nil, fmt.Errorf("room type %q: %w", roomType, domain.ErrNotTrained)
	}
	return model, nil
}

// Forecast predicts occupancy for `days` dates starting at start. It stitches
// the most recent history onto seasonally seeded future rows so lag and
// rolling features are defined for the whole horizon.
func (s *RevenueService) Forecast(ctx context.Context, roomType string, start time.Time, days int) ([]domain.Prediction, error) {
	if days <= 0 {
		return nil, domain.NewDataError("forecast horizon must be positive, got %d days", days)
	}
	model, err := s.model(roomType)
	if err != nil {
		return nil, err
	}

	warmup := model.Warmup()
	history, err := s.repo.GetBookingHistory(ctx, roomType,
		start.AddDate(-historyWindowYears, 0, 0), start.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("loading booking history: %w", err)
	}
	if len(history) < warmup {
		return nil, domain.NewDataError("need %d days of history before %s, have %d",
			warmup, start.Format("2006-01-02"), len(history))
	}

	combined := append([]domain.Observation(nil), history[len(history)-warmup:]...)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		combined = append(combined, domain.Observation{
			Date:          date,
			RoomType:      roomType,
			OccupancyRate: seasonalBaseline(date),
		})
	}

	preds, err := model.Predict(combined, roomType)
	if err != nil {
		return nil, err
	}
	// The warmup rows are consumed by the feature builder, so the predictions
	// line up exactly with the requested horizon.
	return preds, nil
}

// PriceRequest describes one price-recommendation call. When BaseDemand is
// nil the trained model's forecast for Date supplies it.
type PriceRequest struct {
	RoomType         string
	Date             time.Time
	BaseDemand       *float64
	CompetitorPrices []float64
	Target           pricing.Target
}

// RecommendPrice resolves the base demand (caller-supplied or forecast),
// optimizes the price and logs the recommendation in the background.
func (s *RevenueService) RecommendPrice(ctx context.Context, req PriceRequest) (domain.OptimizationResult, error) {
	baseDemand, err := s.resolveBaseDemand(ctx, req)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	result, err := s.engine.OptimalPrice(pricing.OptimizeRequest{
		BaseDemand:       baseDemand,
		RoomType:         req.RoomType,
		CompetitorPrices: req.CompetitorPrices,
		Target:           req.Target,
	})
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	// Persist the recommendation asynchronously (tracked for graceful shutdown).
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveRecommendationLog(bgCtx, req.RoomType, result); err != nil {
			s.log.Warn("failed to save recommendation log",
				zap.String("room_type", req.RoomType), zap.Error(err))
		}
	}()

	return result, nil
}

// resolveBaseDemand treats the demand model's prediction as the base demand
// fed into the elasticity curve; a caller-supplied value overrides it.
func (s *RevenueService) resolveBaseDemand(ctx context.Context, req PriceRequest) (float64, error) {
	if req.BaseDemand != nil {
		d := *req.BaseDemand
		if d < 0 || d > 1 {
			return 0, domain.NewDataError("base demand %.3f outside [0, 1]", d)
		}
		return d, nil
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().AddDate(0, 0, 1)
	}
	preds, err := s.Forecast(ctx, req.RoomType, date, 1)
	if err != nil {
		return 0, err
	}
	return preds[0].PredictedOccupancy, nil
}

// Scenarios evaluates the price grid for roomType at the given base demand.
func (s *RevenueService) Scenarios(baseDemand float64, roomType string, competitorPrices []float64) ([]domain.ScenarioPoint, error) {
	return s.engine.ScenarioAnalysis(baseDemand, roomType, competitorPrices, nil)
}

// Insights summarizes historical pricing performance for roomType.
func (s *RevenueService) Insights(ctx context.Context, roomType string) (domain.InsightsSummary, error) {
	if _, err := s.rules.Get(roomType); err != nil {
		return domain.InsightsSummary{}, err
	}
	to := time.Now()
	history, err := s.repo.GetBookingHistory(ctx, roomType, to.AddDate(-historyWindowYears, 0, 0), to)
	if err != nil {
		return domain.InsightsSummary{}, fmt.Errorf("loading booking history: %w", err)
	}
	return s.engine.PricingInsights(history)
}

// FeatureImportance exposes the trained model's feature ranking.
func (s *RevenueService) FeatureImportance(roomType string) ([]domain.FeatureImportance, error) {
	model, err := s.model(roomType)
	if err != nil {
		return nil, err
	}
	return model.FeatureImportance(), nil
}

// Health checks repository connectivity.
func (s *RevenueService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// seasonalBaseline seeds future occupancy rows before the model refines them.
func seasonalBaseline(date time.Time) float64 {
	return 0.70 + 0.15*math.Sin(2*math.Pi*float64(date.Month())/12)
}
