package forecast

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelrevenue/backend/internal/domain"
)

func seasonalSeries(days int, roomType string) []domain.Observation {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]domain.Observation, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		occ := 0.60 + 0.18*math.Sin(2*math.Pi*float64(date.Month())/12)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			occ += 0.12
		}
		occ += 0.03 * math.Sin(float64(i)*0.7)
		obs = append(obs, domain.Observation{
			Date:          date,
			RoomType:      roomType,
			Price:         100,
			OccupancyRate: occ,
		})
	}
	return obs
}

func TestTrainYieldsFiniteMAE(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	model, mae, err := f.Train(seasonalSeries(365, "Standard"), "Standard")
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.False(t, math.IsNaN(mae))
	assert.False(t, math.IsInf(mae, 0))
	assert.GreaterOrEqual(t, mae, 0.0)
	assert.Less(t, mae, 1.0, "MAE on a [0,1] target should stay below 1")
}

func TestTrainFiltersRoomType(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	mixed := append(seasonalSeries(365, "Standard"), seasonalSeries(365, "Deluxe")...)
	model, _, err := f.Train(mixed, "Deluxe")
	require.NoError(t, err)
	require.NotNil(t, model)

	_, _, err = f.Train(mixed, "Suite")
	assert.True(t, domain.IsDataError(err), "unknown room type in data should be a data error")
}

func TestTrainTooFewRowsForFolds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Folds = 20
	f, err := NewForecaster(cfg, nil)
	require.NoError(t, err)

	// 65 observations leave 35 feature rows, below 2×20.
	_, _, err = f.Train(seasonalSeries(65, "Standard"), "Standard")
	assert.True(t, domain.IsConfigError(err))
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetColumn = ""
	_, err := NewForecaster(cfg, nil)
	assert.True(t, domain.IsConfigError(err))

	cfg = DefaultConfig()
	cfg.Folds = 1
	_, err = NewForecaster(cfg, nil)
	assert.True(t, domain.IsConfigError(err))

	cfg = DefaultConfig()
	cfg.FeatureColumns = nil
	_, err = NewForecaster(cfg, nil)
	assert.True(t, domain.IsConfigError(err))
}

func TestTrainUnknownFeatureColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeatureColumns = append(cfg.FeatureColumns, "no_such_column")
	f, err := NewForecaster(cfg, nil)
	require.NoError(t, err)

	_, _, err = f.Train(seasonalSeries(365, "Standard"), "Standard")
	assert.True(t, domain.IsConfigError(err))
}

func TestPredictBoundsAndOrdering(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	series := seasonalSeries(400, "Standard")
	model, _, err := f.Train(series[:365], "Standard")
	require.NoError(t, err)

	preds, err := model.Predict(series[335:], "Standard")
	require.NoError(t, err)
	require.Len(t, preds, 400-335-model.Warmup())

	for i, p := range preds {
		assert.GreaterOrEqual(t, p.PredictedOccupancy, 0.0)
		assert.LessOrEqual(t, p.PredictedOccupancy, 1.0)
		assert.LessOrEqual(t, p.LowerBound, p.PredictedOccupancy)
		assert.GreaterOrEqual(t, p.UpperBound, p.PredictedOccupancy)
		if i > 0 {
			assert.True(t, p.Date.After(preds[i-1].Date), "output ordering must match input ordering")
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	series := seasonalSeries(400, "Standard")
	model, _, err := f.Train(series[:365], "Standard")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "standard.model")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.FeatureNames(), loaded.FeatureNames())

	holdout := series[335:]
	want, err := model.Predict(holdout, "Standard")
	require.NoError(t, err)
	got, err := loaded.Predict(holdout, "Standard")
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].PredictedOccupancy, got[i].PredictedOccupancy, 1e-12)
		assert.InDelta(t, want[i].LowerBound, got[i].LowerBound, 1e-12)
		assert.InDelta(t, want[i].UpperBound, got[i].UpperBound, 1e-12)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.model"))
	assert.Error(t, err)
}

func TestFeatureImportanceNormalized(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	model, _, err := f.Train(seasonalSeries(365, "Standard"), "Standard")
	require.NoError(t, err)

	importance := model.FeatureImportance()
	require.Len(t, importance, len(model.FeatureNames()))

	total := 0.0
	for i, fi := range importance {
		assert.GreaterOrEqual(t, fi.Importance, 0.0)
		total += fi.Importance
		if i > 0 {
			assert.LessOrEqual(t, fi.Importance, importance[i-1].Importance, "importance must be sorted descending")
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestForwardChainFolds(t *testing.T) {
	folds := forwardChainFolds(100, 5)
	require.Len(t, folds, 5)

	for i, fd := range folds {
		assert.Greater(t, fd.trainEnd, 0)
		assert.Equal(t, fd.trainEnd, fd.valStart, "validation must start right after training rows")
		assert.Greater(t, fd.valEnd, fd.valStart)
		if i > 0 {
			assert.Greater(t, fd.trainEnd, folds[i-1].trainEnd)
		}
	}
	assert.Equal(t, 100, folds[len(folds)-1].valEnd, "last fold must absorb the remainder")
}

func TestRetrainProducesFreshFit(t *testing.T) {
	f, err := NewForecaster(DefaultConfig(), nil)
	require.NoError(t, err)

	series := seasonalSeries(365, "Standard")
	first, _, err := f.Train(series, "Standard")
	require.NoError(t, err)
	second, _, err := f.Train(series, "Standard")
	require.NoError(t, err)

	// Deterministic fit: same data, numerically identical models.
	assert.InDelta(t, first.ResidualStd(), second.ResidualStd(), 1e-12)
}
