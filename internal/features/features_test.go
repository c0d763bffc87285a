package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelrevenue/backend/internal/domain"
)

// seasonalSeries builds a deterministic daily occupancy series: seasonal
// baseline, weekend boost and a smooth pseudo-noise term.
func seasonalSeries(days int) []domain.Observation {
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
			RoomType:      "Standard",
			Price:         100 + float64(i%5),
			OccupancyRate: occ,
		})
	}
	return obs
}

func TestBuildDropsWarmupRows(t *testing.T) {
	cfg := Config{Lags: []int{1, 7, 30}, Windows: []int{7}}
	obs := seasonalSeries(365)

	table, err := Build(obs, cfg)
	require.NoError(t, err)

	assert.Equal(t, 365-30, table.Len())
	assert.Equal(t, obs[30].Date, table.Dates[0])
	assert.Equal(t, obs[364].Date, table.Dates[table.Len()-1])
}

func TestBuildNoUndefinedValues(t *testing.T) {
	cfg := Config{Lags: []int{1, 7, 30}, Windows: []int{7, 14}}
	table, err := Build(seasonalSeries(120), cfg)
	require.NoError(t, err)

	for _, name := range table.Names {
		col, err := table.Column(name)
		require.NoError(t, err)
		for i, v := range col {
			require.False(t, math.IsNaN(v), "column %s row %d is NaN", name, i)
			require.False(t, math.IsInf(v, 0), "column %s row %d is Inf", name, i)
		}
	}
}

func TestBuildLagAndRollingValues(t *testing.T) {
	cfg := Config{Lags: []int{1, 30}, Windows: []int{7}}
	obs := seasonalSeries(90)

	table, err := Build(obs, cfg)
	require.NoError(t, err)

	// Row 0 corresponds to input index 30.
	lag1, err := table.Column("occupancy_lag_1")
	require.NoError(t, err)
	assert.InDelta(t, obs[29].OccupancyRate, lag1[0], 1e-12)

	lag30, err := table.Column("occupancy_lag_30")
	require.NoError(t, err)
	assert.InDelta(t, obs[0].OccupancyRate, lag30[0], 1e-12)

	ma7, err := table.Column("occupancy_ma_7")
	require.NoError(t, err)
	sum := 0.0
	for i := 24; i <= 30; i++ {
		sum += obs[i].OccupancyRate
	}
	assert.InDelta(t, sum/7, ma7[0], 1e-12)
}

func TestBuildCalendarEncodings(t *testing.T) {
	cfg := Config{Lags: []int{1}, Windows: nil}
	obs := seasonalSeries(365)

	table, err := Build(obs, cfg)
	require.NoError(t, err)

	daySin, err := table.Column("day_sin")
	require.NoError(t, err)
	dayCos, err := table.Column("day_cos")
	require.NoError(t, err)
	weekend, err := table.Column("is_weekend")
	require.NoError(t, err)
	holiday, err := table.Column("is_holiday")
	require.NoError(t, err)

	for i, date := range table.Dates {
		dow := float64((int(date.Weekday()) + 6) % 7)
		assert.InDelta(t, math.Sin(2*math.Pi*dow/7), daySin[i], 1e-12)
		assert.InDelta(t, math.Cos(2*math.Pi*dow/7), dayCos[i], 1e-12)

		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			assert.Equal(t, 1.0, weekend[i], "weekend flag on %s", date)
		default:
			assert.Equal(t, 0.0, weekend[i], "weekend flag on %s", date)
		}

		if date.Month() == time.December && date.Day() == 25 {
			assert.Equal(t, 1.0, holiday[i], "holiday flag on %s", date)
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	cfg := Config{Lags: []int{1, 7}, Windows: []int{7}}

	_, err := Build(nil, cfg)
	assert.True(t, domain.IsDataError(err), "empty input should be a data error")

	obs := seasonalSeries(30)
	obs[5].Date = obs[4].Date
	_, err = Build(obs, cfg)
	assert.True(t, domain.IsDataError(err), "duplicate dates should be a data error")

	_, err = Build(seasonalSeries(7), cfg)
	assert.True(t, domain.IsDataError(err), "insufficient history should be a data error")

	_, err = Build(seasonalSeries(30), Config{Lags: []int{0}})
	assert.True(t, domain.IsConfigError(err), "non-positive lag should be a config error")
}

func TestBuildSortsUnorderedInput(t *testing.T) {
	cfg := Config{Lags: []int{1}, Windows: nil}
	obs := seasonalSeries(40)
	obs[3], obs[20] = obs[20], obs[3]

	table, err := Build(obs, cfg)
	require.NoError(t, err)
	for i := 1; i < table.Len(); i++ {
		assert.True(t, table.Dates[i].After(table.Dates[i-1]))
	}
}

func TestMatrixUnknownColumn(t *testing.T) {
	table, err := Build(seasonalSeries(40), Config{Lags: []int{1}})
	require.NoError(t, err)

	_, err = table.Matrix([]string{"day_sin", "no_such_column"})
	assert.True(t, domain.IsConfigError(err))

	_, err = table.Column("no_such_column")
	assert.True(t, domain.IsConfigError(err))
}

func TestDefaultFeatureColumnsExcludeRawInputs(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range cfg.DefaultFeatureColumns() {
		assert.NotEqual(t, ColPrice, name)
		assert.NotEqual(t, ColOccupancy, name)
	}
	assert.Equal(t, 30, cfg.Warmup())
}
