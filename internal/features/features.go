// Package features derives calendar, cyclical, lag and rolling-window features
// from a booking-history time series. Building is a pure function over the
// input rows; the leading rows lacking enough history for the configured lags
// and windows are dropped.
package features

import (
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hotelrevenue/backend/internal/domain"
)

// Column names of the raw inputs carried through the table.
const (
	ColPrice     = "price"
	ColOccupancy = "occupancy_rate"
)

// Config declares the lag offsets and rolling-window sizes to derive.
type Config struct {
	Lags    []int
	Windows []int
}

// DefaultConfig mirrors the standard feature set: daily, weekly, biweekly and
// monthly lags with weekly-to-monthly rolling statistics.
func DefaultConfig() Config {
	return Config{
		Lags:    []int{1, 7, 14, 30},
		Windows: []int{7, 14, 30},
	}
}

// Validate rejects non-positive lags or windows.
func (c Config) Validate() error {
	if len(c.Lags) == 0 && len(c.Windows) == 0 {
		return domain.NewConfigError("at least one lag or window is required")
	}
	for _, lag := range c.Lags {
		if lag <= 0 {
			return domain.NewConfigError("lag offsets must be positive, got %d", lag)
		}
	}
	for _, w := range c.Windows {
		if w <= 0 {
			return domain.NewConfigError("window sizes must be positive, got %d", w)
		}
	}
	return nil
}

// Warmup is the number of leading rows dropped for lack of history:
// max(lags ∪ windows).
func (c Config) Warmup() int {
	warmup := 0
	for _, lag := range c.Lags {
		if lag > warmup {
			warmup = lag
		}
	}
	for _, w := range c.Windows {
		if w > warmup {
			warmup = w
		}
	}
	return warmup
}

// ColumnNames returns the full derived column set in canonical order.
func (c Config) ColumnNames() []string {
	names := []string{
		"day_of_week", "month", "week_of_year",
		"is_weekend", "is_holiday", "is_summer", "is_winter",
		"day_sin", "day_cos", "month_sin", "month_cos",
		ColPrice, ColOccupancy,
	}
	lags := append([]int(nil), c.Lags...)
	sort.Ints(lags)
	for _, lag := range lags {
		names = append(names, lagColumn(lag))
	}
	windows := append([]int(nil), c.Windows...)
	sort.Ints(windows)
	for _, w := range windows {
		names = append(names, maColumn(w), stdColumn(w))
	}
	return names
}

// DefaultFeatureColumns is ColumnNames minus the raw price and target columns,
// i.e. the predictors a demand model trains on by default.
func (c Config) DefaultFeatureColumns() []string {
	names := c.ColumnNames()
	out := make([]string, 0, len(names)-2)
	for _, name := range names {
		if name == ColPrice || name == ColOccupancy {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Table is a column-indexed feature table aligned one-to-one with the input
// rows that survive the warmup drop.
type Table struct {
	Dates []time.Time
	Names []string

	index map[string]int
	rows  [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of one column.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, domain.NewConfigError("column %q is not in the feature table", name)
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Matrix assembles the named columns, in order, into a dense design matrix.
func (t *Table) Matrix(names []string) (*mat.Dense, error) {
	cols := make([]int, len(names))
	for k, name := range names {
		j, ok := t.index[name]
		if !ok {
			return nil, domain.NewConfigError("column %q is not in the feature table", name)
		}
		cols[k] = j
	}
	m := mat.NewDense(len(t.rows), len(names), nil)
	for i, row := range t.rows {
		for k, j := range cols {
			m.Set(i, k, row[j])
		}
	}
	return m, nil
}

// Build derives the feature table for a single room type's observations.
// Mixed room types must be filtered by the caller. Rows are sorted by date;
// duplicate dates are rejected.
func Build(obs []domain.Observation, cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, domain.NewDataError("no observations to build features from")
	}

	sorted := append([]domain.Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, domain.NewDataError("duplicate date %s for room type %q",
				sorted[i].Date.Format("2006-01-02"), sorted[i].RoomType)
		}
	}

	warmup := cfg.Warmup()
	if len(sorted) <= warmup {
		return nil, domain.NewDataError("need more than %d rows for the configured lags/windows, got %d",
			warmup, len(sorted))
	}

	names := cfg.ColumnNames()
	index := make(map[string]int, len(names))
	for j, name := range names {
		index[name] = j
	}

	occupancy := make([]float64, len(sorted))
	for i, o := range sorted {
		occupancy[i] = o.OccupancyRate
	}

	lags := append([]int(nil), cfg.Lags...)
	sort.Ints(lags)
	windows := append([]int(nil), cfg.Windows...)
	sort.Ints(windows)

	t := &Table{
		Names: names,
		index: index,
		Dates: make([]time.Time, 0, len(sorted)-warmup),
		rows:  make([][]float64, 0, len(sorted)-warmup),
	}
	for i := warmup; i < len(sorted); i++ {
		o := sorted[i]
		row := make([]float64, 0, len(names))
		row = append(row, calendarFeatures(o.Date)...)
		row = append(row, o.Price, o.OccupancyRate)
		for _, lag := range lags {
			row = append(row, occupancy[i-lag])
		}
		for _, w := range windows {
			window := occupancy[i-w+1 : i+1]
			row = append(row, stat.Mean(window, nil), windowStd(window))
		}
		t.Dates = append(t.Dates, o.Date)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// calendarFeatures encodes the calendar part of one row, in the same order as
// the leading entries of Config.ColumnNames. Day-of-week and month use
// sine/cosine pairs so that adjacent periods (Sunday/Monday, December/January)
// stay adjacent in feature space.
func calendarFeatures(date time.Time) []float64 {
	// Monday=0 .. Sunday=6, matching the usual dayofweek convention.
	dow := float64((int(date.Weekday()) + 6) % 7)
	month := float64(date.Month())
	_, week := date.ISOWeek()

	isWeekend := 0.0
	if dow >= 5 {
		isWeekend = 1
	}
	isHoliday := 0.0
	if holiday(date) {
		isHoliday = 1
	}
	isSummer := 0.0
	if date.Month() >= time.June && date.Month() <= time.August {
		isSummer = 1
	}
	isWinter := 0.0
	if date.Month() == time.December || date.Month() <= time.February {
		isWinter = 1
	}

	return []float64{
		dow, month, float64(week),
		isWeekend, isHoliday, isSummer, isWinter,
		math.Sin(2 * math.Pi * dow / 7), math.Cos(2 * math.Pi * dow / 7),
		math.Sin(2 * math.Pi * month / 12), math.Cos(2 * math.Pi * month / 12),
	}
}

// holiday flags the fixed-date public holidays relevant to hotel demand.
func holiday(date time.Time) bool {
	switch [2]int{int(date.Month()), date.Day()} {
	case [2]int{1, 1}, [2]int{5, 1}, [2]int{7, 14}, [2]int{8, 15}, [2]int{11, 1}, [2]int{12, 25}:
		return true
	}
	return false
}

// windowStd is the trailing-window sample standard deviation; a window of one
// row has zero spread.
func windowStd(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	return stat.StdDev(window, nil)
}

func lagColumn(lag int) string {
	return "occupancy_lag_" + strconv.Itoa(lag)
}

func maColumn(w int) string {
	return "occupancy_ma_" + strconv.Itoa(w)
}

func stdColumn(w int) string {
	return "occupancy_std_" + strconv.Itoa(w)
}
