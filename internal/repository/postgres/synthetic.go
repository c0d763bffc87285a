package postgres

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/pkg/utils"
)

// syntheticSeed fixes the generator so demo data is reproducible.
const syntheticSeed = 42

// SyntheticRepository implements domain.BookingRepository with generated
// booking history for demo mode, when no database is configured. The series
// combines a seasonal baseline, a weekend boost and seeded noise, so repeated
// constructions yield identical data.
type SyntheticRepository struct {
	data map[string][]domain.Observation
}

// NewSyntheticRepository generates `days` of history per configured room type,
// ending yesterday.
func NewSyntheticRepository(rules domain.RuleSet, days int) *SyntheticRepository {
	rng := rand.New(rand.NewSource(syntheticSeed))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	// Iterate room types in a fixed order so the RNG stream is stable.
	roomTypes := make([]string, 0, len(rules))
	for roomType := range rules {
		roomTypes = append(roomTypes, roomType)
	}
	sort.Strings(roomTypes)

	data := make(map[string][]domain.Observation, len(roomTypes))
	for _, roomType := range roomTypes {
		r := rules[roomType]
		series := make([]domain.Observation, 0, days)
		for d := 0; d < days; d++ {
			date := start.AddDate(0, 0, d)

			seasonal := 0.65 + 0.20*math.Sin(2*math.Pi*float64(date.Month())/12)
			weekend := 0.0
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				weekend = 0.15
			}
			occupancy := utils.Clamp(seasonal+weekend+rng.NormFloat64()*0.05, 0.10, 0.98)

			// Price tracks demand with some noise, which leaves the realistic
			// negative price/occupancy correlation to the elasticity curve.
			price := utils.Clamp(r.BasePrice*(0.80+0.45*occupancy)+rng.NormFloat64()*r.BasePrice*0.05,
				r.MinPrice, r.MaxPrice)

			series = append(series, domain.Observation{
				Date:          date,
				RoomType:      roomType,
				Price:         utils.RoundTo(price, 2),
				OccupancyRate: utils.RoundTo(occupancy, 4),
			})
		}
		data[roomType] = series
	}

	return &SyntheticRepository{data: data}
}

// GetBookingHistory returns the generated rows inside [from, to]
func (r *SyntheticRepository) GetBookingHistory(ctx context.Context, roomType string, from, to time.Time) ([]domain.Observation, error) {
	series, ok := r.data[roomType]
	if !ok {
		return nil, nil
	}
	var results []domain.Observation
	for _, o := range series {
		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		results = append(results, o)
	}
	return results, nil
}

// SaveObservations is a no-op in demo mode
func (r *SyntheticRepository) SaveObservations(ctx context.Context, obs []domain.Observation) error {
	return nil
}

// SaveRecommendationLog is a no-op in demo mode
func (r *SyntheticRepository) SaveRecommendationLog(ctx context.Context, roomType string, result domain.OptimizationResult) error {
	return nil
}

// Health always returns nil in demo mode
func (r *SyntheticRepository) Health(ctx context.Context) error {
	return nil
}
