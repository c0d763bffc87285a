package domain

import (
	"context"
	"time"
)

// BookingRepository defines the interface for booking-history persistence.
// This follows the Dependency Inversion Principle - domain defines the interface.
type BookingRepository interface {
	// GetBookingHistory retrieves observations for one room type, ordered by date.
	GetBookingHistory(ctx context.Context, roomType string, from, to time.Time) ([]Observation, error)

	// SaveObservations persists booking rows, upserting on (date, room type).
	SaveObservations(ctx context.Context, obs []Observation) error

	// SaveRecommendationLog persists an optimizer outcome for auditing.
	SaveRecommendationLog(ctx context.Context, roomType string, result OptimizationResult) error

	// Health checks storage connectivity.
	Health(ctx context.Context) error
}
