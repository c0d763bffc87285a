package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelrevenue/backend/internal/domain"
)

// PostgresRepository implements domain.BookingRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetBookingHistory retrieves booking rows for one room type, ordered by date
func (r *PostgresRepository) GetBookingHistory(ctx context.Context, roomType string, from, to time.Time) ([]domain.Observation, error) {
	query := `
		SELECT date, room_type, price, occupancy_rate
		FROM booking_history
		WHERE room_type = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, roomType, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query booking history: %w", err)
	}
	defer rows.Close()

	var results []domain.Observation
	for rows.Next() {
		var o domain.Observation
		if err := rows.Scan(&o.Date, &o.RoomType, &o.Price, &o.OccupancyRate); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan booking row: %w", err)
		}
		results = append(results, o)
	}

	return results, nil
}

// SaveObservations persists booking rows, upserting on (date, room_type)
func (r *PostgresRepository) SaveObservations(ctx context.Context, obs []domain.Observation) error {
	query := `
		INSERT INTO booking_history (date, room_type, price, occupancy_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, room_type) DO UPDATE
		SET price = EXCLUDED.price, occupancy_rate = EXCLUDED.occupancy_rate
	`

	for _, o := range obs {
		if _, err := r.pool.Exec(ctx, query, o.Date, o.RoomType, o.Price, o.OccupancyRate); err != nil {
			return fmt.Errorf("postgres: failed to save booking for %s: %w",
				o.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

// SaveRecommendationLog persists an optimizer outcome for auditing
func (r *PostgresRepository) SaveRecommendationLog(ctx context.Context, roomType string, result domain.OptimizationResult) error {
	query := `
		INSERT INTO recommendation_logs (
			room_type, base_demand, reference_price,
			optimal_price, predicted_occupancy, predicted_revpar, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		roomType, result.BaseDemand, result.ReferencePrice,
		result.OptimalPrice, result.PredictedOccupancy, result.PredictedRevPAR, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save recommendation log: %w", err)
	}

	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
