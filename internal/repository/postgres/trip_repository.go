package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	apperrors "github.com/trip-planner/internal/pkg/errors"
)

type tripRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewTripRepository(db *DB) repository.TripRepository {
	return &tripRepository{
		db:     db,
		logger: db.logger,
	}
}

// tripRow mirrors the trips table.
type tripRow struct {
	ID                   uuid.UUID    `db:"id"`
	Name                 string       `db:"name"`
	Method               string       `db:"method"`
	TotalDistanceMeters  float64      `db:"total_distance_meters"`
	TotalElevationMeters float64      `db:"total_elevation_meters"`
	TotalDurationSeconds float64      `db:"total_duration_seconds"`
	CreatedAt            sql.NullTime `db:"created_at"`
}

// dayRow mirrors the trip_days table.
type dayRow struct {
	TripID              uuid.UUID      `db:"trip_id"`
	DayNumber           int            `db:"day_number"`
	DistanceMeters      float64        `db:"distance_meters"`
	ElevationGainMeters float64        `db:"elevation_gain_meters"`
	DurationSeconds     float64        `db:"duration_seconds"`
	SegmentIDs          pq.StringArray `db:"segment_ids"`
	SegmentNames        pq.StringArray `db:"segment_names"`
	Geometry            []byte         `db:"geometry"`
}

// Save stores the trip and its days in one transaction.
func (r *tripRepository) Save(ctx context.Context, trip *domain.TripPlan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trips (id, name, method, total_distance_meters, total_elevation_meters, total_duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trip.ID, trip.Name, string(trip.Method),
		trip.TotalDistanceMeters, trip.TotalElevationMeters, trip.TotalDurationSeconds,
		trip.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert trip", zap.String("trip_id", trip.ID.String()), zap.Error(err))
		return fmt.Errorf("insert trip: %w", err)
	}

	for _, day := range trip.Days {
		geom, err := json.Marshal(day.Geometry)
		if err != nil {
			return fmt.Errorf("marshal day geometry: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO trip_days (trip_id, day_number, distance_meters, elevation_gain_meters, duration_seconds, segment_ids, segment_names, geometry)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			trip.ID, day.Number,
			day.DistanceMeters, day.ElevationGainMeters, day.DurationSeconds,
			pq.Array(day.SegmentIDs), pq.Array(day.SegmentNames), geom,
		)
		if err != nil {
			r.logger.Error("Failed to insert trip day",
				zap.String("trip_id", trip.ID.String()),
				zap.Int("day", day.Number),
				zap.Error(err))
			return fmt.Errorf("insert trip day %d: %w", day.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	r.logger.Info("Trip saved",
		zap.String("trip_id", trip.ID.String()),
		zap.Int("days", len(trip.Days)))
	return nil
}

// GetByID loads the trip with all its days.
func (r *tripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TripPlan, error) {
	var row tripRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, method, total_distance_meters, total_elevation_meters, total_duration_seconds, created_at
		FROM trips WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTripNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get trip", zap.String("trip_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get trip: %w", err)
	}

	trip := rowToTrip(row)

	var dayRows []dayRow
	err = r.db.SelectContext(ctx, &dayRows, `
		SELECT trip_id, day_number, distance_meters, elevation_gain_meters, duration_seconds, segment_ids, segment_names, geometry
		FROM trip_days WHERE trip_id = $1 ORDER BY day_number`, id)
	if err != nil {
		r.logger.Error("Failed to get trip days", zap.String("trip_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("get trip days: %w", err)
	}

	trip.Days = make([]domain.DayPlan, 0, len(dayRows))
	for _, d := range dayRows {
		day := domain.DayPlan{
			Number:              d.DayNumber,
			DistanceMeters:      d.DistanceMeters,
			ElevationGainMeters: d.ElevationGainMeters,
			DurationSeconds:     d.DurationSeconds,
			SegmentIDs:          []string(d.SegmentIDs),
			SegmentNames:        []string(d.SegmentNames),
		}
		if len(d.Geometry) > 0 {
			var line orb.LineString
			if err := json.Unmarshal(d.Geometry, &line); err != nil {
				return nil, fmt.Errorf("unmarshal day geometry: %w", err)
			}
			day.Geometry = line
		}
		trip.Days = append(trip.Days, day)
	}

	return trip, nil
}

// ListRecent returns the newest trips without their day details.
func (r *tripRepository) ListRecent(ctx context.Context, limit int) ([]*domain.TripPlan, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []tripRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, method, total_distance_meters, total_elevation_meters, total_duration_seconds, created_at
		FROM trips ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("Failed to list trips", zap.Error(err))
		return nil, fmt.Errorf("list trips: %w", err)
	}

	trips := make([]*domain.TripPlan, 0, len(rows))
	for _, row := range rows {
		trips = append(trips, rowToTrip(row))
	}
	return trips, nil
}

func rowToTrip(row tripRow) *domain.TripPlan {
	trip := &domain.TripPlan{
		ID:                   row.ID,
		Name:                 row.Name,
		Method:               domain.SolveMethod(row.Method),
		TotalDistanceMeters:  row.TotalDistanceMeters,
		TotalElevationMeters: row.TotalElevationMeters,
		TotalDurationSeconds: row.TotalDurationSeconds,
	}
	if row.CreatedAt.Valid {
		trip.CreatedAt = row.CreatedAt.Time
	}
	return trip
}
