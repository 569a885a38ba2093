package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/trip-planner/internal/domain"
)

// TripRepository persists finished trip plans so they can be shared and
// fetched later.
type TripRepository interface {
	Save(ctx context.Context, trip *domain.TripPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TripPlan, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.TripPlan, error)
}
