package repository

import (
	"context"
	"time"

	"github.com/trip-planner/internal/domain"
)

// CacheRepository is the cache-aside layer in front of the external
// providers and the trip store.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetMatrix returns a cached cost matrix for a waypoint-list fingerprint.
	GetMatrix(ctx context.Context, fingerprint string) (*domain.CostMatrix, error)
	SetMatrix(ctx context.Context, fingerprint string, matrix *domain.CostMatrix, ttl time.Duration) error

	// GetSegment returns cached direction-adjusted segment metadata.
	GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error)
	SetSegment(ctx context.Context, req domain.SegmentRequest, meta *domain.SegmentMeta, ttl time.Duration) error

	// GetTrip returns a cached persisted trip plan.
	GetTrip(ctx context.Context, id string) (*domain.TripPlan, error)
	SetTrip(ctx context.Context, trip *domain.TripPlan, ttl time.Duration) error
}
