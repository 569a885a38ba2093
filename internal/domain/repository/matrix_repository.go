package repository

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/trip-planner/internal/domain"
)

// MaxMatrixWaypoints is the provider-side limit on matrix size. With at most
// ten segments plus one fixed start the pipeline stays well under it.
const MaxMatrixWaypoints = 25

// MatrixRepository produces pairwise travel costs along a real road/path
// network for an ordered waypoint list.
type MatrixRepository interface {
	// GetMatrix returns the full NxN distance/duration matrix for the given
	// waypoints, in the same order. len(points) must not exceed
	// MaxMatrixWaypoints.
	GetMatrix(ctx context.Context, points []domain.Point) (*domain.CostMatrix, error)

	// GetConnector returns the road-network path between two waypoints, or
	// nil when the provider cannot supply geometry. The stitcher falls back
	// to a straight line in that case.
	GetConnector(ctx context.Context, from, to domain.Point) (orb.LineString, error)
}
