package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// SegmentRepository resolves user-chosen segments against the external
// segment catalog. Implementations must return direction-adjusted metadata:
// when req.Reversed is set, Start/End and Path are already flipped.
type SegmentRepository interface {
	// GetSegment resolves a single segment request.
	GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error)
}
