package planner

import (
	"github.com/trip-planner/internal/domain"
)

// WaypointPair holds the two matrix indices a segment occupies: entry at
// Start, exit at End. The traversal between them is a forced edge.
type WaypointPair struct {
	Start int
	End   int
}

// BuildWaypoints expands each resolved segment into its start/end waypoint
// pair, ordered per the segment's chosen direction, and optionally prepends
// the fixed trip start at index 0. The returned point list is the exact
// row/column order the cost matrix must be requested in.
func BuildWaypoints(metas []domain.SegmentMeta, start *domain.Point) ([]domain.Point, []WaypointPair) {
	points := make([]domain.Point, 0, 2*len(metas)+1)
	if start != nil {
		points = append(points, *start)
	}

	pairs := make([]WaypointPair, 0, len(metas))
	for _, meta := range metas {
		startIdx := len(points)
		points = append(points, meta.Start, meta.End)
		pairs = append(pairs, WaypointPair{Start: startIdx, End: startIdx + 1})
	}

	return points, pairs
}

// StartIndex returns the matrix index of the fixed trip start, or -1 when
// the trip has none.
func StartIndex(start *domain.Point) int {
	if start == nil {
		return -1
	}
	return 0
}
