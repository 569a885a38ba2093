package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CostMatrix holds pairwise travel cost between all waypoints of a planning
// request: distances in meters, durations in seconds. Index 0 is the fixed
// trip start when one was requested. Immutable once built.
type CostMatrix struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations"`
}

// Size returns the waypoint count N of the N x N matrix.
func (m *CostMatrix) Size() int {
	return len(m.Distances)
}

// Validate checks the pipeline precondition: both matrices square, same
// size, every entry finite and non-negative.
func (m *CostMatrix) Validate() error {
	n := len(m.Distances)
	if n == 0 {
		return fmt.Errorf("cost matrix is empty")
	}
	if len(m.Durations) != n {
		return fmt.Errorf("distance matrix is %dx%d but duration matrix has %d rows", n, n, len(m.Durations))
	}
	for i := 0; i < n; i++ {
		if len(m.Distances[i]) != n || len(m.Durations[i]) != n {
			return fmt.Errorf("matrix row %d is not of length %d", i, n)
		}
		for j := 0; j < n; j++ {
			if !isFiniteCost(m.Distances[i][j]) {
				return fmt.Errorf("distance[%d][%d] = %v is not a finite non-negative value", i, j, m.Distances[i][j])
			}
			if !isFiniteCost(m.Durations[i][j]) {
				return fmt.Errorf("duration[%d][%d] = %v is not a finite non-negative value", i, j, m.Durations[i][j])
			}
		}
	}
	return nil
}

func isFiniteCost(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ConnectorKey identifies a directed connector between two waypoint indices.
type ConnectorKey struct {
	From int
	To   int
}

// ConnectorSet maps waypoint pairs to the road-network path between them,
// as returned by the matrix provider. Sparse: missing pairs degrade to a
// straight line during stitching.
type ConnectorSet map[ConnectorKey]orb.LineString

// Get returns the connector path from one waypoint to another, if known.
func (s ConnectorSet) Get(from, to int) (orb.LineString, bool) {
	if s == nil {
		return nil, false
	}
	line, ok := s[ConnectorKey{From: from, To: to}]
	return line, ok
}
