package planner_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trip-planner/internal/domain"
	apperrors "github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/planner"
)

// stitchFixture is a two-segment trip on the equator with a fixed start at
// (0,0). Waypoints: 0=start 1=a.start 2=a.end 3=b.start 4=b.end.
func stitchFixture() (*domain.Solution, []domain.SegmentMeta, domain.ConnectorSet, *domain.Point) {
	sol := &domain.Solution{
		Segments: []domain.OrderedSegment{
			{Request: domain.SegmentRequest{ID: "a"}, StartIdx: 1, EndIdx: 2, Position: 0},
			{Request: domain.SegmentRequest{ID: "b"}, StartIdx: 3, EndIdx: 4, Position: 1},
		},
	}
	metas := []domain.SegmentMeta{
		{
			ID:    "a",
			Start: domain.Point{Lat: 0, Lon: 0.01},
			End:   domain.Point{Lat: 0, Lon: 0.03},
			Path:  orb.LineString{{0.01, 0}, {0.02, 0}, {0.03, 0}},
		},
		{
			ID:    "b",
			Start: domain.Point{Lat: 0, Lon: 0.04},
			End:   domain.Point{Lat: 0, Lon: 0.06},
			Path:  orb.LineString{{0.04, 0}, {0.05, 0}, {0.06, 0}},
		},
	}
	connectors := domain.ConnectorSet{
		{From: 0, To: 1}: orb.LineString{{0, 0}, {0.005, 0}, {0.01, 0}},
		{From: 2, To: 3}: orb.LineString{{0.03, 0}, {0.035, 0}, {0.04, 0}},
	}
	start := &domain.Point{Lat: 0, Lon: 0}
	return sol, metas, connectors, start
}

func assertStitchInvariants(t *testing.T, g *domain.StitchedGeometry) {
	t.Helper()
	require.Equal(t, len(g.Line), len(g.Cumulative))
	require.NotEmpty(t, g.Cumulative)
	assert.Zero(t, g.Cumulative[0])
	for i := 1; i < len(g.Cumulative); i++ {
		assert.LessOrEqual(t, g.Cumulative[i-1], g.Cumulative[i],
			"cumulative distance must be non-decreasing at vertex %d", i)
	}
	for i := 1; i < len(g.Spans); i++ {
		assert.Equal(t, g.Spans[i-1].EndMeters, g.Spans[i].StartMeters,
			"segment spans must tile the curve")
	}
}

func TestStitch_ConnectorsAndPaths(t *testing.T) {
	sol, metas, connectors, start := stitchFixture()

	g, err := planner.Stitch(sol, metas, connectors, start)
	require.NoError(t, err)
	assertStitchInvariants(t, g)

	// Shared vertices between connector end and segment start appear once:
	// start, 2 connector midpoints, 3+3 segment vertices, minus the two
	// joins already counted.
	expected := orb.LineString{
		{0, 0}, {0.005, 0}, {0.01, 0}, {0.02, 0}, {0.03, 0},
		{0.035, 0}, {0.04, 0}, {0.05, 0}, {0.06, 0},
	}
	assert.Equal(t, expected, g.Line)

	require.Len(t, g.Spans, 2)
	assert.Zero(t, g.Spans[0].StartMeters)
	assert.Equal(t, g.Cumulative[4], g.Spans[0].EndMeters, "span a ends where its path ends")
	assert.Equal(t, g.TotalMeters(), g.Spans[1].EndMeters)
}

func TestStitch_MissingConnectorFallsBackToStraightLine(t *testing.T) {
	sol, metas, _, start := stitchFixture()

	g, err := planner.Stitch(sol, metas, nil, start)
	require.NoError(t, err)
	assertStitchInvariants(t, g)

	// Without provider connectors the stitch jumps straight between
	// endpoints; no connector midpoints appear.
	expected := orb.LineString{
		{0, 0}, {0.01, 0}, {0.02, 0}, {0.03, 0},
		{0.04, 0}, {0.05, 0}, {0.06, 0},
	}
	assert.Equal(t, expected, g.Line)
}

func TestStitch_MissingSegmentPathFallsBackToEndpoints(t *testing.T) {
	sol, metas, connectors, start := stitchFixture()
	metas[1].Path = nil

	g, err := planner.Stitch(sol, metas, connectors, start)
	require.NoError(t, err)
	assertStitchInvariants(t, g)

	// Segment b collapses to the straight line between its endpoints.
	tail := g.Line[len(g.Line)-2:]
	assert.Equal(t, orb.LineString{{0.04, 0}, {0.06, 0}}, orb.LineString(tail))
}

func TestStitch_NoFixedStart(t *testing.T) {
	sol, metas, connectors, _ := stitchFixture()

	g, err := planner.Stitch(sol, metas, connectors, nil)
	require.NoError(t, err)
	assertStitchInvariants(t, g)

	// The trip opens directly at segment a's first vertex.
	assert.Equal(t, orb.Point{0.01, 0}, g.Line[0])
	assert.Zero(t, g.Cumulative[0])
}

func TestStitch_UnresolvableSegment(t *testing.T) {
	sol, metas, connectors, start := stitchFixture()
	metas[0] = domain.SegmentMeta{ID: "a"} // no path, no endpoints

	_, err := planner.Stitch(sol, metas, connectors, start)
	assert.ErrorIs(t, err, apperrors.ErrGeometryUnresolvable)
}

func TestStitch_MetaMisalignment(t *testing.T) {
	sol, metas, connectors, start := stitchFixture()

	_, err := planner.Stitch(sol, metas[:1], connectors, start)
	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}
