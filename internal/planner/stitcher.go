package planner

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

// Stitch concatenates, in solved order, the connector path to each segment
// and the segment's own path into one continuous polyline, with a cumulative
// distance per vertex. Missing connector or segment geometry degrades to a
// straight line; the stitch only fails when a segment has no coordinates at
// all. metas must be aligned with sol.Segments.
func Stitch(
	sol *domain.Solution,
	metas []domain.SegmentMeta,
	connectors domain.ConnectorSet,
	start *domain.Point,
) (*domain.StitchedGeometry, error) {
	if sol == nil || len(sol.Segments) == 0 {
		return nil, errors.ErrInvalidInput.WithDetail("empty solution")
	}
	if len(metas) != len(sol.Segments) {
		return nil, errors.ErrInternalServer.WithDetail(
			fmt.Sprintf("%d segment metas for %d ordered segments", len(metas), len(sol.Segments)))
	}
	for i, meta := range metas {
		if !meta.Resolvable() {
			return nil, errors.ErrGeometryUnresolvable.WithDetail(
				fmt.Sprintf("segment %q (position %d) has no coordinates", meta.ID, i))
		}
	}

	g := &domain.StitchedGeometry{
		Line:       make(orb.LineString, 0, 64),
		Cumulative: make([]float64, 0, 64),
		Spans:      make([]domain.SegmentSpan, len(sol.Segments)),
	}

	// append adds a vertex with its cumulative distance, dropping exact
	// duplicates so shared connector/segment endpoints appear once.
	appendPoint := func(p orb.Point) {
		n := len(g.Line)
		if n > 0 && g.Line[n-1] == p {
			return
		}
		cum := 0.0
		if n > 0 {
			cum = g.Cumulative[n-1] + geo.DistanceHaversine(g.Line[n-1], p)
		}
		g.Line = append(g.Line, p)
		g.Cumulative = append(g.Cumulative, cum)
	}

	current := func() float64 {
		if len(g.Cumulative) == 0 {
			return 0
		}
		return g.Cumulative[len(g.Cumulative)-1]
	}

	hasPrev := false
	prevIdx := -1
	if start != nil {
		appendPoint(orb.Point{start.Lon, start.Lat})
		hasPrev = true
		prevIdx = 0
	}

	for i, seg := range sol.Segments {
		meta := metas[i]
		spanStart := current()

		// Connector leg: provider path if available, otherwise the straight
		// line that connecting the previous vertex to the segment start
		// implies. Before the first segment of a start-less trip there is
		// nothing to connect from.
		if hasPrev {
			if line, ok := connectors.Get(prevIdx, seg.StartIdx); ok && len(line) > 0 {
				for _, p := range line {
					appendPoint(p)
				}
			}
			appendPoint(meta.StartPoint())
		}

		// Segment leg: stored path or straight line between its endpoints.
		if len(meta.Path) > 0 {
			for _, p := range meta.Path {
				appendPoint(p)
			}
		} else {
			appendPoint(meta.StartPoint())
			appendPoint(meta.EndPoint())
		}

		g.Spans[i] = domain.SegmentSpan{StartMeters: spanStart, EndMeters: current()}
		hasPrev = true
		prevIdx = seg.EndIdx
	}

	return g, nil
}
