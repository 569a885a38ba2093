package planner

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

// ExtractDay slices the coordinate sub-range of the stitched geometry that
// falls within one day partition's distance span. Because partitions are
// contiguous in solution order and stitching preserves that order, the
// extraction is a bounded slice: two binary searches over the monotonic
// cumulative array. A day with zero coordinates is an internal defect, never
// silently accepted.
func ExtractDay(g *domain.StitchedGeometry, part domain.DayPartition) (*domain.DayGeometry, error) {
	if g == nil || len(g.Line) == 0 {
		return nil, errors.ErrInternalServer.WithDetail("empty stitched geometry")
	}
	if part.StartIndex < 0 || part.EndIndex >= len(g.Spans) || part.StartIndex > part.EndIndex {
		return nil, errors.ErrInternalServer.WithDetail(fmt.Sprintf(
			"day %d references segment range [%d,%d] outside %d stitched spans",
			part.Day, part.StartIndex, part.EndIndex, len(g.Spans)))
	}

	startM := g.Spans[part.StartIndex].StartMeters
	endM := g.Spans[part.EndIndex].EndMeters

	lo := sort.SearchFloat64s(g.Cumulative, startM)
	hi := sort.SearchFloat64s(g.Cumulative, endM)
	// Keep the whole plateau when consecutive vertices share a cumulative
	// value at the day boundary.
	for hi+1 < len(g.Cumulative) && g.Cumulative[hi+1] <= endM {
		hi++
	}
	if hi >= len(g.Cumulative) {
		hi = len(g.Cumulative) - 1
	}

	if lo > hi {
		return nil, errors.ErrInternalServer.WithDetail(fmt.Sprintf(
			"day %d covers no geometry between %.1f m and %.1f m", part.Day, startM, endM))
	}

	line := make(orb.LineString, hi-lo+1)
	copy(line, g.Line[lo:hi+1])

	return &domain.DayGeometry{
		Day:         part.Day,
		Line:        line,
		StartMeters: startM,
		EndMeters:   endM,
	}, nil
}
