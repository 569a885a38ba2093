package planner

import (
	"fmt"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
)

// PartitionDays cuts the solved order into contiguous day groups that each
// respect the daily distance and elevation caps, minimizing nothing beyond
// what greedy forward accumulation yields. metas must be aligned with
// sol.Segments (solution order, not request order).
//
// The greedy walk is deliberately not a global optimizer: it never moves a
// segment to an earlier day or rebalances load. Repacking could occasionally
// save a day but would change observable day counts; the trade-off is
// responsiveness and stable output.
func PartitionDays(
	sol *domain.Solution,
	metas []domain.SegmentMeta,
	matrix *domain.CostMatrix,
	startIdx int,
	c domain.Constraints,
) ([]domain.DayPartition, error) {
	if sol == nil || len(sol.Segments) == 0 {
		return nil, errors.ErrInvalidInput.WithDetail("empty solution")
	}
	if len(metas) != len(sol.Segments) {
		return nil, errors.ErrInternalServer.WithDetail(
			fmt.Sprintf("%d segment metas for %d ordered segments", len(metas), len(sol.Segments)))
	}
	if c.MaxDays < 1 {
		return nil, errors.ErrInvalidInput.WithDetail("max days must be at least 1")
	}
	if c.MaxDailyDistanceMeters <= 0 || c.MaxDailyElevationMeters <= 0 {
		return nil, errors.ErrDailyLimitExceeded.WithDetail(fmt.Sprintf(
			"contradictory caps: max daily distance %.0f m, max daily elevation %.0f m",
			c.MaxDailyDistanceMeters, c.MaxDailyElevationMeters))
	}

	partitions := make([]domain.DayPartition, 0, c.MaxDays)

	day := domain.DayPartition{Day: 1, StartIndex: 0}
	dayEmpty := true
	prevIdx := startIdx

	closeDay := func(lastIndex int) {
		day.EndIndex = lastIndex
		partitions = append(partitions, day)
	}

	for i, seg := range sol.Segments {
		meta := metas[i]

		var connDist, connDur float64
		if prevIdx >= 0 {
			connDist = matrix.Distances[prevIdx][seg.StartIdx]
			connDur = matrix.Durations[prevIdx][seg.StartIdx]
		}

		stepDist := connDist + meta.DistanceMeters
		stepElev := meta.ElevationGainMeters
		stepDur := connDur + matrix.Durations[seg.StartIdx][seg.EndIdx]

		if !utils.IsFinite(stepDist) || !utils.IsFinite(stepElev) || !utils.IsFinite(stepDur) {
			return nil, errors.ErrDailyLimitExceeded.WithDetail(fmt.Sprintf(
				"segment %q (day %d): step cost is not finite", meta.ID, day.Day))
		}

		if !dayEmpty &&
			(day.DistanceMeters+stepDist > c.MaxDailyDistanceMeters ||
				day.ElevationGainMeters+stepElev > c.MaxDailyElevationMeters) {
			// Close the running day and open the next one with this segment
			// as its first entry. The connector from the previous segment's
			// end is still ridden, on the new day.
			closeDay(i - 1)
			if len(partitions)+1 > c.MaxDays {
				return nil, errors.ErrNeedMoreDays.WithDetail(fmt.Sprintf(
					"day %d would be needed but only %d allowed", len(partitions)+1, c.MaxDays))
			}
			day = domain.DayPartition{Day: len(partitions) + 1, StartIndex: i}
			dayEmpty = true
		}

		if dayEmpty && (stepDist > c.MaxDailyDistanceMeters || stepElev > c.MaxDailyElevationMeters) {
			// The first segment of a day already busts a cap on its own:
			// no partitioning can ever fit it.
			return nil, errors.ErrSegmentTooFar.WithDetail(fmt.Sprintf(
				"segment %q needs %.0f m distance and %.0f m climb in one day (caps %.0f m / %.0f m)",
				meta.ID, stepDist, stepElev, c.MaxDailyDistanceMeters, c.MaxDailyElevationMeters))
		}

		day.DistanceMeters += stepDist
		day.ElevationGainMeters += stepElev
		day.DurationSeconds += stepDur
		dayEmpty = false
		prevIdx = seg.EndIdx
	}

	closeDay(len(sol.Segments) - 1)

	return partitions, nil
}
