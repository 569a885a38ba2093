package planner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

const (
	// MaxSegments bounds the whole pipeline: beyond this even the heuristic
	// tier gives no useful guarantees for a trip of day-sized chunks.
	MaxSegments = 10

	// exhaustiveLimit is the largest segment count solved by full
	// permutation search; 8! orderings is still instant.
	exhaustiveLimit = 8

	// defaultExactTimeout caps the optional exact solver tier.
	defaultExactTimeout = 30 * time.Second
)

// ExactSolver is the optional exact-optimization capability. When the
// runtime provides one it is tried first, time-boxed; any failure falls
// through to the built-in tiers. Implementations return the visiting order
// as a permutation of segment indices.
type ExactSolver interface {
	SolveOrder(ctx context.Context, matrix *domain.CostMatrix, pairs []WaypointPair, startIdx int) ([]int, error)
}

// SolverOptions tunes the tier selection. The zero value is valid: no exact
// solver, default timeout, no logging.
type SolverOptions struct {
	Exact        ExactSolver
	ExactTimeout time.Duration
	Logger       *zap.Logger
}

// SolveOrder decides the sequence in which the segments are ridden. Each
// segment is a forced edge (entered at its start waypoint, exited at its
// end); only the connective order between segments is chosen, minimizing
// total connector plus internal distance.
//
// Tier selection: exact solver if available (time-boxed, graceful
// fall-through), exhaustive permutation search for small inputs, nearest
// neighbor otherwise. Output is deterministic for identical input: equal-cost
// orderings resolve to the first one found in permutation/insertion order.
func SolveOrder(
	ctx context.Context,
	matrix *domain.CostMatrix,
	requests []domain.SegmentRequest,
	pairs []WaypointPair,
	startIdx int,
	opts SolverOptions,
) (*domain.Solution, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validateSolveInput(matrix, requests, pairs, startIdx); err != nil {
		return nil, err
	}

	started := time.Now()
	n := len(requests)

	var (
		order  []int
		method domain.SolveMethod
	)

	if opts.Exact != nil {
		if exactOrder, ok := tryExact(ctx, matrix, pairs, startIdx, opts, logger); ok {
			order = exactOrder
			method = domain.SolveMethodExact
		}
	}

	if order == nil {
		if n <= exhaustiveLimit {
			order = solveExhaustive(matrix, pairs, startIdx)
			method = domain.SolveMethodExhaustive
		} else {
			order = solveNearestNeighbor(matrix, pairs, startIdx)
			method = domain.SolveMethodNearestNeighbor
		}
	}

	if len(order) != n {
		// None of the tiers produced a full ordering. Indicates a
		// matrix/graph inconsistency; callers must not substitute a partial
		// order.
		return nil, errors.ErrSolverFailure.WithDetail(
			fmt.Sprintf("solver produced %d of %d positions", len(order), n))
	}

	dist, dur := orderCost(matrix, pairs, order, startIdx)

	segments := make([]domain.OrderedSegment, n)
	for pos, src := range order {
		segments[pos] = domain.OrderedSegment{
			Request:     requests[src],
			StartIdx:    pairs[src].Start,
			EndIdx:      pairs[src].End,
			Position:    pos,
			SourceIndex: src,
		}
	}

	return &domain.Solution{
		Segments:             segments,
		TotalDistanceMeters:  dist,
		TotalDurationSeconds: dur,
		Method:               method,
		SolveTime:            time.Since(started),
	}, nil
}

func validateSolveInput(matrix *domain.CostMatrix, requests []domain.SegmentRequest, pairs []WaypointPair, startIdx int) error {
	if len(requests) == 0 {
		return errors.ErrInvalidInput.WithDetail("no segments to order")
	}
	if len(requests) > MaxSegments {
		return errors.ErrInvalidInput.WithDetail(
			fmt.Sprintf("%d segments exceed the limit of %d", len(requests), MaxSegments))
	}
	if len(pairs) != len(requests) {
		return errors.ErrInvalidInput.WithDetail(
			fmt.Sprintf("%d waypoint pairs for %d segments", len(pairs), len(requests)))
	}
	if err := matrix.Validate(); err != nil {
		return errors.ErrInvalidInput.WithDetail(err.Error())
	}

	n := matrix.Size()
	if startIdx >= n {
		return errors.ErrInvalidInput.WithDetail(
			fmt.Sprintf("start waypoint %d out of matrix bounds %d", startIdx, n))
	}
	for i, p := range pairs {
		if p.Start < 0 || p.Start >= n || p.End < 0 || p.End >= n {
			return errors.ErrInvalidInput.WithDetail(
				fmt.Sprintf("segment %d waypoints (%d,%d) out of matrix bounds %d", i, p.Start, p.End, n))
		}
	}
	return nil
}

// tryExact runs the optional exact solver under a hard wall-clock timeout.
// It never fails the solve: any error or timeout falls back to the next tier.
func tryExact(
	ctx context.Context,
	matrix *domain.CostMatrix,
	pairs []WaypointPair,
	startIdx int,
	opts SolverOptions,
	logger *zap.Logger,
) ([]int, bool) {
	timeout := opts.ExactTimeout
	if timeout <= 0 {
		timeout = defaultExactTimeout
	}

	exactCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type exactResult struct {
		order []int
		err   error
	}
	resultCh := make(chan exactResult, 1)

	go func() {
		order, err := opts.Exact.SolveOrder(exactCtx, matrix, pairs, startIdx)
		resultCh <- exactResult{order: order, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			logger.Warn("Exact solver failed, falling back", zap.Error(res.err))
			return nil, false
		}
		if !isPermutation(res.order, len(pairs)) {
			logger.Warn("Exact solver returned an invalid ordering, falling back",
				zap.Ints("order", res.order))
			return nil, false
		}
		return res.order, true
	case <-exactCtx.Done():
		logger.Warn("Exact solver timed out, falling back",
			zap.Duration("timeout", timeout))
		return nil, false
	}
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// solveExhaustive enumerates every ordering and keeps the cheapest. The
// enumeration is lexicographic over segment indices and uses a strict
// comparison, so the first ordering found wins on cost ties - output is
// deterministic for identical input.
func solveExhaustive(matrix *domain.CostMatrix, pairs []WaypointPair, startIdx int) []int {
	n := len(pairs)

	best := make([]int, 0, n)
	bestCost := 0.0
	found := false

	current := make([]int, 0, n)
	used := make([]bool, n)

	var permute func()
	permute = func() {
		if len(current) == n {
			cost, _ := orderCost(matrix, pairs, current, startIdx)
			if !found || cost < bestCost {
				best = append(best[:0], current...)
				bestCost = cost
				found = true
			}
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			current = append(current, i)
			permute()
			current = current[:len(current)-1]
			used[i] = false
		}
	}
	permute()

	return best
}

// solveNearestNeighbor greedily appends the unvisited segment whose start
// waypoint is cheapest to reach from the current position. Not optimal;
// bounds runtime for large inputs. Without a fixed start the first requested
// segment opens the tour. Ties break toward the lowest segment index.
func solveNearestNeighbor(matrix *domain.CostMatrix, pairs []WaypointPair, startIdx int) []int {
	n := len(pairs)
	order := make([]int, 0, n)
	visited := make([]bool, n)

	current := startIdx
	if current < 0 {
		order = append(order, 0)
		visited[0] = true
		current = pairs[0].End
	}

	for len(order) < n {
		next := -1
		bestCost := 0.0
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			cost := matrix.Distances[current][pairs[i].Start]
			if next == -1 || cost < bestCost {
				next = i
				bestCost = cost
			}
		}
		order = append(order, next)
		visited[next] = true
		current = pairs[next].End
	}

	return order
}

// orderCost walks an ordering and sums connector plus internal cost, both
// distance and duration, starting from the fixed start when present.
func orderCost(matrix *domain.CostMatrix, pairs []WaypointPair, order []int, startIdx int) (dist, dur float64) {
	current := startIdx
	for _, idx := range order {
		p := pairs[idx]
		if current >= 0 {
			dist += matrix.Distances[current][p.Start]
			dur += matrix.Durations[current][p.Start]
		}
		dist += matrix.Distances[p.Start][p.End]
		dur += matrix.Durations[p.Start][p.End]
		current = p.End
	}
	return dist, dur
}
