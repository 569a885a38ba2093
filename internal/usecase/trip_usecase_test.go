package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/planner"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/usecase/dto"
)

type tripMocks struct {
	segments *MockSegmentRepository
	matrix   *MockMatrixRepository
	cache    *MockCacheRepository
	trips    *MockTripRepository
	stream   *MockStreamRepository
}

func newTripUseCase() (*usecase.TripUseCase, *tripMocks) {
	m := &tripMocks{
		segments: &MockSegmentRepository{},
		matrix:   &MockMatrixRepository{},
		cache:    &MockCacheRepository{},
		trips:    &MockTripRepository{},
		stream:   &MockStreamRepository{},
	}

	cfg := &config.Config{}
	cfg.Cache.MatrixCacheTTL = 15 * time.Minute
	cfg.Cache.SegmentCacheTTL = 24 * time.Hour
	cfg.Cache.TripCacheTTL = time.Hour
	cfg.Worker.Stream = "trips:plan:jobs"
	cfg.Planner.ExactSolverTimeout = time.Second

	uc := usecase.NewTripUseCase(m.segments, m.matrix, m.cache, m.trips, m.stream, cfg, zap.NewNop())
	return uc, m
}

// segMeta builds a resolvable segment with endpoints spread along the equator.
func segMeta(id string, pos int, distance, elevation float64) *domain.SegmentMeta {
	return &domain.SegmentMeta{
		ID:                  id,
		Name:                "Segment " + id,
		DistanceMeters:      distance,
		ElevationGainMeters: elevation,
		Start:               domain.Point{Lat: 0, Lon: float64(pos) * 0.1},
		End:                 domain.Point{Lat: 0, Lon: float64(pos)*0.1 + 0.05},
	}
}

// uniformMatrix builds a square matrix with |i-j| scaled costs.
func uniformMatrix(n int, scale float64) *domain.CostMatrix {
	dist := make([][]float64, n)
	dur := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		dur[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := scale * float64(abs(i-j))
			dist[i][j] = d
			dur[i][j] = d / 5
		}
	}
	return &domain.CostMatrix{Distances: dist, Durations: dur}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// stubExactSolver always returns a canned visiting order.
type stubExactSolver struct {
	order []int
	calls int
}

func (s *stubExactSolver) SolveOrder(_ context.Context, _ *domain.CostMatrix, _ []planner.WaypointPair, _ int) ([]int, error) {
	s.calls++
	return s.order, nil
}

func validRequest(segmentIDs ...string) *dto.PlanTripRequest {
	segments := make([]dto.SegmentInput, len(segmentIDs))
	for i, id := range segmentIDs {
		segments[i] = dto.SegmentInput{ID: id}
	}
	return &dto.PlanTripRequest{
		Name:                    "Test trip",
		Segments:                segments,
		MaxDays:                 3,
		MaxDailyDistanceMeters:  100000,
		MaxDailyElevationMeters: 2000,
	}
}

func TestTripUseCase_PlanTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("two segments one day", func(t *testing.T) {
		uc, m := newTripUseCase()

		// Cache misses everywhere, providers hit
		m.cache.On("GetSegment", ctx, mock.Anything).Return(nil, nil)
		m.cache.On("SetSegment", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		m.segments.On("GetSegment", ctx, domain.SegmentRequest{ID: "a"}).Return(segMeta("a", 0, 40000, 500), nil)
		m.segments.On("GetSegment", ctx, domain.SegmentRequest{ID: "b"}).Return(segMeta("b", 1, 40000, 400), nil)

		m.cache.On("GetMatrix", ctx, mock.Anything).Return(nil, nil)
		m.cache.On("SetMatrix", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		m.matrix.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(4, 1000), nil)

		m.trips.On("Save", ctx, mock.Anything).Return(nil)
		m.cache.On("SetTrip", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := uc.PlanTrip(ctx, validRequest("a", "b"))
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, string(domain.SolveMethodExhaustive), resp.Method)
		require.Len(t, resp.Days, 1)
		// connector a.end -> b.start is 1000 m, plus both internal distances
		assert.InDelta(t, 81000, resp.Days[0].DistanceMeters, 0.01)
		assert.Equal(t, []string{"a", "b"}, resp.Days[0].SegmentIDs)
		assert.NotEmpty(t, resp.Days[0].Geometry)
		assert.Equal(t, resp.Days[0].DistanceMeters, resp.TotalDistanceMeters)

		m.segments.AssertExpectations(t)
		m.matrix.AssertExpectations(t)
		m.trips.AssertExpectations(t)
	})

	t.Run("plugged exact solver takes over ordering", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, domain.SegmentRequest{ID: "a"}).Return(segMeta("a", 0, 30000, 300), nil)
		m.cache.On("GetSegment", ctx, domain.SegmentRequest{ID: "b"}).Return(segMeta("b", 1, 30000, 300), nil)
		m.cache.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(4, 1000), nil)
		m.trips.On("Save", ctx, mock.Anything).Return(nil)
		m.cache.On("SetTrip", ctx, mock.Anything, mock.Anything).Return(nil)

		solver := &stubExactSolver{order: []int{1, 0}}
		uc.UseExactSolver(solver)

		resp, err := uc.PlanTrip(ctx, validRequest("a", "b"))
		require.NoError(t, err)

		assert.Equal(t, 1, solver.calls)
		assert.Equal(t, string(domain.SolveMethodExact), resp.Method)
		require.Len(t, resp.Days, 1)
		assert.Equal(t, []string{"b", "a"}, resp.Days[0].SegmentIDs)
	})

	t.Run("segment cache hit skips provider", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, domain.SegmentRequest{ID: "a"}).Return(segMeta("a", 0, 30000, 300), nil)
		m.cache.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(2, 1000), nil)
		m.trips.On("Save", ctx, mock.Anything).Return(nil)
		m.cache.On("SetTrip", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := uc.PlanTrip(ctx, validRequest("a"))
		require.NoError(t, err)
		require.Len(t, resp.Days, 1)

		m.segments.AssertNotCalled(t, "GetSegment")
		m.matrix.AssertNotCalled(t, "GetMatrix")
	})

	t.Run("oversized single segment fails typed", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, mock.Anything).Return(nil, nil)
		m.cache.On("SetSegment", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		m.segments.On("GetSegment", ctx, domain.SegmentRequest{ID: "a"}).Return(segMeta("a", 0, 150000, 500), nil)
		m.cache.On("GetMatrix", ctx, mock.Anything).Return(nil, nil)
		m.cache.On("SetMatrix", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		m.matrix.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(2, 1000), nil)

		_, err := uc.PlanTrip(ctx, validRequest("a"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrSegmentTooFar)

		m.trips.AssertNotCalled(t, "Save")
	})

	t.Run("segment provider failure", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, mock.Anything).Return(nil, nil)
		m.segments.On("GetSegment", ctx, domain.SegmentRequest{ID: "a"}).Return(nil, fmt.Errorf("upstream down"))

		_, err := uc.PlanTrip(ctx, validRequest("a"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrProviderError)
	})

	t.Run("unknown segment id", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, mock.Anything).Return(nil, nil)
		m.segments.On("GetSegment", ctx, domain.SegmentRequest{ID: "gone"}).Return(nil, errors.ErrSegmentNotFound)

		_, err := uc.PlanTrip(ctx, validRequest("gone"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrSegmentNotFound)
	})

	t.Run("missing day budget", func(t *testing.T) {
		uc, _ := newTripUseCase()

		req := validRequest("a")
		req.MaxDays = 0

		_, err := uc.PlanTrip(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("date range derives day budget", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, mock.Anything).Return(segMeta("a", 0, 30000, 300), nil)
		m.cache.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(2, 1000), nil)
		m.trips.On("Save", ctx, mock.Anything).Return(nil)
		m.cache.On("SetTrip", ctx, mock.Anything, mock.Anything).Return(nil)

		req := validRequest("a")
		req.MaxDays = 0
		req.StartDate = "2026-06-01"
		req.EndDate = "2026-06-03"

		resp, err := uc.PlanTrip(ctx, req)
		require.NoError(t, err)
		assert.Len(t, resp.Days, 1)
	})

	t.Run("persist failure", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.cache.On("GetSegment", ctx, mock.Anything).Return(segMeta("a", 0, 30000, 300), nil)
		m.cache.On("GetMatrix", ctx, mock.Anything).Return(uniformMatrix(2, 1000), nil)
		m.trips.On("Save", ctx, mock.Anything).Return(fmt.Errorf("db down"))

		_, err := uc.PlanTrip(ctx, validRequest("a"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}

func TestTripUseCase_GetTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		uc, m := newTripUseCase()

		id := uuid.New()
		m.cache.On("GetTrip", ctx, id.String()).Return(&domain.TripPlan{ID: id}, nil)

		trip, err := uc.GetTrip(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, id, trip.ID)
		m.trips.AssertNotCalled(t, "GetByID")
	})

	t.Run("cache miss falls through to store", func(t *testing.T) {
		uc, m := newTripUseCase()

		id := uuid.New()
		m.cache.On("GetTrip", ctx, id.String()).Return(nil, nil)
		m.trips.On("GetByID", ctx, id).Return(&domain.TripPlan{ID: id}, nil)
		m.cache.On("SetTrip", ctx, mock.Anything, mock.Anything).Return(nil)

		trip, err := uc.GetTrip(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, id, trip.ID)
		m.trips.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		uc, m := newTripUseCase()

		id := uuid.New()
		m.cache.On("GetTrip", ctx, id.String()).Return(nil, nil)
		m.trips.On("GetByID", ctx, id).Return(nil, errors.ErrTripNotFound)

		_, err := uc.GetTrip(ctx, id.String())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrTripNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		uc, _ := newTripUseCase()

		_, err := uc.GetTrip(ctx, "not-a-uuid")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestTripUseCase_EnqueuePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes job", func(t *testing.T) {
		uc, m := newTripUseCase()

		m.stream.On("PublishJob", ctx, "trips:plan:jobs", mock.MatchedBy(func(job domain.PlanJob) bool {
			return job.JobID != "" && len(job.Payload) > 0
		})).Return(nil)

		resp, err := uc.EnqueuePlan(ctx, validRequest("a"))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.JobID)
		assert.Equal(t, string(domain.PlanJobPending), resp.Status)
		m.stream.AssertExpectations(t)
	})

	t.Run("rejects broken request before queuing", func(t *testing.T) {
		uc, m := newTripUseCase()

		req := validRequest("a")
		req.MaxDays = 0

		_, err := uc.EnqueuePlan(ctx, req)
		require.Error(t, err)
		m.stream.AssertNotCalled(t, "PublishJob")
	})
}

func TestTripUseCase_GetJobStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending while no result", func(t *testing.T) {
		uc, m := newTripUseCase()

		jobID := uuid.New().String()
		m.stream.On("GetJobResult", ctx, jobID).Return(nil, nil)

		resp, err := uc.GetJobStatus(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.PlanJobPending), resp.Status)
	})

	t.Run("completed result", func(t *testing.T) {
		uc, m := newTripUseCase()

		jobID := uuid.New().String()
		tripID := uuid.New().String()
		m.stream.On("GetJobResult", ctx, jobID).Return(&domain.PlanJobResult{
			JobID:  jobID,
			Status: domain.PlanJobCompleted,
			TripID: tripID,
		}, nil)

		resp, err := uc.GetJobStatus(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.PlanJobCompleted), resp.Status)
		assert.Equal(t, tripID, resp.TripID)
	})
}
