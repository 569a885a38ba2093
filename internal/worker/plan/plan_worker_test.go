package plan_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	apperrors "github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
	"github.com/trip-planner/internal/worker/plan"
)

type mockStreamRepo struct {
	mock.Mock

	mu      sync.Mutex
	results []domain.PlanJobResult
	acked   []string
}

func (m *mockStreamRepo) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *mockStreamRepo) ConsumeJobs(ctx context.Context, stream, group, consumer string) (<-chan domain.PlanJob, error) {
	args := m.Called(ctx, stream, group, consumer)
	return args.Get(0).(<-chan domain.PlanJob), args.Error(1)
}

func (m *mockStreamRepo) AckJob(ctx context.Context, stream, group, streamID string) error {
	m.mu.Lock()
	m.acked = append(m.acked, streamID)
	m.mu.Unlock()
	return nil
}

func (m *mockStreamRepo) PublishJob(ctx context.Context, stream string, job domain.PlanJob) error {
	return nil
}

func (m *mockStreamRepo) SetJobResult(ctx context.Context, result domain.PlanJobResult) error {
	m.mu.Lock()
	m.results = append(m.results, result)
	m.mu.Unlock()
	return nil
}

func (m *mockStreamRepo) GetJobResult(ctx context.Context, jobID string) (*domain.PlanJobResult, error) {
	return nil, nil
}

func (m *mockStreamRepo) snapshot() ([]domain.PlanJobResult, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PlanJobResult(nil), m.results...), append([]string(nil), m.acked...)
}

type mockPlanner struct {
	mock.Mock
}

func (m *mockPlanner) PlanTrip(ctx context.Context, req *dto.PlanTripRequest) (*dto.TripPlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TripPlanResponse), args.Error(1)
}

func makeJob(t *testing.T) domain.PlanJob {
	t.Helper()
	payload, err := json.Marshal(&dto.PlanTripRequest{
		Segments:                []dto.SegmentInput{{ID: "229781"}},
		MaxDays:                 2,
		MaxDailyDistanceMeters:  100000,
		MaxDailyElevationMeters: 2000,
	})
	require.NoError(t, err)
	return domain.PlanJob{
		JobID:      uuid.New().String(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
		StreamID:   "1700000000000-0",
	}
}

// runWorker feeds the given jobs through a PlanWorker and returns after the
// worker has drained and stopped.
func runWorker(t *testing.T, streamRepo *mockStreamRepo, planner *mockPlanner, jobs ...domain.PlanJob) {
	t.Helper()

	jobChan := make(chan domain.PlanJob, len(jobs))
	for _, j := range jobs {
		jobChan <- j
	}
	close(jobChan)

	streamRepo.On("CreateConsumerGroup", mock.Anything, "trips:plan:jobs", "trip-plan-workers").Return(nil)
	streamRepo.On("ConsumeJobs", mock.Anything, "trips:plan:jobs", "trip-plan-workers", mock.Anything).
		Return((<-chan domain.PlanJob)(jobChan), nil)

	w := plan.NewPlanWorker(streamRepo, planner, "trips:plan:jobs", "trip-plan-workers", 2, zap.NewNop())

	// Closed channel makes Start return once all jobs are processed.
	err := w.Start(context.Background())
	require.NoError(t, err)
}

func TestPlanWorker_CompletesJob(t *testing.T) {
	streamRepo := &mockStreamRepo{}
	planner := &mockPlanner{}
	job := makeJob(t)

	tripID := uuid.New().String()
	planner.On("PlanTrip", mock.Anything, mock.Anything).Return(&dto.TripPlanResponse{
		ID:   tripID,
		Days: []dto.DayPlanResponse{{Number: 1}},
	}, nil)

	runWorker(t, streamRepo, planner, job)

	results, acked := streamRepo.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, job.JobID, results[0].JobID)
	assert.Equal(t, domain.PlanJobCompleted, results[0].Status)
	assert.Equal(t, tripID, results[0].TripID)
	assert.False(t, results[0].FinishedAt.IsZero())
	assert.Equal(t, []string{job.StreamID}, acked)
}

func TestPlanWorker_TypedFailureIsFinal(t *testing.T) {
	streamRepo := &mockStreamRepo{}
	planner := &mockPlanner{}
	job := makeJob(t)

	planner.On("PlanTrip", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNeedMoreDays.WithDetail("needs 3 days, budget is 2")).
		Once()

	runWorker(t, streamRepo, planner, job)

	results, acked := streamRepo.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, domain.PlanJobFailed, results[0].Status)
	assert.Equal(t, apperrors.ErrNeedMoreDays.Code, results[0].ErrorCode)
	assert.Len(t, acked, 1)

	// No second attempt for an infeasibility failure
	planner.AssertNumberOfCalls(t, "PlanTrip", 1)
}

func TestPlanWorker_RetriesTransientFailures(t *testing.T) {
	streamRepo := &mockStreamRepo{}
	planner := &mockPlanner{}
	job := makeJob(t)

	tripID := uuid.New().String()
	planner.On("PlanTrip", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrProviderError.WithDetail("matrix provider timed out")).
		Once()
	planner.On("PlanTrip", mock.Anything, mock.Anything).
		Return(&dto.TripPlanResponse{ID: tripID}, nil).
		Once()

	runWorker(t, streamRepo, planner, job)

	results, _ := streamRepo.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, domain.PlanJobCompleted, results[0].Status)
	planner.AssertNumberOfCalls(t, "PlanTrip", 2)
}

func TestPlanWorker_MalformedPayload(t *testing.T) {
	streamRepo := &mockStreamRepo{}
	planner := &mockPlanner{}

	job := domain.PlanJob{
		JobID:    uuid.New().String(),
		Payload:  []byte("{not json"),
		StreamID: "1700000000001-0",
	}

	runWorker(t, streamRepo, planner, job)

	results, acked := streamRepo.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, domain.PlanJobFailed, results[0].Status)
	assert.Equal(t, apperrors.ErrInvalidInput.Code, results[0].ErrorCode)
	assert.Len(t, acked, 1)
	planner.AssertNotCalled(t, "PlanTrip")
}
