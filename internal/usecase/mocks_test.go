package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"

	"github.com/trip-planner/internal/domain"
)

// MockSegmentRepository is a mock of SegmentRepository
type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SegmentMeta), args.Error(1)
}

// MockMatrixRepository is a mock of MatrixRepository
type MockMatrixRepository struct {
	mock.Mock
}

func (m *MockMatrixRepository) GetMatrix(ctx context.Context, points []domain.Point) (*domain.CostMatrix, error) {
	args := m.Called(ctx, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostMatrix), args.Error(1)
}

func (m *MockMatrixRepository) GetConnector(ctx context.Context, from, to domain.Point) (orb.LineString, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(orb.LineString), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetMatrix(ctx context.Context, fingerprint string) (*domain.CostMatrix, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostMatrix), args.Error(1)
}

func (m *MockCacheRepository) SetMatrix(ctx context.Context, fingerprint string, matrix *domain.CostMatrix, ttl time.Duration) error {
	args := m.Called(ctx, fingerprint, matrix, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SegmentMeta), args.Error(1)
}

func (m *MockCacheRepository) SetSegment(ctx context.Context, req domain.SegmentRequest, meta *domain.SegmentMeta, ttl time.Duration) error {
	args := m.Called(ctx, req, meta, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetTrip(ctx context.Context, id string) (*domain.TripPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPlan), args.Error(1)
}

func (m *MockCacheRepository) SetTrip(ctx context.Context, trip *domain.TripPlan, ttl time.Duration) error {
	args := m.Called(ctx, trip, ttl)
	return args.Error(0)
}

// MockTripRepository is a mock of TripRepository
type MockTripRepository struct {
	mock.Mock
}

func (m *MockTripRepository) Save(ctx context.Context, trip *domain.TripPlan) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TripPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPlan), args.Error(1)
}

func (m *MockTripRepository) ListRecent(ctx context.Context, limit int) ([]*domain.TripPlan, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TripPlan), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeJobs(ctx context.Context, stream, group, consumer string) (<-chan domain.PlanJob, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.PlanJob), args.Error(1)
}

func (m *MockStreamRepository) AckJob(ctx context.Context, stream, group, streamID string) error {
	args := m.Called(ctx, stream, group, streamID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishJob(ctx context.Context, stream string, job domain.PlanJob) error {
	args := m.Called(ctx, stream, job)
	return args.Error(0)
}

func (m *MockStreamRepository) SetJobResult(ctx context.Context, result domain.PlanJobResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockStreamRepository) GetJobResult(ctx context.Context, jobID string) (*domain.PlanJobResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanJobResult), args.Error(1)
}
