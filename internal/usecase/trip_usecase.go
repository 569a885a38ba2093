package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/planner"
	"github.com/trip-planner/internal/usecase/dto"
)

// TripUseCase orchestrates the full planning pipeline: resolve segments,
// fetch the cost matrix, solve the riding order, cut days, stitch geometry,
// persist the result.
type TripUseCase struct {
	segmentRepo repository.SegmentRepository
	matrixRepo  repository.MatrixRepository
	cacheRepo   repository.CacheRepository
	tripRepo    repository.TripRepository
	streamRepo  repository.StreamRepository
	cfg         *config.Config
	logger      *zap.Logger

	// exact is the optional exact-order solver; nil means the exhaustive
	// and nearest-neighbor tiers carry all requests.
	exact planner.ExactSolver
}

func NewTripUseCase(
	segmentRepo repository.SegmentRepository,
	matrixRepo repository.MatrixRepository,
	cacheRepo repository.CacheRepository,
	tripRepo repository.TripRepository,
	streamRepo repository.StreamRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *TripUseCase {
	return &TripUseCase{
		segmentRepo: segmentRepo,
		matrixRepo:  matrixRepo,
		cacheRepo:   cacheRepo,
		tripRepo:    tripRepo,
		streamRepo:  streamRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// UseExactSolver plugs in an exact ordering backend. Until one is set the
// exhaustive and nearest-neighbor tiers handle all requests.
func (uc *TripUseCase) UseExactSolver(solver planner.ExactSolver) {
	uc.exact = solver
}

// PlanTrip runs the synchronous planning pipeline and persists the result.
func (uc *TripUseCase) PlanTrip(ctx context.Context, req *dto.PlanTripRequest) (*dto.TripPlanResponse, error) {
	constraints, err := req.Constraints()
	if err != nil {
		return nil, err
	}

	start := req.StartPoint()
	if start != nil && !utils.ValidateCoordinates(start.Lat, start.Lon) {
		return nil, errors.ErrInvalidInput.WithDetail("start coordinates out of range")
	}

	metas, err := uc.resolveSegments(ctx, req.SegmentRequests())
	if err != nil {
		return nil, err
	}

	points, pairs := planner.BuildWaypoints(metas, start)
	startIdx := planner.StartIndex(start)

	if len(points) > repository.MaxMatrixWaypoints {
		return nil, errors.ErrInvalidInput.WithDetail(fmt.Sprintf(
			"%d waypoints exceed the matrix limit of %d", len(points), repository.MaxMatrixWaypoints))
	}

	matrix, err := uc.fetchMatrix(ctx, points)
	if err != nil {
		return nil, err
	}

	sol, err := planner.SolveOrder(ctx, matrix, req.SegmentRequests(), pairs, startIdx, planner.SolverOptions{
		Exact:        uc.exact,
		ExactTimeout: uc.cfg.Planner.ExactSolverTimeout,
		Logger:       uc.logger,
	})
	if err != nil {
		return nil, err
	}

	// The pipeline stages downstream of the solver expect metadata in
	// solution order, not request order.
	orderedMetas := make([]domain.SegmentMeta, len(sol.Segments))
	for i, seg := range sol.Segments {
		orderedMetas[i] = metas[seg.SourceIndex]
	}

	partitions, err := planner.PartitionDays(sol, orderedMetas, matrix, startIdx, constraints)
	if err != nil {
		return nil, err
	}

	connectors := uc.fetchConnectors(ctx, sol, points, startIdx)

	stitched, err := planner.Stitch(sol, orderedMetas, connectors, start)
	if err != nil {
		return nil, err
	}

	trip, err := assembleTrip(req.Name, sol, orderedMetas, partitions, stitched)
	if err != nil {
		return nil, err
	}

	if err := uc.tripRepo.Save(ctx, trip); err != nil {
		uc.logger.Error("Failed to persist trip", zap.Error(err))
		return nil, errors.ErrDatabaseError.WithDetail("failed to save trip")
	}

	if err := uc.cacheRepo.SetTrip(ctx, trip, uc.cfg.Cache.TripCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache trip", zap.Error(err))
	}

	uc.logger.Info("Trip planned",
		zap.String("trip_id", trip.ID.String()),
		zap.String("method", string(trip.Method)),
		zap.Int("segments", len(sol.Segments)),
		zap.Int("days", len(trip.Days)),
		zap.Duration("solve_time", sol.SolveTime))

	return dto.FromTripPlan(trip), nil
}

// GetTrip fetches a persisted trip, cache first.
func (uc *TripUseCase) GetTrip(ctx context.Context, id string) (*domain.TripPlan, error) {
	tripID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrInvalidInput.WithDetail("trip id must be a UUID")
	}

	cached, err := uc.cacheRepo.GetTrip(ctx, id)
	if err != nil {
		uc.logger.Warn("Trip cache lookup failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	trip, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := uc.cacheRepo.SetTrip(ctx, trip, uc.cfg.Cache.TripCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache trip", zap.Error(err))
	}

	return trip, nil
}

// ListRecentTrips returns the newest persisted trips without day details.
func (uc *TripUseCase) ListRecentTrips(ctx context.Context, limit int) ([]*domain.TripPlan, error) {
	return uc.tripRepo.ListRecent(ctx, limit)
}

// EnqueuePlan publishes an async planning job and returns its id.
func (uc *TripUseCase) EnqueuePlan(ctx context.Context, req *dto.PlanTripRequest) (*dto.EnqueueResponse, error) {
	// Reject obviously broken requests before queuing.
	if _, err := req.Constraints(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.ErrInternalServer.WithDetail("failed to encode planning request")
	}

	job := domain.PlanJob{
		JobID:      uuid.New().String(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := uc.streamRepo.PublishJob(ctx, uc.cfg.Worker.Stream, job); err != nil {
		uc.logger.Error("Failed to enqueue plan job", zap.Error(err))
		return nil, errors.ErrInternalServer.WithDetail("failed to enqueue planning job")
	}

	uc.logger.Info("Plan job enqueued", zap.String("job_id", job.JobID))

	return &dto.EnqueueResponse{
		JobID:  job.JobID,
		Status: string(domain.PlanJobPending),
	}, nil
}

// GetJobStatus returns the async job result, or a pending status while the
// worker has not finished.
func (uc *TripUseCase) GetJobStatus(ctx context.Context, jobID string) (*dto.JobStatusResponse, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, errors.ErrInvalidInput.WithDetail("job id must be a UUID")
	}

	result, err := uc.streamRepo.GetJobResult(ctx, jobID)
	if err != nil {
		uc.logger.Error("Failed to fetch job result", zap.String("job_id", jobID), zap.Error(err))
		return nil, errors.ErrInternalServer.WithDetail("failed to fetch job result")
	}
	if result == nil {
		return &dto.JobStatusResponse{
			JobID:  jobID,
			Status: string(domain.PlanJobPending),
		}, nil
	}

	return &dto.JobStatusResponse{
		JobID:       result.JobID,
		Status:      string(result.Status),
		TripID:      result.TripID,
		ErrorCode:   result.ErrorCode,
		ErrorDetail: result.ErrorDetail,
	}, nil
}

// resolveSegments fetches direction-adjusted metadata for every requested
// segment, cache-aside.
func (uc *TripUseCase) resolveSegments(ctx context.Context, requests []domain.SegmentRequest) ([]domain.SegmentMeta, error) {
	metas := make([]domain.SegmentMeta, 0, len(requests))
	for _, req := range requests {
		cached, err := uc.cacheRepo.GetSegment(ctx, req)
		if err != nil {
			uc.logger.Warn("Segment cache lookup failed", zap.String("segment_id", req.ID), zap.Error(err))
		} else if cached != nil {
			metas = append(metas, *cached)
			continue
		}

		meta, err := uc.segmentRepo.GetSegment(ctx, req)
		if err != nil {
			uc.logger.Error("Failed to resolve segment", zap.String("segment_id", req.ID), zap.Error(err))
			if stderrors.Is(err, errors.ErrSegmentNotFound) {
				return nil, errors.ErrSegmentNotFound.WithDetail(fmt.Sprintf("segment %q does not exist", req.ID))
			}
			return nil, errors.ErrProviderError.WithDetail(fmt.Sprintf("failed to resolve segment %q", req.ID))
		}

		if err := uc.cacheRepo.SetSegment(ctx, req, meta, uc.cfg.Cache.SegmentCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache segment", zap.String("segment_id", req.ID), zap.Error(err))
		}
		metas = append(metas, *meta)
	}
	return metas, nil
}

// fetchMatrix returns the cost matrix for the waypoint list, cache-aside
// keyed by a coordinate fingerprint.
func (uc *TripUseCase) fetchMatrix(ctx context.Context, points []domain.Point) (*domain.CostMatrix, error) {
	fp := matrixFingerprint(points)

	cached, err := uc.cacheRepo.GetMatrix(ctx, fp)
	if err != nil {
		uc.logger.Warn("Matrix cache lookup failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	matrix, err := uc.matrixRepo.GetMatrix(ctx, points)
	if err != nil {
		uc.logger.Error("Failed to fetch cost matrix", zap.Error(err))
		return nil, errors.ErrProviderError.WithDetail("failed to fetch travel cost matrix")
	}

	if err := uc.cacheRepo.SetMatrix(ctx, fp, matrix, uc.cfg.Cache.MatrixCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache matrix", zap.Error(err))
	}

	return matrix, nil
}

// fetchConnectors requests road-network geometry for each inter-segment leg.
// Connector geometry is cosmetic: any failure just means a straight line in
// the stitched output, so errors never abort planning.
func (uc *TripUseCase) fetchConnectors(ctx context.Context, sol *domain.Solution, points []domain.Point, startIdx int) domain.ConnectorSet {
	if !uc.cfg.Mapbox.FetchConnectors {
		return nil
	}

	connectors := make(domain.ConnectorSet)
	prev := startIdx
	for _, seg := range sol.Segments {
		if prev >= 0 {
			line, err := uc.matrixRepo.GetConnector(ctx, points[prev], points[seg.StartIdx])
			if err != nil {
				uc.logger.Warn("Connector fetch failed, using straight line",
					zap.Int("from", prev),
					zap.Int("to", seg.StartIdx),
					zap.Error(err))
			} else if len(line) > 0 {
				connectors[domain.ConnectorKey{From: prev, To: seg.StartIdx}] = line
			}
		}
		prev = seg.EndIdx
	}
	return connectors
}

// assembleTrip turns pipeline output into the persisted trip, extracting the
// per-day sub-geometry for each partition.
func assembleTrip(
	name string,
	sol *domain.Solution,
	orderedMetas []domain.SegmentMeta,
	partitions []domain.DayPartition,
	stitched *domain.StitchedGeometry,
) (*domain.TripPlan, error) {
	trip := &domain.TripPlan{
		ID:        uuid.New(),
		Name:      name,
		Method:    sol.Method,
		Days:      make([]domain.DayPlan, 0, len(partitions)),
		CreatedAt: time.Now().UTC(),
	}

	for _, part := range partitions {
		dayGeom, err := planner.ExtractDay(stitched, part)
		if err != nil {
			return nil, err
		}

		day := domain.DayPlan{
			Number:              part.Day,
			DistanceMeters:      part.DistanceMeters,
			ElevationGainMeters: part.ElevationGainMeters,
			DurationSeconds:     part.DurationSeconds,
			Geometry:            dayGeom.Line,
		}
		for i := part.StartIndex; i <= part.EndIndex; i++ {
			day.SegmentIDs = append(day.SegmentIDs, orderedMetas[i].ID)
			day.SegmentNames = append(day.SegmentNames, orderedMetas[i].Name)
		}
		trip.Days = append(trip.Days, day)

		trip.TotalDistanceMeters += part.DistanceMeters
		trip.TotalElevationMeters += part.ElevationGainMeters
		trip.TotalDurationSeconds += part.DurationSeconds
	}

	return trip, nil
}

// matrixFingerprint builds a stable cache key from the exact waypoint order.
func matrixFingerprint(points []domain.Point) string {
	h := sha256.New()
	for _, p := range points {
		fmt.Fprintf(h, "%.6f,%.6f;", p.Lat, p.Lon)
	}
	return hex.EncodeToString(h.Sum(nil))
}
