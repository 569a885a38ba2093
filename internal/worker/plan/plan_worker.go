package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	apperrors "github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
	"github.com/trip-planner/internal/worker"
)

// retryDelay spaces out repeated attempts on transient failures.
const retryDelay = 2 * time.Second

// Planner is the slice of the trip usecase the worker needs.
type Planner interface {
	PlanTrip(ctx context.Context, req *dto.PlanTripRequest) (*dto.TripPlanResponse, error)
}

// PlanWorker consumes planning jobs from the Redis stream, runs the full
// pipeline for each, and records the terminal result for client pickup.
type PlanWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	planner      Planner
	stream       string
	consumerName string
	maxRetries   int
}

func NewPlanWorker(
	streamRepo repository.StreamRepository,
	planner Planner,
	stream string,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *PlanWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &PlanWorker{
		BaseWorker:   worker.NewBaseWorker("trip-plan", consumerGroup, logger),
		streamRepo:   streamRepo,
		planner:      planner,
		stream:       stream,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start runs the consume loop until Stop or context cancellation.
func (w *PlanWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting PlanWorker",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	jobs, err := w.streamRepo.ConsumeJobs(ctx, w.stream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to start consuming jobs: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case job, ok := <-jobs:
			if !ok {
				logger.Info("Job channel closed")
				return nil
			}
			w.processJob(ctx, job)
		}
	}
}

// processJob runs the pipeline for one job and always leaves a terminal
// result plus an ack behind, whatever the outcome.
func (w *PlanWorker) processJob(ctx context.Context, job domain.PlanJob) {
	logger := w.Logger().With(zap.String("job_id", job.JobID))
	logger.Info("Processing plan job")

	result := domain.PlanJobResult{
		JobID:  job.JobID,
		Status: domain.PlanJobFailed,
	}

	var req dto.PlanTripRequest
	if err := json.Unmarshal(job.Payload, &req); err != nil {
		logger.Warn("Job payload is not a valid planning request", zap.Error(err))
		result.ErrorCode = apperrors.ErrInvalidInput.Code
		result.ErrorDetail = "malformed job payload"
		w.finish(ctx, job, result)
		return
	}

	resp, err := w.planWithRetries(ctx, &req, logger)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			result.ErrorCode = appErr.Code
			result.ErrorDetail = appErr.Message
			if detail, ok := appErr.Details["detail"].(string); ok {
				result.ErrorDetail = detail
			}
		} else {
			result.ErrorCode = apperrors.ErrInternalServer.Code
		}
		logger.Warn("Plan job failed",
			zap.String("error_code", result.ErrorCode),
			zap.Error(err))
		w.finish(ctx, job, result)
		return
	}

	result.Status = domain.PlanJobCompleted
	result.TripID = resp.ID
	logger.Info("Plan job completed",
		zap.String("trip_id", resp.ID),
		zap.Int("days", len(resp.Days)))
	w.finish(ctx, job, result)
}

// planWithRetries retries transient failures only. Typed planning failures
// (bad input, infeasible caps, unresolvable geometry) are final on the first
// attempt since retrying cannot change them.
func (w *PlanWorker) planWithRetries(ctx context.Context, req *dto.PlanTripRequest, logger *zap.Logger) (*dto.TripPlanResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		resp, err := w.planner.PlanTrip(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		logger.Warn("Transient failure, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		return true
	}
	switch appErr.Code {
	case apperrors.ErrProviderError.Code,
		apperrors.ErrDatabaseError.Code,
		apperrors.ErrCacheError.Code:
		return true
	}
	return false
}

func (w *PlanWorker) finish(ctx context.Context, job domain.PlanJob, result domain.PlanJobResult) {
	logger := w.Logger().With(zap.String("job_id", job.JobID))

	result.FinishedAt = time.Now().UTC()
	if err := w.streamRepo.SetJobResult(ctx, result); err != nil {
		logger.Error("Failed to record job result", zap.Error(err))
	}
	if err := w.streamRepo.AckJob(ctx, w.stream, w.ConsumerGroup(), job.StreamID); err != nil {
		logger.Error("Failed to ack job", zap.Error(err))
	}
}
