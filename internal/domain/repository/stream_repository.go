package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// StreamRepository is the async planning job queue.
type StreamRepository interface {
	// CreateConsumerGroup ensures the consumer group exists on the stream.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeJobs reads planning jobs via the consumer group. The returned
	// channel closes when ctx is canceled.
	ConsumeJobs(ctx context.Context, stream, group, consumer string) (<-chan domain.PlanJob, error)

	// AckJob acknowledges a processed job.
	AckJob(ctx context.Context, stream, group, streamID string) error

	// PublishJob enqueues a planning job.
	PublishJob(ctx context.Context, stream string, job domain.PlanJob) error

	// SetJobResult records the terminal state of a job for client pickup.
	SetJobResult(ctx context.Context, result domain.PlanJobResult) error

	// GetJobResult returns the recorded result, or nil while still pending.
	GetJobResult(ctx context.Context, jobID string) (*domain.PlanJobResult, error)
}
