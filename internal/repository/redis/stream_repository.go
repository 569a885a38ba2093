package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
)

// jobResultTTL bounds how long finished-job results wait for client pickup.
const jobResultTTL = 24 * time.Hour

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewStreamRepository(client *redis.Client, logger *zap.Logger) repository.StreamRepository {
	return &streamRepository{
		client: client,
		logger: logger,
	}
}

// CreateConsumerGroup ensures the consumer group exists, creating the stream
// on demand. An already-existing group is not an error.
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created successfully",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// ConsumeJobs reads planning jobs via the consumer group. The returned
// channel closes when ctx is canceled.
func (r *streamRepository) ConsumeJobs(ctx context.Context, stream, group, consumer string) (<-chan domain.PlanJob, error) {
	jobChan := make(chan domain.PlanJob, 10)

	go func() {
		defer close(jobChan)

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Job consumer stopped",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				return
			default:
				// Blocks for 1 second waiting for undelivered messages.
				result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    group,
					Consumer: consumer,
					Streams:  []string{stream, ">"},
					Count:    10,
					Block:    1 * time.Second,
				}).Result()

				if err != nil {
					if err == redis.Nil {
						// No new jobs yet
						continue
					}
					if ctx.Err() != nil {
						return
					}
					r.logger.Error("Failed to read from stream",
						zap.String("stream", stream),
						zap.Error(err))
					time.Sleep(time.Second)
					continue
				}

				for _, res := range result {
					for _, msg := range res.Messages {
						data, ok := msg.Values["job"].(string)
						if !ok {
							r.logger.Warn("Message does not contain 'job' field",
								zap.String("message_id", msg.ID))
							continue
						}

						var job domain.PlanJob
						if err := json.Unmarshal([]byte(data), &job); err != nil {
							r.logger.Warn("Failed to unmarshal job, acking and skipping",
								zap.String("message_id", msg.ID),
								zap.Error(err))
							r.client.XAck(ctx, stream, group, msg.ID)
							continue
						}
						job.StreamID = msg.ID

						select {
						case jobChan <- job:
							r.logger.Debug("Job sent to channel",
								zap.String("job_id", job.JobID),
								zap.String("message_id", msg.ID))
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return jobChan, nil
}

// AckJob acknowledges a processed job.
func (r *streamRepository) AckJob(ctx context.Context, stream, group, streamID string) error {
	err := r.client.XAck(ctx, stream, group, streamID).Err()
	if err != nil {
		r.logger.Error("Failed to acknowledge job",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.String("message_id", streamID),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge job: %w", err)
	}

	r.logger.Debug("Job acknowledged", zap.String("message_id", streamID))
	return nil
}

// PublishJob enqueues a planning job.
func (r *streamRepository) PublishJob(ctx context.Context, stream string, job domain.PlanJob) error {
	jsonData, err := json.Marshal(job)
	if err != nil {
		r.logger.Error("Failed to marshal job",
			zap.String("job_id", job.JobID),
			zap.Error(err))
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	result, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"job": string(jsonData),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to publish job",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish job: %w", err)
	}

	r.logger.Debug("Job published to stream",
		zap.String("stream", stream),
		zap.String("job_id", job.JobID),
		zap.String("message_id", result))
	return nil
}

// SetJobResult records the terminal state of a job for client pickup.
func (r *streamRepository) SetJobResult(ctx context.Context, result domain.PlanJobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	if err := r.client.Set(ctx, jobResultKey(result.JobID), data, jobResultTTL).Err(); err != nil {
		r.logger.Error("Failed to store job result",
			zap.String("job_id", result.JobID),
			zap.Error(err))
		return fmt.Errorf("failed to store job result: %w", err)
	}
	return nil
}

// GetJobResult returns the recorded result, or nil while still pending.
func (r *streamRepository) GetJobResult(ctx context.Context, jobID string) (*domain.PlanJobResult, error) {
	data, err := r.client.Get(ctx, jobResultKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}

	var result domain.PlanJobResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}
	return &result, nil
}

func jobResultKey(jobID string) string {
	return "trips:plan:result:" + jobID
}
