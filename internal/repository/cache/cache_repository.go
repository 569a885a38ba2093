package cache

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

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetMatrix returns a cached cost matrix for a waypoint-list fingerprint.
func (r *cacheRepository) GetMatrix(ctx context.Context, fingerprint string) (*domain.CostMatrix, error) {
	key := "matrix:" + fingerprint
	data, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var matrix domain.CostMatrix
	if err := json.Unmarshal(data, &matrix); err != nil {
		r.logger.Error("Failed to unmarshal matrix from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal matrix: %w", err)
	}

	return &matrix, nil
}

func (r *cacheRepository) SetMatrix(ctx context.Context, fingerprint string, matrix *domain.CostMatrix, ttl time.Duration) error {
	data, err := json.Marshal(matrix)
	if err != nil {
		r.logger.Error("Failed to marshal matrix", zap.Error(err))
		return fmt.Errorf("marshal matrix: %w", err)
	}

	return r.Set(ctx, "matrix:"+fingerprint, data, ttl)
}

// GetSegment returns cached direction-adjusted segment metadata. Forward and
// reversed resolutions of the same id are cached under distinct keys.
func (r *cacheRepository) GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error) {
	data, err := r.Get(ctx, segmentKey(req))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var meta domain.SegmentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		r.logger.Error("Failed to unmarshal segment from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal segment: %w", err)
	}

	return &meta, nil
}

func (r *cacheRepository) SetSegment(ctx context.Context, req domain.SegmentRequest, meta *domain.SegmentMeta, ttl time.Duration) error {
	data, err := json.Marshal(meta)
	if err != nil {
		r.logger.Error("Failed to marshal segment", zap.Error(err))
		return fmt.Errorf("marshal segment: %w", err)
	}

	return r.Set(ctx, segmentKey(req), data, ttl)
}

// GetTrip returns a cached persisted trip plan.
func (r *cacheRepository) GetTrip(ctx context.Context, id string) (*domain.TripPlan, error) {
	data, err := r.Get(ctx, "trip:"+id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var trip domain.TripPlan
	if err := json.Unmarshal(data, &trip); err != nil {
		r.logger.Error("Failed to unmarshal trip from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal trip: %w", err)
	}

	return &trip, nil
}

func (r *cacheRepository) SetTrip(ctx context.Context, trip *domain.TripPlan, ttl time.Duration) error {
	data, err := json.Marshal(trip)
	if err != nil {
		r.logger.Error("Failed to marshal trip", zap.Error(err))
		return fmt.Errorf("marshal trip: %w", err)
	}

	return r.Set(ctx, "trip:"+trip.ID.String(), data, ttl)
}

func segmentKey(req domain.SegmentRequest) string {
	dir := "fwd"
	if req.Reversed {
		dir = "rev"
	}
	return fmt.Sprintf("segment:%s:%s", req.ID, dir)
}
