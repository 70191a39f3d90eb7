package repository

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	CounterAccepted = "ingest:accepted"
	CounterRejected = "ingest:rejected"
	CounterFailed   = "ingest:failed"
)

// CounterRepository хранит операционные счетчики приема данных.
type CounterRepository interface {
	Increment(ctx context.Context, key string) (int64, error)
	GetAll(ctx context.Context, keys ...string) (map[string]int64, error)
	Enabled() bool
}

type counterRepository struct {
	client *redis.Client
}

func NewCounterRepository(client *redis.Client) CounterRepository {
	if client == nil {
		return noopCounterRepository{}
	}
	return &counterRepository{client: client}
}

func (r *counterRepository) Increment(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *counterRepository) GetAll(ctx context.Context, keys ...string) (map[string]int64, error) {
	result := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, key := range keys {
		result[key] = 0
		if s, ok := values[i].(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				result[key] = n
			}
		}
	}
	return result, nil
}

func (r *counterRepository) Enabled() bool {
	return true
}

// noopCounterRepository используется, когда Redis выключен.
type noopCounterRepository struct{}

func (noopCounterRepository) Increment(context.Context, string) (int64, error) { return 0, nil }
func (noopCounterRepository) Enabled() bool { return false }

func (noopCounterRepository) GetAll(_ context.Context, keys ...string) (map[string]int64, error) {
	result := make(map[string]int64, len(keys))
	for _, key := range keys {
		result[key] = 0
	}
	return result, nil
}
