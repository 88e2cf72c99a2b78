package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names for downstream consumers.
const (
	RefreshStream  = "stats.weekly.nfl"
	MappingsStream = "mappings.nfl"
)

// RedisStreamPublisher publishes pipeline events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishRefreshCompleted publishes the result of a completed refresh run.
func (rsp *RedisStreamPublisher) PublishRefreshCompleted(ctx context.Context, result interface{}) error {
	return rsp.publish(ctx, RefreshStream, "refresh.completed", result)
}

// PublishMappingRecorded publishes a newly recorded name mapping so
// downstream consumers can pick up identity corrections.
func (rsp *RedisStreamPublisher) PublishMappingRecorded(ctx context.Context, mapping interface{}) error {
	return rsp.publish(ctx, MappingsStream, "mapping.recorded", mapping)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"event":     event,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
