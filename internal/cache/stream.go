package cache

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// TaskQueue appends background tasks to a Redis stream.
type TaskQueue struct {
	client *redis.Client
	stream string
}

func NewTaskQueue(client *redis.Client, stream string) *TaskQueue {
	return &TaskQueue{client: client, stream: stream}
}

func (q *TaskQueue) Enqueue(ctx context.Context, taskType string, fields map[string]any) error {
	values := map[string]any{"type": taskType}
	for k, v := range fields {
		values[k] = v
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: values,
	}).Err()
}

// EnsureGroup creates the consumer group (and the stream) when missing.
func EnsureGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}
