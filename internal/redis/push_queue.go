package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/redis/go-redis/v9"
)

type PushQueue struct {
	client redis.Cmdable
	key    string
}

func NewPushQueue(client redis.Cmdable, key string) *PushQueue {
	return &PushQueue{client: client, key: key}
}

func (q *PushQueue) Enqueue(ctx context.Context, job domain.PushJob) error {
	const op = "redis.PushQueue.Enqueue"

	b, err := json.Marshal(job)
	if err != nil {
		return e.Wrap(op, err)
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// BRPop blocks for up to timeout and returns e.ErrPushQueueEmpty when nothing
// arrived.
func (q *PushQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.PushJob, error) {
	const op = "redis.PushQueue.BRPop"

	var job domain.PushJob

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return job, e.ErrPushQueueEmpty
		}
		return job, e.WrapError(ctx, op, err)
	}
	if len(res) < 2 {
		return job, e.ErrPushQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return job, e.Wrap(op, err)
	}
	return job, nil
}
