package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrEmpty is returned by Pop when no job arrived before the timeout.
	ErrEmpty = errors.New("queue empty")
	// ErrMalformedJob wraps decode failures. The payload has already been
	// removed from the list.
	ErrMalformedJob = errors.New("malformed job")
)

// Job asks for the artifacts to be regenerated. An empty Template means
// every template.
type Job struct {
	ID          string    `json:"id"`
	Template    string    `json:"template,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewJob returns a job with a fresh id.
func NewJob(template string) Job {
	return Job{
		ID:          "job_" + uuid.NewString(),
		Template:    template,
		RequestedAt: time.Now().UTC(),
	}
}

// RedisQueue is a FIFO of jobs on a Redis list: LPUSH in, BRPOP out.
type RedisQueue struct {
	rdb       *redis.Client
	queueName string
}

func NewRedisQueue(rdb *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{rdb: rdb, queueName: queueName}
}

func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks for up to timeout waiting for a job.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Job{}, ErrEmpty
		}
		return Job{}, err
	}
	if len(res) < 2 {
		return Job{}, ErrEmpty
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return Job{}, fmt.Errorf("%w: %w", ErrMalformedJob, err)
	}
	return job, nil
}

// Len reports how many jobs are waiting.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.queueName).Result()
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
