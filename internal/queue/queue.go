package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobarin/renderpipe/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const QueueRender = "queue:render"

type Queue struct {
	client *redis.Client
}

// Job is the wire payload between the API and the render worker. The full
// request rides along so the worker never has to re-read it from the
// database.
type Job struct {
	ID        uuid.UUID            `json:"id"`
	Request   models.RenderRequest `json:"request"`
	CreatedAt time.Time            `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Ping checks queue reachability for health reporting.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// EnqueueRender pushes a render job onto the queue.
func (q *Queue) EnqueueRender(ctx context.Context, jobID uuid.UUID, req models.RenderRequest) error {
	job := &Job{
		ID:        jobID,
		Request:   req,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.RPush(ctx, QueueRender, data).Err()
}

// Dequeue blocks for up to timeout waiting for a render job. Returns
// (nil, nil) when the wait times out with nothing available.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueRender).Result()
	if err == redis.Nil {
		return nil, nil // No job available
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// Length reports how many jobs are waiting.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, QueueRender).Result()
}
