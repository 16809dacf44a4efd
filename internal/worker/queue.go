package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TaskKind names the resource a deferred deletion targets.
type TaskKind string

const (
	TaskKindUser    TaskKind = "user"
	TaskKindTicket  TaskKind = "ticket"
	TaskKindMessage TaskKind = "message"
)

// DeletionTask is the queue payload for one deferred deletion.
type DeletionTask struct {
	ID       string   `json:"id"`
	Kind     TaskKind `json:"kind"`
	TargetID int64    `json:"target_id"`
}

// Queue enqueues deferred deletions. Handlers depend on this interface so
// tests can capture tasks without a broker.
type Queue interface {
	Enqueue(ctx context.Context, kind TaskKind, targetID int64) (DeletionTask, error)
}

// RedisQueue is the Redis list implementation of Queue. Producers LPUSH,
// the worker BRPOPs, so tasks drain in FIFO order.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue over the given list key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Enqueue pushes a task and returns it, id assigned.
func (q *RedisQueue) Enqueue(ctx context.Context, kind TaskKind, targetID int64) (DeletionTask, error) {
	task := DeletionTask{
		ID:       uuid.NewString(),
		Kind:     kind,
		TargetID: targetID,
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return DeletionTask{}, fmt.Errorf("marshal deletion task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return DeletionTask{}, fmt.Errorf("enqueue deletion task: %w", err)
	}
	return task, nil
}
