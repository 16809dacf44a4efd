package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-api/internal/service"
)

const popTimeout = 5 * time.Second

// DeletionWorker consumes deferred deletion tasks from the Redis queue and
// hands them to the deletion service. Deletes are accepted on the request
// path and executed here, off the request cycle.
type DeletionWorker struct {
	client    *redis.Client
	key       string
	deletions *service.DeletionService
	logger    *zap.Logger
}

// NewDeletionWorker builds a worker over the same list key the queue
// produces to.
func NewDeletionWorker(client *redis.Client, key string, deletions *service.DeletionService, logger *zap.Logger) *DeletionWorker {
	return &DeletionWorker{
		client:    client,
		key:       key,
		deletions: deletions,
		logger:    logger,
	}
}

// Run blocks consuming tasks until ctx is cancelled.
func (w *DeletionWorker) Run(ctx context.Context) {
	w.logger.Info("deletion worker started", zap.String("queue", w.key))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deletion worker stopped")
			return
		default:
		}

		res, err := w.client.BRPop(ctx, popTimeout, w.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("deletion worker stopped")
				return
			}
			w.logger.Error("deletion queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) < 2 {
			continue
		}

		var task DeletionTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			w.logger.Error("malformed deletion task dropped", zap.Error(err), zap.String("raw", res[1]))
			continue
		}
		if err := w.process(ctx, task); err != nil {
			w.logger.Error("deletion task failed",
				zap.String("task_id", task.ID),
				zap.String("kind", string(task.Kind)),
				zap.Int64("target_id", task.TargetID),
				zap.Error(err))
			continue
		}
		w.logger.Info("deletion task done",
			zap.String("task_id", task.ID),
			zap.String("kind", string(task.Kind)),
			zap.Int64("target_id", task.TargetID))
	}
}

func (w *DeletionWorker) process(ctx context.Context, task DeletionTask) error {
	switch task.Kind {
	case TaskKindUser:
		return w.deletions.DeleteUser(ctx, task.TargetID)
	case TaskKindTicket:
		return w.deletions.DeleteTicket(ctx, task.TargetID)
	case TaskKindMessage:
		return w.deletions.DeleteMessage(ctx, task.TargetID)
	default:
		return fmt.Errorf("unknown deletion kind %q", task.Kind)
	}
}
