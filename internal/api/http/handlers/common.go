package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/support-api/internal/auth"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/worker"
	apperrors "github.com/spec-kit/support-api/pkg/util"
)

// parseID reads a numeric route parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgument("malformed <"+name+">: must be a positive integer", nil)
	}
	return id, nil
}

// acceptDeletion enqueues a deferred deletion task and renders 202. The
// request never waits for the deletion to run.
func acceptDeletion(c *fiber.Ctx, queue worker.Queue, dispatcher events.Dispatcher, principal *auth.Principal, kind worker.TaskKind, targetID int64) error {
	task, err := queue.Enqueue(c.UserContext(), kind, targetID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if dispatcher != nil {
		actor := events.Actor{Role: principal.Role}
		if principal.User != nil {
			actor.UserID = principal.User.ID
		}
		_ = dispatcher.Publish(c.UserContext(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDeletionEnqueued,
			Actor:     actor,
			Timestamp: time.Now(),
			Payload: events.DeletionEnqueuedPayload{
				TaskID:   task.ID,
				Kind:     string(task.Kind),
				TargetID: task.TargetID,
			},
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "accepted",
		"task_id": task.ID,
	})
}
