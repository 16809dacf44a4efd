package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-api/internal/config"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/repository/repositorytest"
)

func TestNotificationHandlesPublishedEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{})
	notifications.RegisterHandlers()

	publish := func(eventType events.EventType, payload any) {
		err := dispatcher.Publish(context.Background(), events.Event{
			Type:    eventType,
			Payload: payload,
		})
		require.NoError(t, err)
	}

	publish(events.EventUserRegistered, events.UserRegisteredPayload{UserID: 1, Username: "alice"})
	publish(events.EventTicketCreated, events.TicketCreatedPayload{TicketID: 1, OwnerID: 1})
	publish(events.EventDeletionEnqueued, events.DeletionEnqueuedPayload{TaskID: "t", Kind: "user", TargetID: 1})

	assert.Equal(t, 1, logs.FilterMessage("UserRegistered").Len())
	assert.Equal(t, 1, logs.FilterMessage("TicketCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("DeletionEnqueued").Len())
}

func TestRegistrationFlowEmitsNotification(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{})
	notifications.RegisterHandlers()

	store := repositorytest.New()
	users := NewUserService(store, dispatcher, testBcryptCost)
	_, err := users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("UserRegistered").Len())
}
