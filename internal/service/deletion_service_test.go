package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/repository/repositorytest"
)

func newDeletionFixture(t *testing.T) (*repositorytest.Store, *TicketService, *DeletionService, *domain.User, *domain.User) {
	t.Helper()
	store := repositorytest.New()
	collector := store.SeedUser(&domain.User{Email: "collector@localhost", Username: "tickets_collector", HidePrivateInfo: true})
	owner := store.SeedUser(&domain.User{Email: "a@example.com", Username: "alice"})

	aggregates := NewAggregateService()
	tickets := NewTicketService(store, aggregates, nil)
	deletions := NewDeletionService(store, aggregates, collector.ID, zap.NewNop())
	return store, tickets, deletions, collector, owner
}

func TestDeleteTicketResyncsOwner(t *testing.T) {
	ctx := context.Background()
	store, tickets, deletions, _, owner := newDeletionFixture(t)

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "help me"})
	require.NoError(t, err)
	_, err = tickets.AddMessage(ctx, owner, ticket, "anyone there")
	require.NoError(t, err)

	require.NoError(t, deletions.DeleteTicket(ctx, ticket.ID))

	_, err = store.Tickets().GetByID(ctx, ticket.ID)
	require.Error(t, err)
	messages, err := store.Messages().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, ownerRow.OpenedTicketsCount)
	assert.Equal(t, 0, ownerRow.TicketsMessages)
	assert.Nil(t, ownerRow.UnansweredSince)
}

func TestDeleteMessageRecomputesThread(t *testing.T) {
	ctx := context.Background()
	store, tickets, deletions, _, owner := newDeletionFixture(t)
	support := store.SeedUser(&domain.User{Email: "s@example.com", Username: "sue", IsSupport: true})

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "question"})
	require.NoError(t, err)
	reply, err := tickets.AddMessage(ctx, support, ticket, "answer")
	require.NoError(t, err)

	require.NoError(t, deletions.DeleteMessage(ctx, reply.ID))

	ticketRow, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, ticketRow.IsAnswered)
	assert.Equal(t, 1, ticketRow.MessagesCount)

	// already-gone targets are treated as done
	require.NoError(t, deletions.DeleteMessage(ctx, reply.ID))
}

func TestDeleteUserReassignsToCollector(t *testing.T) {
	ctx := context.Background()
	store, tickets, deletions, collector, owner := newDeletionFixture(t)

	first, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "one"})
	require.NoError(t, err)
	second, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "two"})
	require.NoError(t, err)

	require.NoError(t, deletions.DeleteUser(ctx, owner.ID))

	_, err = store.Users().GetByID(ctx, owner.ID)
	require.Error(t, err)

	for _, id := range []int64{first.ID, second.ID} {
		ticketRow, err := store.Tickets().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, collector.ID, ticketRow.OpenedByID)
	}

	collectorRow, err := store.Users().GetByID(ctx, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, collectorRow.OpenedTicketsCount)
	assert.Equal(t, 2, collectorRow.TicketsMessages)
}

func TestDeleteUserRefusesCollector(t *testing.T) {
	ctx := context.Background()
	_, _, deletions, collector, _ := newDeletionFixture(t)

	err := deletions.DeleteUser(ctx, collector.ID)
	require.Error(t, err)
}
