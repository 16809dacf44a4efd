package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/repository/repositorytest"
)

func newTicketFixture(t *testing.T) (*repositorytest.Store, *TicketService, *domain.User, *domain.User) {
	t.Helper()
	store := repositorytest.New()
	owner := store.SeedUser(&domain.User{Email: "a@example.com", Username: "alice"})
	support := store.SeedUser(&domain.User{Email: "b@example.com", Username: "bob", IsSupport: true})
	tickets := NewTicketService(store, NewAggregateService(), nil)
	return store, tickets, owner, support
}

func TestTicketLifecycleAggregates(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, support := newTicketFixture(t)

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{
		Theme:   "product",
		Message: "help me",
	})
	require.NoError(t, err)

	ticket, err = tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, ticket.IsAnswered)
	assert.Equal(t, 1, ticket.MessagesCount)
	require.NotNil(t, ticket.UserQuestionDate)
	assert.Nil(t, ticket.AnswererID)

	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ownerRow.OpenedTicketsCount)
	assert.Equal(t, 1, ownerRow.TicketsMessages)
	require.NotNil(t, ownerRow.UnansweredSince)
	assert.Equal(t, *ticket.UserQuestionDate, *ownerRow.UnansweredSince)

	// a support reply answers the ticket and records the answerer
	_, err = tickets.AddMessage(ctx, support, ticket, "have you tried turning it off and on")
	require.NoError(t, err)

	ticket, err = tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, ticket.IsAnswered)
	assert.Equal(t, 2, ticket.MessagesCount)
	assert.Nil(t, ticket.UserQuestionDate)
	require.NotNil(t, ticket.AnswererID)
	assert.Equal(t, support.ID, *ticket.AnswererID)

	ownerRow, err = store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, ownerRow.UnansweredSince)
	assert.Equal(t, 2, ownerRow.TicketsMessages)

	// an owner followup reopens the question without clearing the answerer
	_, err = tickets.AddMessage(ctx, owner, ticket, "still broken")
	require.NoError(t, err)

	ticket, err = tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, ticket.IsAnswered)
	require.NotNil(t, ticket.UserQuestionDate)
	require.NotNil(t, ticket.AnswererID)
	assert.Equal(t, support.ID, *ticket.AnswererID)
}

func TestMessageDeletionRederivesAnsweredState(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, support := newTicketFixture(t)
	aggregates := NewAggregateService()

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "question"})
	require.NoError(t, err)
	reply, err := tickets.AddMessage(ctx, support, ticket, "answer")
	require.NoError(t, err)

	// deleting the reply makes the owner's question most recent again
	require.NoError(t, store.Messages().Delete(ctx, reply.ID))
	require.NoError(t, aggregates.OnMessageDeleted(ctx, store, ticket.ID, owner.ID))

	ticket, err = tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, ticket.IsAnswered)
	assert.Equal(t, 1, ticket.MessagesCount)
	require.NotNil(t, ticket.UserQuestionDate)

	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerRow.UnansweredSince)
	assert.Equal(t, 1, ownerRow.TicketsMessages)
}

func TestEmptyThreadCountsAsAnswered(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, _ := newTicketFixture(t)
	aggregates := NewAggregateService()

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "only one"})
	require.NoError(t, err)
	messages, err := tickets.ListMessages(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	require.NoError(t, store.Messages().Delete(ctx, messages[0].ID))
	require.NoError(t, aggregates.OnMessageDeleted(ctx, store, ticket.ID, owner.ID))

	ticket, err = tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, ticket.IsAnswered)
	assert.Equal(t, 0, ticket.MessagesCount)
	assert.Nil(t, ticket.UserQuestionDate)

	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, ownerRow.UnansweredSince)
	assert.Equal(t, 0, ownerRow.TicketsMessages)
}

func TestUnansweredSinceTracksEarliestQuestion(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, support := newTicketFixture(t)

	first, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "first"})
	require.NoError(t, err)
	second, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "second"})
	require.NoError(t, err)

	firstRow, err := tickets.GetTicket(ctx, first.ID)
	require.NoError(t, err)
	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerRow.UnansweredSince)
	assert.Equal(t, *firstRow.UserQuestionDate, *ownerRow.UnansweredSince)

	// answering the first ticket moves the marker to the second
	_, err = tickets.AddMessage(ctx, support, firstRow, "done")
	require.NoError(t, err)

	secondRow, err := tickets.GetTicket(ctx, second.ID)
	require.NoError(t, err)
	ownerRow, err = store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerRow.UnansweredSince)
	assert.Equal(t, *secondRow.UserQuestionDate, *ownerRow.UnansweredSince)
}

func TestClosingTicketUpdatesOpenedCount(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, _ := newTicketFixture(t)

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "hello"})
	require.NoError(t, err)

	closed := true
	_, err = tickets.UpdateTicket(ctx, owner, ticket, UpdateTicketInput{IsClosed: &closed})
	require.NoError(t, err)

	ownerRow, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, ownerRow.OpenedTicketsCount)
	// messages on the closed ticket still count
	assert.Equal(t, 1, ownerRow.TicketsMessages)
}
