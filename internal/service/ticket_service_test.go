package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-api/internal/domain"
	util "github.com/spec-kit/support-api/pkg/util"
)

func TestCreateTicketValidation(t *testing.T) {
	ctx := context.Background()
	_, tickets, owner, _ := newTicketFixture(t)

	_, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Theme: "product"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", util.ToDomainError(err).Code)

	_, err = tickets.CreateTicket(ctx, owner, CreateTicketInput{Theme: "gardening", Message: "hi"})
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	assert.ElementsMatch(t, []string{"product", "soft", "security", "other"}, domainErr.Details["choices"])

	// empty theme falls back to "other"
	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeOther, ticket.Theme)
}

func TestCreateTicketPreClosedRecordsCloser(t *testing.T) {
	ctx := context.Background()
	_, tickets, owner, _ := newTicketFixture(t)

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{
		Message:  "for the record",
		IsClosed: true,
	})
	require.NoError(t, err)
	assert.True(t, ticket.IsClosed)
	require.NotNil(t, ticket.ClosedByID)
	assert.Equal(t, owner.ID, *ticket.ClosedByID)
}

func TestUpdateTicketStaffOnlyFields(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, _ := newTicketFixture(t)
	staff := store.SeedUser(&domain.User{Email: "s@example.com", Username: "sam", IsStaff: true})

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "hi"})
	require.NoError(t, err)

	frozen := true
	_, err = tickets.UpdateTicket(ctx, owner, ticket, UpdateTicketInput{IsFrozen: &frozen})
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", util.ToDomainError(err).Code)

	note := "handled offline"
	_, err = tickets.UpdateTicket(ctx, owner, ticket, UpdateTicketInput{StaffNote: &note})
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", util.ToDomainError(err).Code)

	updated, err := tickets.UpdateTicket(ctx, staff, ticket, UpdateTicketInput{IsFrozen: &frozen, StaffNote: &note})
	require.NoError(t, err)
	assert.True(t, updated.IsFrozen)
	assert.Equal(t, note, updated.StaffNote)
}

func TestUpdateTicketCloseAndReopen(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, _ := newTicketFixture(t)
	staff := store.SeedUser(&domain.User{Email: "s@example.com", Username: "sam", IsStaff: true})

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "hi"})
	require.NoError(t, err)

	closed := true
	updated, err := tickets.UpdateTicket(ctx, staff, ticket, UpdateTicketInput{IsClosed: &closed})
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedByID)
	assert.Equal(t, staff.ID, *updated.ClosedByID)

	open := false
	updated, err = tickets.UpdateTicket(ctx, staff, updated, UpdateTicketInput{IsClosed: &open})
	require.NoError(t, err)
	assert.False(t, updated.IsClosed)
	assert.Nil(t, updated.ClosedByID)
}

func TestUpdateTicketWithMessageAppendsToThread(t *testing.T) {
	ctx := context.Background()
	store, tickets, owner, _ := newTicketFixture(t)
	staff := store.SeedUser(&domain.User{Email: "s@example.com", Username: "sam", IsStaff: true})

	ticket, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "hi"})
	require.NoError(t, err)

	updated, err := tickets.UpdateTicket(ctx, staff, ticket, UpdateTicketInput{Message: "looking into it"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MessagesCount)
	assert.True(t, updated.IsAnswered)

	messages, err := tickets.ListMessages(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "looking into it", messages[1].Body)
	assert.Equal(t, staff.ID, messages[1].AuthorID)
}

func TestGetMessageEnforcesTicketMembership(t *testing.T) {
	ctx := context.Background()
	_, tickets, owner, _ := newTicketFixture(t)

	first, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "one"})
	require.NoError(t, err)
	second, err := tickets.CreateTicket(ctx, owner, CreateTicketInput{Message: "two"})
	require.NoError(t, err)

	messages, err := tickets.ListMessages(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// addressing the message through the wrong ticket is a plain not-found
	_, err = tickets.GetMessage(ctx, second.ID, messages[0].ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)

	msg, err := tickets.GetMessage(ctx, first.ID, messages[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "one", msg.Body)
}

func TestGetTicketNotFound(t *testing.T) {
	ctx := context.Background()
	_, tickets, _, _ := newTicketFixture(t)

	_, err := tickets.GetTicket(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}
