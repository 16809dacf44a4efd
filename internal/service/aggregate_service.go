package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/repository"
)

// AggregateService keeps the denormalized columns in sync with the
// underlying rows: Ticket.{is_answered, user_question_date, answerer_id,
// messages_count} and User.{opened_tickets_count, unanswered_since,
// tickets_messages}.
//
// Every method takes the Store it must operate on; callers wrap the
// triggering write and the cascade in a single Store.InTx so partial
// aggregate updates are never committed.
type AggregateService struct{}

// NewAggregateService constructs the engine.
func NewAggregateService() *AggregateService {
	return &AggregateService{}
}

// OnMessageWritten resyncs the ticket after a message was created or
// updated, then cascades to the owner. A message from the owner reopens the
// question; a message from anyone else answers it and records the answerer.
func (a *AggregateService) OnMessageWritten(ctx context.Context, s repository.Store, ticket *domain.Ticket, author *domain.User) error {
	count, err := s.Messages().CountByTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	ticket.MessagesCount = count

	if author.ID == ticket.OpenedByID {
		now := time.Now()
		ticket.IsAnswered = false
		ticket.UserQuestionDate = &now
		// answerer_id intentionally untouched
	} else {
		ticket.IsAnswered = true
		ticket.AnswererID = &author.ID
		ticket.UserQuestionDate = nil
	}

	if err := s.Tickets().Update(ctx, ticket); err != nil {
		return err
	}
	return a.OnTicketWritten(ctx, s, ticket.OpenedByID)
}

// OnMessageDeleted re-derives the ticket's answered state from the most
// recent remaining message. When the ticket itself is already gone the
// ticket update is skipped but the former owner still gets resynced.
func (a *AggregateService) OnMessageDeleted(ctx context.Context, s repository.Store, ticketID, ownerID int64) error {
	ticket, err := s.Tickets().GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return a.OnTicketWritten(ctx, s, ownerID)
	}
	if err != nil {
		return err
	}

	count, err := s.Messages().CountByTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	ticket.MessagesCount = count

	latest, err := s.Messages().LatestByTicket(ctx, ticket.ID)
	if err != nil {
		return err
	}
	switch {
	case latest == nil:
		ticket.IsAnswered = true
		ticket.UserQuestionDate = nil
	case latest.AuthorID == ticket.OpenedByID:
		ticket.IsAnswered = false
		questionDate := latest.CreationDate
		ticket.UserQuestionDate = &questionDate
	default:
		ticket.IsAnswered = true
		ticket.AnswererID = &latest.AuthorID
		ticket.UserQuestionDate = nil
	}

	if err := s.Tickets().Update(ctx, ticket); err != nil {
		return err
	}
	return a.OnTicketWritten(ctx, s, ticket.OpenedByID)
}

// OnTicketWritten recomputes the owner's rollups from the current ticket and
// message sets. A vanished owner (deleted concurrently) is not an error.
func (a *AggregateService) OnTicketWritten(ctx context.Context, s repository.Store, userID int64) error {
	user, err := s.Users().GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	totalMessages, err := s.Messages().CountByOwnerTickets(ctx, userID)
	if err != nil {
		return err
	}
	openedCount, err := s.Tickets().CountOpenByOwner(ctx, userID)
	if err != nil {
		return err
	}
	unansweredSince, err := s.Tickets().MinUnansweredSince(ctx, userID)
	if err != nil {
		return err
	}

	user.TicketsMessages = totalMessages
	user.OpenedTicketsCount = openedCount
	user.UnansweredSince = unansweredSince
	return s.Users().UpdateAggregates(ctx, user)
}

// OnTicketDeleted runs after the ticket row is gone so the rollups reflect
// the post-delete state; the recompute is identical to OnTicketWritten.
func (a *AggregateService) OnTicketDeleted(ctx context.Context, s repository.Store, userID int64) error {
	return a.OnTicketWritten(ctx, s, userID)
}
