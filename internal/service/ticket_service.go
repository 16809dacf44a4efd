package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/repository"
	util "github.com/spec-kit/support-api/pkg/util"
)

// TicketService coordinates ticket and message workflows. Every mutation
// that touches derived columns runs the aggregate cascade inside one
// transaction.
type TicketService struct {
	store      repository.Store
	aggregates *AggregateService
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(store repository.Store, aggregates *AggregateService, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{store: store, aggregates: aggregates, dispatcher: dispatcher}
}

// CreateTicketInput describes ticket creation payload. Message is the
// mandatory initial thread entry.
type CreateTicketInput struct {
	Theme    string
	Message  string
	IsClosed bool
}

// UpdateTicketInput describes a partial ticket update; nil fields are left
// untouched. Message, when non-empty, appends a thread entry.
type UpdateTicketInput struct {
	Theme     *string
	IsClosed  *bool
	IsFrozen  *bool
	StaffNote *string
	Message   string
}

// CreateTicket opens a ticket together with its initial message, in one
// transaction, and syncs the aggregates.
func (s *TicketService) CreateTicket(ctx context.Context, owner *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	theme, err := resolveTheme(input.Theme)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(input.Message)
	if body == "" {
		return nil, util.NewInvalidArgument("<message> field can not be blank when creating a new ticket", nil)
	}

	ticket := &domain.Ticket{
		Theme:      theme,
		OpenedByID: owner.ID,
		IsClosed:   input.IsClosed,
	}
	if input.IsClosed {
		closedBy := owner.ID
		ticket.ClosedByID = &closedBy
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		msg := &domain.Message{TicketID: ticket.ID, AuthorID: owner.ID, Body: body}
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}
		return s.aggregates.OnMessageWritten(ctx, tx, ticket, owner)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventTicketCreated,
		Actor: events.Actor{UserID: owner.ID, Role: domain.Classify(owner)},
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			Theme:    ticket.Theme,
			OwnerID:  owner.ID,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets, optionally restricted to one owner.
func (s *TicketService) ListTickets(ctx context.Context, ownerID *int64, ordering []string, limit int) ([]domain.Ticket, error) {
	return s.store.Tickets().List(ctx, repository.TicketFilter{
		OwnerID:  ownerID,
		Ordering: ordering,
		Limit:    limit,
	})
}

// GetTicket fetches a ticket, mapping a missing row to NotFound.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTicket applies a partial update. Freezing and the staff note are
// reserved for Staff and above; closing records who closed, reopening
// clears it. A carried message is appended to the thread and runs the
// aggregate cascade.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticket *domain.Ticket, input UpdateTicketInput) (*domain.Ticket, error) {
	role := domain.Classify(actor)

	if input.Theme != nil {
		theme, err := resolveTheme(*input.Theme)
		if err != nil {
			return nil, err
		}
		ticket.Theme = theme
	}
	if input.IsFrozen != nil && *input.IsFrozen != ticket.IsFrozen {
		if !role.AtLeast(domain.RoleStaff) {
			return nil, util.NewPermissionDenied("permission denied: only staff can freeze or unfreeze a ticket")
		}
		ticket.IsFrozen = *input.IsFrozen
	}
	if input.StaffNote != nil {
		if !role.AtLeast(domain.RoleStaff) {
			return nil, util.NewPermissionDenied("permission denied: only staff can edit the staff note")
		}
		ticket.StaffNote = *input.StaffNote
	}

	closedChanged := false
	if input.IsClosed != nil && *input.IsClosed != ticket.IsClosed {
		closedChanged = true
		ticket.IsClosed = *input.IsClosed
		if ticket.IsClosed {
			closedBy := actor.ID
			ticket.ClosedByID = &closedBy
		} else {
			ticket.ClosedByID = nil
		}
	}

	body := strings.TrimSpace(input.Message)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		if body != "" {
			msg := &domain.Message{TicketID: ticket.ID, AuthorID: actor.ID, Body: body}
			if err := tx.Messages().Create(ctx, msg); err != nil {
				return err
			}
			return s.aggregates.OnMessageWritten(ctx, tx, ticket, actor)
		}
		// is_closed may have flipped; the owner's counters must follow
		return s.aggregates.OnTicketWritten(ctx, tx, ticket.OpenedByID)
	})
	if err != nil {
		return nil, err
	}

	if closedChanged {
		s.publish(ctx, events.Event{
			Type:  events.EventTicketClosed,
			Actor: events.Actor{UserID: actor.ID, Role: role},
			Payload: events.TicketClosedPayload{
				TicketID:   ticket.ID,
				ClosedByID: ticket.ClosedByID,
				Reopened:   !ticket.IsClosed,
			},
		})
	}
	return ticket, nil
}

// AddMessage appends a message to the thread and syncs the aggregates.
func (s *TicketService) AddMessage(ctx context.Context, author *domain.User, ticket *domain.Ticket, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.NewInvalidArgument("<message> field can not be blank", nil)
	}

	msg := &domain.Message{TicketID: ticket.ID, AuthorID: author.ID, Body: body}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}
		return s.aggregates.OnMessageWritten(ctx, tx, ticket, author)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventTicketMessageAdded,
		Actor: events.Actor{UserID: author.ID, Role: domain.Classify(author)},
		Payload: events.TicketMessageAddedPayload{
			TicketID:    ticket.ID,
			MessageID:   msg.ID,
			AuthorID:    author.ID,
			BodyPreview: bodyPreview(body, 120),
		},
	})
	return msg, nil
}

// ListMessages returns the thread in creation order.
func (s *TicketService) ListMessages(ctx context.Context, ticketID int64) ([]domain.Message, error) {
	return s.store.Messages().ListByTicket(ctx, ticketID)
}

// GetMessage fetches one thread entry, verifying it belongs to the ticket.
func (s *TicketService) GetMessage(ctx context.Context, ticketID, messageID int64) (*domain.Message, error) {
	msg, err := s.store.Messages().GetByID(ctx, messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("message", map[string]any{"message_id": messageID})
	}
	if err != nil {
		return nil, err
	}
	if msg.TicketID != ticketID {
		return nil, util.NewNotFound("message", map[string]any{"message_id": messageID})
	}
	return msg, nil
}

// UpdateMessage replaces the body of a thread entry. Authorship and order
// are untouched, so no aggregate recompute is needed.
func (s *TicketService) UpdateMessage(ctx context.Context, msg *domain.Message, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.NewInvalidArgument("<message> field can not be blank", nil)
	}
	msg.Body = body
	if err := s.store.Messages().Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// AuthorsOf resolves the distinct authors of a thread for projection.
func (s *TicketService) AuthorsOf(ctx context.Context, messages []domain.Message) (map[int64]*domain.User, error) {
	authors := make(map[int64]*domain.User)
	for i := range messages {
		id := messages[i].AuthorID
		if _, seen := authors[id]; seen {
			continue
		}
		author, err := s.store.Users().GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			authors[id] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		authors[id] = author
	}
	return authors, nil
}

// OwnerOf resolves the ticket owner for projection; nil when the account is
// mid-deletion.
func (s *TicketService) OwnerOf(ctx context.Context, ticket *domain.Ticket) (*domain.User, error) {
	owner, err := s.store.Users().GetByID(ctx, ticket.OpenedByID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return owner, nil
}

func resolveTheme(raw string) (domain.TicketTheme, error) {
	if raw == "" {
		return domain.ThemeOther, nil
	}
	theme := domain.TicketTheme(raw)
	if !domain.ValidTheme(theme) {
		choices := make([]string, len(domain.TicketThemes))
		for i, t := range domain.TicketThemes {
			choices[i] = string(t)
		}
		return "", util.NewInvalidChoice("ticket_theme", raw, choices)
	}
	return theme, nil
}

func bodyPreview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
