// Package repositorytest provides an in-memory repository.Store used by
// service and HTTP tests. It mirrors the Postgres semantics the production
// repositories rely on: ErrNoRows for missing rows, FK cascade from tickets
// to messages, and whitelisted ordering.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store is the in-memory double. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	users    map[int64]*domain.User
	tickets  map[int64]*domain.Ticket
	messages map[int64]*domain.Message

	nextUserID    int64
	nextTicketID  int64
	nextMessageID int64

	clock int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		tickets:  make(map[int64]*domain.Ticket),
		messages: make(map[int64]*domain.Message),
	}
}

func (s *Store) Users() repository.UserRepository       { return &userRepo{s} }
func (s *Store) Tickets() repository.TicketRepository   { return &ticketRepo{s} }
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s} }

// InTx runs fn against the same store. The double has no rollback; tests
// that need failure paths inject errors at the repository level instead.
func (s *Store) InTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// now returns a strictly increasing timestamp so creation order is total
// even when the wall clock does not advance between calls.
func (s *Store) now() time.Time {
	s.clock++
	return time.Unix(1_700_000_000, 0).Add(time.Duration(s.clock) * time.Second)
}

// SeedUser inserts a user directly, assigning an id.
func (s *Store) SeedUser(user *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	user.ID = s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
		user.UpdatedAt = user.CreatedAt
	}
	s.users[user.ID] = user
	return user
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = r.s.now()
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) UpdateAggregates(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.OpenedTicketsCount = user.OpenedTicketsCount
	stored.UnansweredSince = user.UnansweredSince
	stored.TicketsMessages = user.TicketsMessages
	stored.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (r *userRepo) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) List(_ context.Context, ordering []string, limit int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		result = append(result, *user)
	}
	primary := primaryField(ordering, "id")
	sort.Slice(result, func(i, j int) bool {
		if primary == "date_joined" && !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.users, id)
	return nil
}

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	ticket.CreationDate = r.s.now()
	ticket.LastChanges = ticket.CreationDate
	clone := *ticket
	r.s.tickets[ticket.ID] = &clone
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.LastChanges = r.s.now()
	clone := *ticket
	r.s.tickets[ticket.ID] = &clone
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, ticket := range r.s.tickets {
		if filter.OwnerID != nil && ticket.OpenedByID != *filter.OwnerID {
			continue
		}
		result = append(result, *ticket)
	}
	primary := primaryField(filter.Ordering, "id")
	sort.Slice(result, func(i, j int) bool {
		switch primary {
		case "is_answered":
			if result[i].IsAnswered != result[j].IsAnswered {
				return !result[i].IsAnswered
			}
		case "ticket_theme":
			if result[i].Theme != result[j].Theme {
				return result[i].Theme < result[j].Theme
			}
		case "creation_date":
			if !result[i].CreationDate.Equal(result[j].CreationDate) {
				return result[i].CreationDate.Before(result[j].CreationDate)
			}
		}
		return result[i].ID < result[j].ID
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *ticketRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	// FK cascade
	for msgID, msg := range r.s.messages {
		if msg.TicketID == id {
			delete(r.s.messages, msgID)
		}
	}
	return nil
}

func (r *ticketRepo) CountOpenByOwner(_ context.Context, ownerID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, ticket := range r.s.tickets {
		if ticket.OpenedByID == ownerID && !ticket.IsClosed {
			count++
		}
	}
	return count, nil
}

func (r *ticketRepo) MinUnansweredSince(_ context.Context, ownerID int64) (*time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var min *time.Time
	for _, ticket := range r.s.tickets {
		if ticket.OpenedByID != ownerID || ticket.IsAnswered || ticket.UserQuestionDate == nil {
			continue
		}
		if min == nil || ticket.UserQuestionDate.Before(*min) {
			value := *ticket.UserQuestionDate
			min = &value
		}
	}
	return min, nil
}

func (r *ticketRepo) ReassignOwner(_ context.Context, fromUserID, toUserID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var moved int64
	for _, ticket := range r.s.tickets {
		if ticket.OpenedByID == fromUserID {
			ticket.OpenedByID = toUserID
			ticket.LastChanges = r.s.now()
			moved++
		}
	}
	return moved, nil
}

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextMessageID++
	msg.ID = r.s.nextMessageID
	msg.CreationDate = r.s.now()
	clone := *msg
	r.s.messages[msg.ID] = &clone
	return nil
}

func (r *messageRepo) Update(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.messages[msg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Body = msg.Body
	return nil
}

func (r *messageRepo) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *msg
	return &clone, nil
}

func (r *messageRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.Message, 0)
	for _, msg := range r.s.messages {
		if msg.TicketID == ticketID {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreationDate.Equal(result[j].CreationDate) {
			return result[i].CreationDate.Before(result[j].CreationDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *messageRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.messages, id)
	return nil
}

func (r *messageRepo) CountByTicket(_ context.Context, ticketID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, msg := range r.s.messages {
		if msg.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

func (r *messageRepo) LatestByTicket(ctx context.Context, ticketID int64) (*domain.Message, error) {
	messages, err := r.ListByTicket(ctx, ticketID)
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	latest := messages[len(messages)-1]
	return &latest, nil
}

func (r *messageRepo) CountByOwnerTickets(_ context.Context, ownerID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, msg := range r.s.messages {
		if ticket, ok := r.s.tickets[msg.TicketID]; ok && ticket.OpenedByID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *messageRepo) ReassignAuthor(_ context.Context, fromUserID, toUserID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var moved int64
	for _, msg := range r.s.messages {
		if msg.AuthorID == fromUserID {
			msg.AuthorID = toUserID
			moved++
		}
	}
	return moved, nil
}

func primaryField(ordering []string, fallback string) string {
	if len(ordering) == 0 {
		return fallback
	}
	return strings.TrimPrefix(ordering[0], "-")
}
