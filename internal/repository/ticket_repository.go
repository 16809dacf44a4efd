package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
)

// TicketFilter captures list parameters.
type TicketFilter struct {
	OwnerID  *int64
	Ordering []string
	Limit    int
}

// TicketRepository encapsulates ticket persistence, including the owner-level
// aggregate queries the maintenance engine relies on.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	CountOpenByOwner(ctx context.Context, ownerID int64) (int, error)
	MinUnansweredSince(ctx context.Context, ownerID int64) (*time.Time, error)
	ReassignOwner(ctx context.Context, fromUserID, toUserID int64) (int64, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, ticket_theme, opened_by, is_closed, is_frozen, is_answered,
        user_question_date, answerer_id, closed_by_id, messages_count, staff_note,
        creation_date, last_changes`

var ticketOrderColumns = map[string]string{
	"id":            "id",
	"is_answered":   "is_answered",
	"ticket_theme":  "ticket_theme",
	"creation_date": "creation_date",
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_theme, opened_by, is_closed, is_frozen, is_answered,
            user_question_date, answerer_id, closed_by_id, messages_count, staff_note)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, creation_date, last_changes`
	return r.db.QueryRow(ctx, query,
		ticket.Theme,
		ticket.OpenedByID,
		ticket.IsClosed,
		ticket.IsFrozen,
		ticket.IsAnswered,
		ticket.UserQuestionDate,
		ticket.AnswererID,
		ticket.ClosedByID,
		ticket.MessagesCount,
		ticket.StaffNote,
	).Scan(&ticket.ID, &ticket.CreationDate, &ticket.LastChanges)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET ticket_theme=$1, opened_by=$2, is_closed=$3, is_frozen=$4,
            is_answered=$5, user_question_date=$6, answerer_id=$7, closed_by_id=$8,
            messages_count=$9, staff_note=$10, last_changes=NOW()
        WHERE id=$11`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Theme,
		ticket.OpenedByID,
		ticket.IsClosed,
		ticket.IsFrozen,
		ticket.IsAnswered,
		ticket.UserQuestionDate,
		ticket.AnswererID,
		ticket.ClosedByID,
		ticket.MessagesCount,
		ticket.StaffNote,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	orderBy := orderClause(filter.Ordering, ticketOrderColumns, "id")
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	args := []any{}
	where := "1=1"
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = fmt.Sprintf("opened_by=$%d", len(args))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d`,
		ticketColumns, where, orderBy, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) CountOpenByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE opened_by=$1 AND is_closed=FALSE`, ownerID,
	).Scan(&count)
	return count, err
}

// MinUnansweredSince returns the earliest pending question timestamp among
// the owner's unanswered tickets, or nil when everything is answered.
func (r *ticketRepository) MinUnansweredSince(ctx context.Context, ownerID int64) (*time.Time, error) {
	var min *time.Time
	err := r.db.QueryRow(ctx, `
        SELECT MIN(user_question_date) FROM tickets
        WHERE opened_by=$1 AND is_answered=FALSE AND user_question_date IS NOT NULL`, ownerID,
	).Scan(&min)
	return min, err
}

func (r *ticketRepository) ReassignOwner(ctx context.Context, fromUserID, toUserID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE tickets SET opened_by=$1, last_changes=NOW() WHERE opened_by=$2`,
		toUserID, fromUserID,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Theme,
		&ticket.OpenedByID,
		&ticket.IsClosed,
		&ticket.IsFrozen,
		&ticket.IsAnswered,
		&ticket.UserQuestionDate,
		&ticket.AnswererID,
		&ticket.ClosedByID,
		&ticket.MessagesCount,
		&ticket.StaffNote,
		&ticket.CreationDate,
		&ticket.LastChanges,
	)
}
