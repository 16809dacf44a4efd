package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
)

// MessageRepository manages ticket thread messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	Update(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
	CountByTicket(ctx context.Context, ticketID int64) (int, error)
	LatestByTicket(ctx context.Context, ticketID int64) (*domain.Message, error)
	CountByOwnerTickets(ctx context.Context, ownerID int64) (int, error)
	ReassignAuthor(ctx context.Context, fromUserID, toUserID int64) (int64, error)
}

type messageRepository struct {
	db Querier
}

// NewMessageRepository builds repository.
func NewMessageRepository(db Querier) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, author_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, creation_date`
	return r.db.QueryRow(ctx, query,
		msg.TicketID,
		msg.AuthorID,
		msg.Body,
	).Scan(&msg.ID, &msg.CreationDate)
}

func (r *messageRepository) Update(ctx context.Context, msg *domain.Message) error {
	cmd, err := r.db.Exec(ctx, `UPDATE messages SET body=$1 WHERE id=$2`, msg.Body, msg.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, creation_date
        FROM messages WHERE id=$1`
	var msg domain.Message
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.AuthorID,
		&msg.Body,
		&msg.CreationDate,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, creation_date
        FROM messages WHERE ticket_id=$1 ORDER BY creation_date ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.AuthorID,
			&msg.Body,
			&msg.CreationDate,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepository) CountByTicket(ctx context.Context, ticketID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE ticket_id=$1`, ticketID,
	).Scan(&count)
	return count, err
}

// LatestByTicket returns the newest message of the thread, or nil when the
// thread is empty.
func (r *messageRepository) LatestByTicket(ctx context.Context, ticketID int64) (*domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, creation_date
        FROM messages WHERE ticket_id=$1 ORDER BY creation_date DESC, id DESC LIMIT 1`
	var msg domain.Message
	err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.AuthorID,
		&msg.Body,
		&msg.CreationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountByOwnerTickets totals messages across every ticket the user owns.
func (r *messageRepository) CountByOwnerTickets(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM messages m
        JOIN tickets t ON t.id = m.ticket_id
        WHERE t.opened_by=$1`, ownerID,
	).Scan(&count)
	return count, err
}

func (r *messageRepository) ReassignAuthor(ctx context.Context, fromUserID, toUserID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE messages SET author_id=$1 WHERE author_id=$2`,
		toUserID, fromUserID,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
