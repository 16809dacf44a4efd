package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/domain"
)

// UserRepository defines persistence access for principals.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	UpdateAggregates(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, ordering []string, limit int) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hash, is_staff, is_superuser, is_support,
        hide_private_info, screen_name, personal_information, first_name, last_name,
        opened_tickets_count, unanswered_since, tickets_messages, created_at, updated_at`

// userOrderColumns whitelists query-facing field names for ORDER BY.
var userOrderColumns = map[string]string{
	"id":          "id",
	"date_joined": "created_at",
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, username, password_hash, is_staff, is_superuser, is_support,
            hide_private_info, screen_name, personal_information, first_name, last_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsStaff,
		user.IsSuperuser,
		user.IsSupport,
		user.HidePrivateInfo,
		user.ScreenName,
		user.PersonalInformation,
		user.FirstName,
		user.LastName,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, username=$2, password_hash=$3, is_staff=$4, is_superuser=$5,
            is_support=$6, hide_private_info=$7, screen_name=$8, personal_information=$9,
            first_name=$10, last_name=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.db.Exec(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsStaff,
		user.IsSuperuser,
		user.IsSupport,
		user.HidePrivateInfo,
		user.ScreenName,
		user.PersonalInformation,
		user.FirstName,
		user.LastName,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateAggregates persists only the derived columns; the aggregate engine
// is the single writer of these fields.
func (r *userRepository) UpdateAggregates(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET opened_tickets_count=$1, unanswered_since=$2, tickets_messages=$3,
            updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		user.OpenedTicketsCount,
		user.UnansweredSince,
		user.TicketsMessages,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns), id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE email=$1`, userColumns), email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE username=$1`, userColumns), username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.db.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, ordering []string, limit int) ([]domain.User, error) {
	orderBy := orderClause(ordering, userOrderColumns, "id")
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s LIMIT %d`, userColumns, orderBy, limit)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.IsSupport,
		&user.HidePrivateInfo,
		&user.ScreenName,
		&user.PersonalInformation,
		&user.FirstName,
		&user.LastName,
		&user.OpenedTicketsCount,
		&user.UnansweredSince,
		&user.TicketsMessages,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// orderClause maps query-facing field names onto whitelisted columns,
// ignoring anything unknown. Validation against the resource's choices
// happens in the view layer; this is the last line of defense.
func orderClause(ordering []string, allowed map[string]string, fallback string) string {
	cols := make([]string, 0, len(ordering))
	for _, field := range ordering {
		field = strings.TrimPrefix(field, "-")
		if col, ok := allowed[field]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return fallback
	}
	return strings.Join(cols, ", ")
}
