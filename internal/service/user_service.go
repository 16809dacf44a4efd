package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/auth"
	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/repository"
	util "github.com/spec-kit/support-api/pkg/util"
)

// UserService coordinates account workflows.
type UserService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(store repository.Store, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{store: store, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// RegisterInput describes account creation payload.
type RegisterInput struct {
	Username            string
	Email               string
	Password            string
	ScreenName          string
	FirstName           string
	LastName            string
	PersonalInformation string
	HidePrivateInfo     bool
}

// UpdateProfileInput describes a partial profile update; nil fields are
// left untouched.
type UpdateProfileInput struct {
	Password            *string
	ScreenName          *string
	FirstName           *string
	LastName            *string
	PersonalInformation *string
	HidePrivateInfo     *bool
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" {
		return nil, util.NewInvalidArgument("username and email are required", nil)
	}
	if err := ValidatePassword(input.Password, input.Username, input.Email); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().GetByEmail(ctx, input.Email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.store.Users().GetByUsername(ctx, input.Username); err == nil {
		return nil, util.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:            input.Username,
		Email:               input.Email,
		PasswordHash:        hash,
		ScreenName:          input.ScreenName,
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		PersonalInformation: input.PersonalInformation,
		HidePrivateInfo:     input.HidePrivateInfo,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventUserRegistered,
		Actor: events.Actor{UserID: user.ID, Role: domain.RoleUser},
		Payload: events.UserRegisteredPayload{
			UserID:   user.ID,
			Username: user.Username,
		},
	})
	return user, nil
}

// List returns users ordered and capped per the validated query args.
func (s *UserService) List(ctx context.Context, ordering []string, limit int) ([]domain.User, error) {
	return s.store.Users().List(ctx, ordering, limit)
}

// Get fetches a single user, mapping a missing row to NotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("user", map[string]any{"user_id": id})
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the target user.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, input UpdateProfileInput) (*domain.User, error) {
	if input.Password != nil {
		if err := ValidatePassword(*input.Password, user.Username, user.Email); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.ScreenName != nil {
		user.ScreenName = *input.ScreenName
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PersonalInformation != nil {
		user.PersonalInformation = *input.PersonalInformation
	}
	if input.HidePrivateInfo != nil {
		user.HidePrivateInfo = *input.HidePrivateInfo
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TicketsOf loads the user's tickets for the expanded profile shapes.
func (s *UserService) TicketsOf(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	return s.store.Tickets().List(ctx, repository.TicketFilter{OwnerID: &userID, Limit: 1000})
}

// EnsureCollector resolves the sentinel account that inherits tickets and
// messages from deleted users, creating it on first startup. It is resolved
// exactly once here and injected wherever reassignment happens.
func (s *UserService) EnsureCollector(ctx context.Context, username, email string) (int64, error) {
	existing, err := s.store.Users().GetByUsername(ctx, username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Unguessable password: the collector is never logged into.
	hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
	if err != nil {
		return 0, err
	}
	collector := &domain.User{
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		HidePrivateInfo: true,
	}
	if err := s.store.Users().Create(ctx, collector); err != nil {
		return 0, err
	}
	return collector.ID, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
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

// ValidatePassword enforces length bounds and rejects passwords too close
// to the username or email.
func ValidatePassword(password, username, email string) error {
	if len(password) < 8 || len(password) > 250 {
		return util.NewInvalidArgument("password must be between 8 and 250 characters", nil)
	}
	if username != "" && (strings.Contains(username, password) || strings.Contains(password, username)) {
		return util.NewInvalidArgument("password is very close to username", nil)
	}
	if email != "" && (strings.Contains(email, password) || strings.Contains(password, email)) {
		return util.NewInvalidArgument("password is very close to email", nil)
	}
	return nil
}
