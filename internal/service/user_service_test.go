package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-api/internal/repository/repositorytest"
	util "github.com/spec-kit/support-api/pkg/util"
)

// low bcrypt cost keeps the hash calls cheap in tests
const testBcryptCost = 4

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.New()
	users := NewUserService(store, nil, testBcryptCost)

	user, err := users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	_, err = users.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "another fine pass",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)

	_, err = users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "another fine pass",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		email    string
		wantErr  bool
	}{
		{"ok", "sufficiently long", "alice", "alice@example.com", false},
		{"too short", "short", "alice", "alice@example.com", true},
		{"equals username", "alicealice42", "alicealice42", "a@example.com", true},
		{"contains email", "xa@example.comx", "alice", "a@example.com", true},
		{"password inside username", "typants77", "smartypants77", "a@example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.username, tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "INVALID_ARGUMENT", util.ToDomainError(err).Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.New()
	users := NewUserService(store, nil, testBcryptCost)

	user, err := users.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	screenName := "The Real Alice"
	hide := true
	updated, err := users.UpdateProfile(ctx, user, UpdateProfileInput{
		ScreenName:      &screenName,
		HidePrivateInfo: &hide,
	})
	require.NoError(t, err)
	assert.Equal(t, screenName, updated.ScreenName)
	assert.True(t, updated.HidePrivateInfo)

	weak := "short"
	_, err = users.UpdateProfile(ctx, updated, UpdateProfileInput{Password: &weak})
	require.Error(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", util.ToDomainError(err).Code)
}

func TestEnsureCollectorIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.New()
	users := NewUserService(store, nil, testBcryptCost)

	first, err := users.EnsureCollector(ctx, "tickets_collector", "collector@localhost")
	require.NoError(t, err)
	second, err := users.EnsureCollector(ctx, "tickets_collector", "collector@localhost")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	collector, err := store.Users().GetByID(ctx, first)
	require.NoError(t, err)
	assert.True(t, collector.HidePrivateInfo)
	assert.Equal(t, "tickets_collector", collector.Username)
}
