package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-api/internal/auth"
	"github.com/spec-kit/support-api/internal/config"
	"github.com/spec-kit/support-api/internal/repository"
	util "github.com/spec-kit/support-api/pkg/util"
)

// AuthService issues and refreshes token pairs.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, cfg.RefreshTokenTTLMinutes),
	}
}

// TokenPair is the obtain/refresh response payload.
type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresAt time.Time
}

// Obtain authenticates by email and password and issues a token pair.
func (s *AuthService) Obtain(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	access, refresh, expiresAt, err := s.tokenMgr.GeneratePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh, ExpiresAt: expiresAt}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return nil, util.NewUnauthorized("invalid refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, util.NewUnauthorized("invalid refresh token")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewUnauthorized("user not found")
		}
		return nil, err
	}

	access, expiresAt, err := s.tokenMgr.GenerateAccess(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refreshToken, ExpiresAt: expiresAt}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
