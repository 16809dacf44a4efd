package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-api/internal/api/dto"
	"github.com/spec-kit/support-api/internal/service"
	apperrors "github.com/spec-kit/support-api/pkg/util"
)

// TokensHandler issues and refreshes JWT pairs.
type TokensHandler struct {
	auth *service.AuthService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(authService *service.AuthService) *TokensHandler {
	return &TokensHandler{auth: authService}
}

// Obtain POST /tokens/obtain/.
func (h *TokensHandler) Obtain(c *fiber.Ctx) error {
	var req dto.ObtainTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewInvalidArgument("email and password required", nil)
	}

	pair, err := h.auth.Obtain(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresAt: pair.ExpiresAt,
	})
}

// Refresh POST /tokens/refresh/.
func (h *TokensHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if req.Refresh == "" {
		return apperrors.NewInvalidArgument("refresh token required", nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresAt: pair.ExpiresAt,
	})
}
