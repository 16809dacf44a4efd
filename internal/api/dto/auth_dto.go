package dto

import "time"

// ObtainTokenRequest is the credentials payload for POST /tokens/obtain/.
type ObtainTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries the refresh token for POST /tokens/refresh/.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

// TokenResponse is the issued pair.
type TokenResponse struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"expires_at"`
}
