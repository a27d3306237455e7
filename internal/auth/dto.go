package auth

import (
	"time"

	"github.com/angelmondragon/moments-backend/pkg/auth/session"
)

// LoginRequest captures the admin credentials sent to the session endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse carries the bearer token and the session it refers to.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Session     *session.Record `json:"session"`
}
