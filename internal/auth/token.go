package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken matches ErrInvalidToken under errors.Is
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrInvalidToken)
)

// TokenClaims represents the claims carried by a bearer token
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
