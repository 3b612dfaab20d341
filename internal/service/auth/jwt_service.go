// Package auth provides authentication services: JWT issuing/validation
// and password hashing.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Claims holds the validated content of an access token.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// JWTService defines the interface for issuing and validating access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the given user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies a token's signature and time claims and
	// returns its claims. Returns ErrExpiredToken or ErrInvalidToken on
	// failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
