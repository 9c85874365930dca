// Package verifyemail proves ownership of an account's email address with a
// single-use link.
package verifyemail

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenStore keeps pending verification tokens until they expire.
type TokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Lookup reports ok=false for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (userID uuid.UUID, ok bool, err error)
	Delete(ctx context.Context, token string) error
}

// Mailer delivers the verification link.
type Mailer interface {
	SendVerification(ctx context.Context, msg Message) error
}

type Message struct {
	To          string
	DisplayName string
	Link        string
	ExpiresAt   time.Time
}
