package event

import (
	"context"
	"time"
)

const UserRegisteredType = "user.registered"

// UserRegistered is emitted after a new account has been committed.
type UserRegistered struct {
	Type         string    `json:"type"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewUserRegistered builds the event with its type set.
func NewUserRegistered(userID, email, displayName string, at time.Time) UserRegistered {
	return UserRegistered{
		Type:         UserRegisteredType,
		UserID:       userID,
		Email:        email,
		DisplayName:  displayName,
		RegisteredAt: at.UTC(),
	}
}

// Publisher delivers account events to downstream consumers.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, e UserRegistered) error
}
