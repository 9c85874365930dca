package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups that match no user.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by SaveChanges when the email unique constraint rejects a write.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrConcurrentUpdate is returned by SaveChanges when a user changed after
	// this unit of work read it.
	ErrConcurrentUpdate = errors.New("user was modified concurrently")
)

// UserStore opens request-scoped units of work over the users table.
type UserStore interface {
	Begin() UserRepository
}

// UserRepository is one unit of work. Reads hit storage directly; Add and
// Update are staged and written atomically by SaveChanges.
// A UserRepository is not safe for concurrent use.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, normalizedEmail string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, normalizedEmail string) (*entity.User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error)
	Add(u *entity.User)
	Update(u *entity.User)
	// SaveChanges commits staged writes and returns the number of rows written.
	SaveChanges(ctx context.Context) (int, error)
}
