package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
)

func Test_mapWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantDup bool
	}{
		{
			name:    "unique email violation",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", Detail: "Key (email)=(a@b.c) already exists."},
			wantDup: true,
		},
		{
			name:    "wrapped unique email violation",
			err:     errors.Join(errors.New("commit"), &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}),
			wantDup: true,
		},
		{
			name: "primary key violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"},
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "users_refresh_token_pair"},
		},
		{
			name: "connection error",
			err:  errors.New("conn closed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteError(tt.err)

			assert.Equal(t, tt.wantDup, errors.Is(got, repository.ErrDuplicateEmail))
			if !tt.wantDup {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func Test_missedUpdate(t *testing.T) {
	st := entity.UserState{ID: uuid.New()}
	version := int64(3)

	t.Run("version was read", func(t *testing.T) {
		err := missedUpdate(write{state: st, expected: &version})

		assert.ErrorIs(t, err, repository.ErrConcurrentUpdate)
		assert.Contains(t, err.Error(), st.ID.String())
	})

	t.Run("never read", func(t *testing.T) {
		err := missedUpdate(write{state: st})

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func Test_nullHelpers(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", *nullString("x"))
	assert.Nil(t, nullTime(time.Time{}))
}
