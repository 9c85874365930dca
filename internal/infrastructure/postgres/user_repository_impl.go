package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
)

const (
	uniqueViolation      = "23505"
	usersEmailConstraint = "users_email_key"
)

const userColumns = `id, email, password_hash, display_name, avatar_url, is_email_verified,
	refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

// UserStore opens units of work backed by the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Begin() repository.UserRepository {
	return &UserRepository{pool: s.pool, loaded: make(map[uuid.UUID]int64)}
}

type write struct {
	state  entity.UserState
	insert bool
	// expected is the version read by this unit of work; nil when the user
	// was never loaded through it.
	expected *int64
}

// UserRepository reads through the pool and writes its staged changes in
// one transaction on SaveChanges. An update only applies if the row still
// carries the version this unit of work read.
type UserRepository struct {
	pool    *pgxpool.Pool
	pending []write
	loaded  map[uuid.UUID]int64
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, normalizedEmail string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, normalizedEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.load(r.pool.QueryRow(ctx, `SELECT `+userColumns+`, version FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, normalizedEmail string) (*entity.User, error) {
	return r.load(r.pool.QueryRow(ctx, `SELECT `+userColumns+`, version FROM users WHERE email = $1`, normalizedEmail))
}

func (r *UserRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	return r.load(r.pool.QueryRow(ctx, `SELECT `+userColumns+`, version FROM users WHERE refresh_token_hash = $1`, hash))
}

func (r *UserRepository) load(row pgx.Row) (*entity.User, error) {
	u, version, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	r.loaded[u.ID()] = version
	return u, nil
}

func (r *UserRepository) Add(u *entity.User) {
	r.pending = append(r.pending, write{state: u.State(), insert: true})
}

func (r *UserRepository) Update(u *entity.User) {
	w := write{state: u.State()}
	if v, ok := r.loaded[u.ID()]; ok {
		w.expected = &v
	}
	r.pending = append(r.pending, w)
}

func (r *UserRepository) SaveChanges(ctx context.Context) (int, error) {
	if len(r.pending) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	versions := make(map[uuid.UUID]int64, len(r.pending))
	for _, w := range r.pending {
		if w.insert {
			if err := insert(ctx, tx, w.state); err != nil {
				return 0, mapWriteError(err)
			}
			versions[w.state.ID] = 0
			continue
		}
		if v, ok := versions[w.state.ID]; ok {
			w.expected = &v
		}
		v, err := update(ctx, tx, w)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, missedUpdate(w)
			}
			return 0, mapWriteError(err)
		}
		versions[w.state.ID] = v
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, mapWriteError(err)
	}

	for id, v := range versions {
		r.loaded[id] = v
	}
	n := len(r.pending)
	r.pending = nil
	return n, nil
}

func insert(ctx context.Context, tx pgx.Tx, s entity.UserState) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.Email, s.PasswordHash, s.DisplayName, nullString(s.AvatarURL), s.IsEmailVerified,
		nullString(s.RefreshTokenHash), nullTime(s.RefreshTokenExpiresAt), s.CreatedAt, s.UpdatedAt)
	return err
}

// update writes the row and returns its new version. pgx.ErrNoRows means
// the row is gone or its version moved on.
func update(ctx context.Context, tx pgx.Tx, w write) (int64, error) {
	s := w.state
	var version int64
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3, display_name = $4, avatar_url = $5, is_email_verified = $6,
		    refresh_token_hash = $7, refresh_token_expires_at = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND ($10::bigint IS NULL OR version = $10)
		RETURNING version
	`, s.ID, s.Email, s.PasswordHash, s.DisplayName, nullString(s.AvatarURL), s.IsEmailVerified,
		nullString(s.RefreshTokenHash), nullTime(s.RefreshTokenExpiresAt), s.UpdatedAt, w.expected).Scan(&version)
	return version, err
}

func missedUpdate(w write) error {
	if w.expected != nil {
		return fmt.Errorf("%w: %s", repository.ErrConcurrentUpdate, w.state.ID)
	}
	return repository.ErrNotFound
}

// mapWriteError turns a violation of the unique email index into
// repository.ErrDuplicateEmail.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == usersEmailConstraint {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateEmail, pgErr.Detail)
	}
	return fmt.Errorf("save users: %w", err)
}

func scanUser(row pgx.Row) (*entity.User, int64, error) {
	var (
		st       entity.UserState
		avatar   *string
		rtHash   *string
		rtExpiry *time.Time
		version  int64
	)
	err := row.Scan(&st.ID, &st.Email, &st.PasswordHash, &st.DisplayName, &avatar, &st.IsEmailVerified,
		&rtHash, &rtExpiry, &st.CreatedAt, &st.UpdatedAt, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, repository.ErrNotFound
		}
		return nil, 0, fmt.Errorf("scan user: %w", err)
	}
	if avatar != nil {
		st.AvatarURL = *avatar
	}
	if rtHash != nil && rtExpiry != nil {
		st.RefreshTokenHash = *rtHash
		st.RefreshTokenExpiresAt = rtExpiry.UTC()
	}
	st.CreatedAt = st.CreatedAt.UTC()
	st.UpdatedAt = st.UpdatedAt.UTC()
	return entity.RestoreUser(st), version, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
