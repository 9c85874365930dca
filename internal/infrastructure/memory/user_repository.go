// Package memory is an in-process user store. It enforces the same unique
// email constraint as the users table and is used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
)

type UserStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]entity.UserState
	versions map[uuid.UUID]int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[uuid.UUID]entity.UserState),
		versions: make(map[uuid.UUID]int64),
	}
}

func (s *UserStore) Begin() repository.UserRepository {
	return &UserRepository{store: s, loaded: make(map[uuid.UUID]int64)}
}

// Len returns the number of committed users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStore) find(match func(entity.UserState) bool) (entity.UserState, int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, st := range s.users {
		if match(st) {
			return st, s.versions[id], true
		}
	}
	return entity.UserState{}, 0, false
}

type change struct {
	state    entity.UserState
	insert   bool
	guarded  bool
	expected int64
}

// UserRepository is a unit of work over a UserStore. Updates to users it
// read are rejected if another unit of work committed them in between.
type UserRepository struct {
	store   *UserStore
	pending []change
	loaded  map[uuid.UUID]int64
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, normalizedEmail string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, _, ok := r.store.find(func(st entity.UserState) bool { return st.Email == normalizedEmail })
	return ok, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.get(ctx, func(st entity.UserState) bool { return st.ID == id })
}

func (r *UserRepository) GetByEmail(ctx context.Context, normalizedEmail string) (*entity.User, error) {
	return r.get(ctx, func(st entity.UserState) bool { return st.Email == normalizedEmail })
}

func (r *UserRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	return r.get(ctx, func(st entity.UserState) bool { return st.RefreshTokenHash == hash })
}

func (r *UserRepository) get(ctx context.Context, match func(entity.UserState) bool) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, version, ok := r.store.find(match)
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.loaded[st.ID] = version
	return entity.RestoreUser(st), nil
}

func (r *UserRepository) Add(u *entity.User) {
	r.pending = append(r.pending, change{state: u.State(), insert: true})
}

func (r *UserRepository) Update(u *entity.User) {
	c := change{state: u.State()}
	c.expected, c.guarded = r.loaded[u.ID()]
	r.pending = append(r.pending, c)
}

// SaveChanges applies every staged change or none of them.
func (r *UserRepository) SaveChanges(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(r.pending) == 0 {
		return 0, nil
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[uuid.UUID]entity.UserState, len(s.users)+len(r.pending))
	for id, st := range s.users {
		next[id] = st
	}
	versions := make(map[uuid.UUID]int64, len(r.pending))
	for _, c := range r.pending {
		_, exists := next[c.state.ID]
		switch {
		case c.insert && exists:
			return 0, fmt.Errorf("insert user %s: duplicate id", c.state.ID)
		case !c.insert && !exists:
			return 0, repository.ErrNotFound
		}
		current, staged := versions[c.state.ID]
		if !staged {
			current = s.versions[c.state.ID]
		}
		if c.guarded && !staged && current != c.expected {
			return 0, fmt.Errorf("%w: %s", repository.ErrConcurrentUpdate, c.state.ID)
		}
		for id, other := range next {
			if id != c.state.ID && other.Email == c.state.Email {
				return 0, repository.ErrDuplicateEmail
			}
		}
		next[c.state.ID] = c.state
		if c.insert {
			versions[c.state.ID] = 0
		} else {
			versions[c.state.ID] = current + 1
		}
	}

	s.users = next
	for id, v := range versions {
		s.versions[id] = v
		r.loaded[id] = v
	}
	n := len(r.pending)
	r.pending = nil
	return n, nil
}
