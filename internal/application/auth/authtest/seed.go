package authtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
)

// SeedUser commits a user whose password hash matches Hasher.
func SeedUser(t *testing.T, store repository.UserStore, email, password, displayName string) *entity.User {
	t.Helper()
	hash, err := Hasher{}.Hash(password)
	require.NoError(t, err)
	u := entity.CreateUser(email, hash, displayName)
	repo := store.Begin()
	repo.Add(u)
	_, err = repo.SaveChanges(context.Background())
	require.NoError(t, err)
	return u
}

// Save commits changes made to u.
func Save(t *testing.T, store repository.UserStore, u *entity.User) {
	t.Helper()
	repo := store.Begin()
	repo.Update(u)
	_, err := repo.SaveChanges(context.Background())
	require.NoError(t, err)
}
