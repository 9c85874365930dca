package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_VerificationTokens_SaveLookupDelete(t *testing.T) {
	ctx := context.Background()
	s := NewVerificationTokens()
	uid := uuid.New()

	require.NoError(t, s.Save(ctx, "tok", uid, time.Hour))

	got, ok, err := s.Lookup(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uid, got)

	require.NoError(t, s.Delete(ctx, "tok"))
	_, ok, err = s.Lookup(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_VerificationTokens_Expire(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := t0
	s := NewVerificationTokens()
	s.now = func() time.Time { return clock }
	require.NoError(t, s.Save(ctx, "tok", uuid.New(), time.Minute))

	clock = t0.Add(time.Minute)
	_, ok, err := s.Lookup(ctx, "tok")

	require.NoError(t, err)
	assert.False(t, ok, "a token is dead at its expiry instant")
}
