// Package redisstore keeps short-lived auth state in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

// VerificationTokens maps email verification tokens to user ids with a TTL.
type VerificationTokens struct {
	rdb redis.Cmdable
}

func NewVerificationTokens(rdb redis.Cmdable) *VerificationTokens {
	return &VerificationTokens{rdb: rdb}
}

func (s *VerificationTokens) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyVerifyToken(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("save verification token: %w", err)
	}
	return nil
}

func (s *VerificationTokens) Lookup(ctx context.Context, token string) (uuid.UUID, bool, error) {
	v, err := s.rdb.Get(ctx, keyVerifyToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup verification token: %w", err)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

func (s *VerificationTokens) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyVerifyToken(token)).Err()
}
