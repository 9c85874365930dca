package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type pendingToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// VerificationTokens is the in-process counterpart of redisstore.VerificationTokens.
type VerificationTokens struct {
	mu     sync.Mutex
	tokens map[string]pendingToken
	now    func() time.Time
}

func NewVerificationTokens() *VerificationTokens {
	return &VerificationTokens{tokens: make(map[string]pendingToken), now: time.Now}
}

func (s *VerificationTokens) Save(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = pendingToken{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *VerificationTokens) Lookup(_ context.Context, token string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, false, nil
	}
	if !s.now().Before(p.expiresAt) {
		delete(s.tokens, token)
		return uuid.Nil, false, nil
	}
	return p.userID, true, nil
}

func (s *VerificationTokens) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
