// Package authtest provides fast stand-ins for the credential and event
// capabilities, for use in tests only.
package authtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oksasatya/taskflow-auth/internal/domain/event"
)

// Hasher is a reversible, instant PasswordHasher.
type Hasher struct {
	Err error
}

func (h Hasher) Hash(plain string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	return "hashed:" + plain, nil
}

func (h Hasher) Verify(plain, hash string) bool {
	return hash == "hashed:"+plain
}

// Issuer is a TokenIssuer with predictable tokens.
type Issuer struct {
	Now        func() time.Time
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Err        error

	seq atomic.Int64
}

func NewIssuer(now time.Time) *Issuer {
	return &Issuer{
		Now:        func() time.Time { return now },
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func (i *Issuer) IssueAccessToken(userID string) (string, time.Time, error) {
	if i.Err != nil {
		return "", time.Time{}, i.Err
	}
	return "access:" + userID, i.Now().Add(i.AccessTTL), nil
}

func (i *Issuer) ParseAccessToken(token string) (string, error) {
	uid, ok := strings.CutPrefix(token, "access:")
	if !ok || uid == "" {
		return "", errors.New("authtest: malformed access token")
	}
	return uid, nil
}

func (i *Issuer) NewRefreshToken() (string, time.Time, error) {
	if i.Err != nil {
		return "", time.Time{}, i.Err
	}
	return fmt.Sprintf("refresh-%d", i.seq.Add(1)), i.Now().Add(i.RefreshTTL), nil
}

func (i *Issuer) HashRefreshToken(token string) string {
	return "sha:" + token
}

// Publisher records published events.
type Publisher struct {
	Err error

	mu     sync.Mutex
	events []event.UserRegistered
}

func (p *Publisher) PublishUserRegistered(_ context.Context, e event.UserRegistered) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *Publisher) Events() []event.UserRegistered {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.UserRegistered(nil), p.events...)
}
