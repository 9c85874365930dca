package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrIncompleteRefreshToken is returned when a refresh token is set without its hash or expiry.
var ErrIncompleteRefreshToken = errors.New("refresh token hash and expiry must both be set")

var now = func() time.Time { return time.Now().UTC() }

// User is the aggregate root for the account domain.
//
// Fields are unexported: a User comes from CreateUser (registration) or
// RestoreUser (persistence) and changes only through its named methods.
// The password is only ever held as a hash.
type User struct {
	id                    uuid.UUID
	email                 string
	passwordHash          string
	displayName           string
	avatarURL             string
	isEmailVerified       bool
	refreshTokenHash      string
	refreshTokenExpiresAt time.Time
	createdAt             time.Time
	updatedAt             time.Time
}

// NormalizeEmail returns the canonical form used for storage and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser builds a new account. Hashing the password is the caller's job.
func CreateUser(email, passwordHash, displayName string) *User {
	ts := now()
	return &User{
		id:           uuid.New(),
		email:        NormalizeEmail(email),
		passwordHash: passwordHash,
		displayName:  displayName,
		createdAt:    ts,
		updatedAt:    ts,
	}
}

// UserState is the persisted shape of a User.
type UserState struct {
	ID                    uuid.UUID
	Email                 string
	PasswordHash          string
	DisplayName           string
	AvatarURL             string
	IsEmailVerified       bool
	RefreshTokenHash      string
	RefreshTokenExpiresAt time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RestoreUser rebuilds a User loaded by a repository.
// A refresh token pair with a missing half is dropped.
func RestoreUser(s UserState) *User {
	u := &User{
		id:                    s.ID,
		email:                 NormalizeEmail(s.Email),
		passwordHash:          s.PasswordHash,
		displayName:           s.DisplayName,
		avatarURL:             s.AvatarURL,
		isEmailVerified:       s.IsEmailVerified,
		refreshTokenHash:      s.RefreshTokenHash,
		refreshTokenExpiresAt: s.RefreshTokenExpiresAt,
		createdAt:             s.CreatedAt,
		updatedAt:             s.UpdatedAt,
	}
	if u.refreshTokenHash == "" || u.refreshTokenExpiresAt.IsZero() {
		u.refreshTokenHash = ""
		u.refreshTokenExpiresAt = time.Time{}
	}
	return u
}

// State returns a snapshot for persistence.
func (u *User) State() UserState {
	return UserState{
		ID:                    u.id,
		Email:                 u.email,
		PasswordHash:          u.passwordHash,
		DisplayName:           u.displayName,
		AvatarURL:             u.avatarURL,
		IsEmailVerified:       u.isEmailVerified,
		RefreshTokenHash:      u.refreshTokenHash,
		RefreshTokenExpiresAt: u.refreshTokenExpiresAt,
		CreatedAt:             u.createdAt,
		UpdatedAt:             u.updatedAt,
	}
}

func (u *User) ID() uuid.UUID         { return u.id }
func (u *User) Email() string         { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) DisplayName() string   { return u.displayName }
func (u *User) AvatarURL() string     { return u.avatarURL }
func (u *User) IsEmailVerified() bool { return u.isEmailVerified }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }

// RefreshToken returns the stored refresh token hash and expiry; ok is false when none is set.
func (u *User) RefreshToken() (hash string, expiresAt time.Time, ok bool) {
	if u.refreshTokenHash == "" {
		return "", time.Time{}, false
	}
	return u.refreshTokenHash, u.refreshTokenExpiresAt, true
}

// HasValidRefreshToken reports whether hash matches the stored token and it has not expired at t.
func (u *User) HasValidRefreshToken(hash string, t time.Time) bool {
	return u.refreshTokenHash != "" && u.refreshTokenHash == hash && t.Before(u.refreshTokenExpiresAt)
}

// SetRefreshToken stores a new refresh token hash, replacing any previous one.
func (u *User) SetRefreshToken(tokenHash string, expiresAt time.Time) error {
	if tokenHash == "" || expiresAt.IsZero() {
		return ErrIncompleteRefreshToken
	}
	u.refreshTokenHash = tokenHash
	u.refreshTokenExpiresAt = expiresAt.UTC()
	u.updatedAt = now()
	return nil
}

func (u *User) RevokeRefreshToken() {
	u.refreshTokenHash = ""
	u.refreshTokenExpiresAt = time.Time{}
	u.updatedAt = now()
}

func (u *User) VerifyEmail() {
	u.isEmailVerified = true
	u.updatedAt = now()
}
