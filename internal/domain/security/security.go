// Package security declares the credential capabilities the application depends on.
package security

import "time"

// PasswordHasher produces one-way, salted, deliberately slow password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer issues signed access tokens and opaque refresh tokens.
// Only the hash of a refresh token is ever persisted.
type TokenIssuer interface {
	IssueAccessToken(userID string) (token string, expiresAt time.Time, err error)
	ParseAccessToken(token string) (userID string, err error)
	NewRefreshToken() (token string, expiresAt time.Time, err error)
	HashRefreshToken(token string) string
}
