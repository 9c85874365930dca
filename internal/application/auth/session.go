package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/security"
)

// Session is returned by the commands that authenticate a user.
type Session struct {
	UserID                uuid.UUID `json:"user_id"`
	Email                 string    `json:"email"`
	DisplayName           string    `json:"display_name"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// IssueSession mints an access token and a fresh refresh token for u and stores
// the refresh token's hash on u. The caller persists u.
func IssueSession(issuer security.TokenIssuer, u *entity.User) (Session, error) {
	access, accessExp, err := issuer.IssueAccessToken(u.ID().String())
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := issuer.NewRefreshToken()
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := u.SetRefreshToken(issuer.HashRefreshToken(refresh), refreshExp); err != nil {
		return Session{}, err
	}
	return Session{
		UserID:                u.ID(),
		Email:                 u.Email(),
		DisplayName:           u.DisplayName(),
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}
