// Package refresh rotates a refresh token into a new session.
package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/internal/domain/security"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

const CommandType = "auth.refresh"

type Command struct {
	RefreshToken string
}

func (Command) CommandType() string { return CommandType }

type input struct {
	RefreshToken string `json:"refresh_token" validate:"required,max=500"`
}

type Validator struct {
	v *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator { return &Validator{v: v} }

func (val *Validator) Validate(cmd Command) []result.Error {
	return validation.ToResultErrors(val.v.Struct(input{RefreshToken: cmd.RefreshToken}))
}

type Handler struct {
	store  repository.UserStore
	issuer security.TokenIssuer
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewHandler(store repository.UserStore, issuer security.TokenIssuer, logger logrus.FieldLogger) *Handler {
	return &Handler{store: store, issuer: issuer, logger: logger, now: time.Now}
}

// Handle exchanges a live refresh token for a new session. The presented
// token stops working as soon as the new one is saved.
func (h *Handler) Handle(ctx context.Context, cmd Command) (result.Result[auth.Session], error) {
	hash := h.issuer.HashRefreshToken(cmd.RefreshToken)
	repo := h.store.Begin()

	u, err := repo.GetByRefreshTokenHash(ctx, hash)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return result.Failure[auth.Session](auth.InvalidRefreshToken), nil
	case err != nil:
		return auth.Fail[auth.Session](ctx, h.logger, "load user", err)
	}
	if !u.HasValidRefreshToken(hash, h.now()) {
		return result.Failure[auth.Session](auth.InvalidRefreshToken), nil
	}

	session, err := auth.IssueSession(h.issuer, u)
	if err != nil {
		return auth.Fail[auth.Session](ctx, h.logger, "issue session", err)
	}
	repo.Update(u)
	if _, err := repo.SaveChanges(ctx); err != nil {
		// Another request rotated or revoked this token first.
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return result.Failure[auth.Session](auth.InvalidRefreshToken), nil
		}
		return auth.Fail[auth.Session](ctx, h.logger, "save session", err)
	}
	return result.Success(session), nil
}
