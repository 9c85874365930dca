// Package login authenticates a user by email and password.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/internal/domain/security"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

const CommandType = "auth.login"

type Command struct {
	Email    string
	Password string
}

func (Command) CommandType() string { return CommandType }

type input struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required,max=100"`
}

type Validator struct {
	v *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator { return &Validator{v: v} }

func (val *Validator) Validate(cmd Command) []result.Error {
	return validation.ToResultErrors(val.v.Struct(input{
		Email:    strings.TrimSpace(cmd.Email),
		Password: cmd.Password,
	}))
}

type Handler struct {
	store  repository.UserStore
	hasher security.PasswordHasher
	issuer security.TokenIssuer
	logger logrus.FieldLogger
}

func NewHandler(store repository.UserStore, hasher security.PasswordHasher, issuer security.TokenIssuer, logger logrus.FieldLogger) *Handler {
	return &Handler{store: store, hasher: hasher, issuer: issuer, logger: logger}
}

// Handle never tells an unknown email apart from a wrong password.
func (h *Handler) Handle(ctx context.Context, cmd Command) (result.Result[auth.Session], error) {
	repo := h.store.Begin()

	u, err := repo.GetByEmail(ctx, entity.NormalizeEmail(cmd.Email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return result.Failure[auth.Session](auth.InvalidCredentials), nil
	case err != nil:
		return auth.Fail[auth.Session](ctx, h.logger, "load user", err)
	}
	if !h.hasher.Verify(cmd.Password, u.PasswordHash()) {
		return result.Failure[auth.Session](auth.InvalidCredentials), nil
	}

	session, err := auth.IssueSession(h.issuer, u)
	if err != nil {
		return auth.Fail[auth.Session](ctx, h.logger, "issue session", err)
	}
	repo.Update(u)
	if _, err := repo.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return result.Failure[auth.Session](auth.ConcurrentUpdate), nil
		}
		return auth.Fail[auth.Session](ctx, h.logger, "save session", err)
	}
	return result.Success(session), nil
}
