// Package logout revokes a user's refresh token.
package logout

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

const CommandType = "auth.logout"

type Command struct {
	UserID uuid.UUID
}

func (Command) CommandType() string { return CommandType }

type Response struct {
	UserID uuid.UUID `json:"user_id"`
}

type input struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

type Validator struct {
	v *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator { return &Validator{v: v} }

func (val *Validator) Validate(cmd Command) []result.Error {
	return validation.ToResultErrors(val.v.Struct(input{UserID: cmd.UserID}))
}

type Handler struct {
	store  repository.UserStore
	logger logrus.FieldLogger
}

func NewHandler(store repository.UserStore, logger logrus.FieldLogger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Handle(ctx context.Context, cmd Command) (result.Result[Response], error) {
	repo := h.store.Begin()

	u, err := repo.GetByID(ctx, cmd.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return result.Failure[Response](auth.UserNotFound), nil
	case err != nil:
		return auth.Fail[Response](ctx, h.logger, "load user", err)
	}

	u.RevokeRefreshToken()
	repo.Update(u)
	if _, err := repo.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return result.Failure[Response](auth.ConcurrentUpdate), nil
		}
		return auth.Fail[Response](ctx, h.logger, "revoke refresh token", err)
	}
	return result.Success(Response{UserID: u.ID()}), nil
}
