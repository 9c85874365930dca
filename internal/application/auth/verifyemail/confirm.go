package verifyemail

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

const ConfirmCommandType = "auth.verify_email.confirm"

type ConfirmCommand struct {
	Token string
}

func (ConfirmCommand) CommandType() string { return ConfirmCommandType }

type ConfirmResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type confirmInput struct {
	Token string `json:"token" validate:"required,max=128"`
}

type ConfirmValidator struct {
	v *validator.Validate
}

func NewConfirmValidator(v *validator.Validate) *ConfirmValidator { return &ConfirmValidator{v: v} }

func (val *ConfirmValidator) Validate(cmd ConfirmCommand) []result.Error {
	return validation.ToResultErrors(val.v.Struct(confirmInput{Token: cmd.Token}))
}

type ConfirmHandler struct {
	store  repository.UserStore
	tokens TokenStore
	logger logrus.FieldLogger
}

func NewConfirmHandler(store repository.UserStore, tokens TokenStore, logger logrus.FieldLogger) *ConfirmHandler {
	return &ConfirmHandler{store: store, tokens: tokens, logger: logger}
}

func (h *ConfirmHandler) Handle(ctx context.Context, cmd ConfirmCommand) (result.Result[ConfirmResponse], error) {
	uid, ok, err := h.tokens.Lookup(ctx, cmd.Token)
	if err != nil {
		return auth.Fail[ConfirmResponse](ctx, h.logger, "lookup token", err)
	}
	if !ok {
		return result.Failure[ConfirmResponse](auth.InvalidVerificationToken), nil
	}

	repo := h.store.Begin()
	u, err := repo.GetByID(ctx, uid)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return result.Failure[ConfirmResponse](auth.InvalidVerificationToken), nil
	case err != nil:
		return auth.Fail[ConfirmResponse](ctx, h.logger, "load user", err)
	}

	if !u.IsEmailVerified() {
		u.VerifyEmail()
		repo.Update(u)
		if _, err := repo.SaveChanges(ctx); err != nil {
			if errors.Is(err, repository.ErrConcurrentUpdate) {
				return result.Failure[ConfirmResponse](auth.ConcurrentUpdate), nil
			}
			return auth.Fail[ConfirmResponse](ctx, h.logger, "save user", err)
		}
	}

	// A token that survives a failed delete just expires; confirming twice is harmless.
	if err := h.tokens.Delete(context.WithoutCancel(ctx), cmd.Token); err != nil {
		h.logger.WithError(err).Warn("delete verification token failed")
	}
	return result.Success(ConfirmResponse{UserID: u.ID()}), nil
}
