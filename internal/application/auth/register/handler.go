package register

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/internal/domain/security"
)

type Handler struct {
	store     repository.UserStore
	hasher    security.PasswordHasher
	publisher event.Publisher
	logger    logrus.FieldLogger
}

// NewHandler wires the register use case. publisher may be nil.
func NewHandler(store repository.UserStore, hasher security.PasswordHasher, publisher event.Publisher, logger logrus.FieldLogger) *Handler {
	return &Handler{store: store, hasher: hasher, publisher: publisher, logger: logger}
}

// Handle registers a validated command.
//
// The existence check is only a fast path: two concurrent registrations for
// the same email can both pass it, and the loser is rejected by the unique
// constraint at commit.
func (h *Handler) Handle(ctx context.Context, cmd Command) (result.Result[Response], error) {
	email := entity.NormalizeEmail(cmd.Email)
	repo := h.store.Begin()

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return auth.Fail[Response](ctx, h.logger, "check email", err)
	}
	if exists {
		return result.Failure[Response](auth.EmailAlreadyInUse), nil
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return auth.Fail[Response](ctx, h.logger, "hash password", err)
	}
	if err := ctx.Err(); err != nil {
		return result.Result[Response]{}, err
	}

	user := entity.CreateUser(email, hash, strings.TrimSpace(cmd.DisplayName))
	repo.Add(user)
	if _, err := repo.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return result.Failure[Response](auth.EmailAlreadyInUse), nil
		}
		return auth.Fail[Response](ctx, h.logger, "save user", err)
	}

	h.publish(ctx, user)

	return result.Success(Response{
		UserID:      user.ID(),
		Email:       user.Email(),
		DisplayName: user.DisplayName(),
	}), nil
}

// publish is best effort: the account already exists once SaveChanges returns.
func (h *Handler) publish(ctx context.Context, u *entity.User) {
	if h.publisher == nil {
		return
	}
	e := event.NewUserRegistered(u.ID().String(), u.Email(), u.DisplayName(), u.CreatedAt())
	if err := h.publisher.PublishUserRegistered(context.WithoutCancel(ctx), e); err != nil {
		h.logger.WithError(err).WithField("user_id", e.UserID).Warn("publish user registered failed")
	}
}
