package verifyemail

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

const RequestCommandType = "auth.verify_email.request"

type RequestCommand struct {
	UserID uuid.UUID
}

func (RequestCommand) CommandType() string { return RequestCommandType }

type RequestResponse struct {
	AlreadyVerified bool      `json:"already_verified"`
	ExpiresAt       time.Time `json:"expires_at,omitempty"`
}

type requestInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator(v *validator.Validate) *RequestValidator { return &RequestValidator{v: v} }

func (val *RequestValidator) Validate(cmd RequestCommand) []result.Error {
	return validation.ToResultErrors(val.v.Struct(requestInput{UserID: cmd.UserID}))
}

type RequestHandler struct {
	store    repository.UserStore
	tokens   TokenStore
	mailer   Mailer
	ttl      time.Duration
	linkBase string
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewRequestHandler builds the handler. linkBase is the front-end page that
// receives the token as its "token" query parameter.
func NewRequestHandler(store repository.UserStore, tokens TokenStore, mailer Mailer, ttl time.Duration, linkBase string, logger logrus.FieldLogger) *RequestHandler {
	return &RequestHandler{
		store:    store,
		tokens:   tokens,
		mailer:   mailer,
		ttl:      ttl,
		linkBase: linkBase,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *RequestHandler) Handle(ctx context.Context, cmd RequestCommand) (result.Result[RequestResponse], error) {
	u, err := h.store.Begin().GetByID(ctx, cmd.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return result.Failure[RequestResponse](auth.UserNotFound), nil
	case err != nil:
		return auth.Fail[RequestResponse](ctx, h.logger, "load user", err)
	}
	if u.IsEmailVerified() {
		return result.Success(RequestResponse{AlreadyVerified: true}), nil
	}

	token, err := newToken()
	if err != nil {
		return auth.Fail[RequestResponse](ctx, h.logger, "generate token", err)
	}
	if err := h.tokens.Save(ctx, token, u.ID(), h.ttl); err != nil {
		return auth.Fail[RequestResponse](ctx, h.logger, "store token", err)
	}

	expiresAt := h.now().Add(h.ttl).UTC()
	link, err := h.link(token)
	if err != nil {
		return auth.Fail[RequestResponse](ctx, h.logger, "build link", err)
	}
	if err := h.mailer.SendVerification(ctx, Message{
		To:          u.Email(),
		DisplayName: u.DisplayName(),
		Link:        link,
		ExpiresAt:   expiresAt,
	}); err != nil {
		return auth.Fail[RequestResponse](ctx, h.logger, "queue verification email", err)
	}
	return result.Success(RequestResponse{ExpiresAt: expiresAt}), nil
}

func (h *RequestHandler) link(token string) (string, error) {
	u, err := url.Parse(h.linkBase)
	if err != nil {
		return "", fmt.Errorf("parse verify url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
