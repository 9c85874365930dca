package container

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/login"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/logout"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/refresh"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/register"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/verifyemail"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/security"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

// AuthDeps are the capabilities the account commands run on.
type AuthDeps struct {
	Store     repository.UserStore
	Hasher    security.PasswordHasher
	Issuer    security.TokenIssuer
	Publisher event.Publisher
	Tokens    verifyemail.TokenStore
	Mailer    verifyemail.Mailer

	VerifyTTL  time.Duration
	VerifyLink string

	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

// BuildDispatcher binds every account command to its validator and handler.
// Nil Publisher or Mailer are replaced by no-ops.
func BuildDispatcher(d AuthDeps) *mediator.Dispatcher {
	if d.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		d.Logger = l
	}
	if d.Validate == nil {
		d.Validate = validation.New()
	}
	if d.Publisher == nil {
		d.Publisher = noopPublisher{}
	}
	if d.Mailer == nil {
		d.Mailer = noopMailer{}
	}
	log := d.Logger

	reg := mediator.NewRegistry()
	mediator.MustRegister[register.Command, register.Response](reg,
		register.NewValidator(d.Validate),
		register.NewHandler(d.Store, d.Hasher, d.Publisher, log.WithField("command", register.CommandType)))
	mediator.MustRegister[login.Command, auth.Session](reg,
		login.NewValidator(d.Validate),
		login.NewHandler(d.Store, d.Hasher, d.Issuer, log.WithField("command", login.CommandType)))
	mediator.MustRegister[refresh.Command, auth.Session](reg,
		refresh.NewValidator(d.Validate),
		refresh.NewHandler(d.Store, d.Issuer, log.WithField("command", refresh.CommandType)))
	mediator.MustRegister[logout.Command, logout.Response](reg,
		logout.NewValidator(d.Validate),
		logout.NewHandler(d.Store, log.WithField("command", logout.CommandType)))
	mediator.MustRegister[verifyemail.RequestCommand, verifyemail.RequestResponse](reg,
		verifyemail.NewRequestValidator(d.Validate),
		verifyemail.NewRequestHandler(d.Store, d.Tokens, d.Mailer, d.VerifyTTL, d.VerifyLink, log.WithField("command", verifyemail.RequestCommandType)))
	mediator.MustRegister[verifyemail.ConfirmCommand, verifyemail.ConfirmResponse](reg,
		verifyemail.NewConfirmValidator(d.Validate),
		verifyemail.NewConfirmHandler(d.Store, d.Tokens, log.WithField("command", verifyemail.ConfirmCommandType)))

	return mediator.New(reg, log)
}

type noopPublisher struct{}

func (noopPublisher) PublishUserRegistered(context.Context, event.UserRegistered) error { return nil }

type noopMailer struct{}

func (noopMailer) SendVerification(context.Context, verifyemail.Message) error { return nil }
