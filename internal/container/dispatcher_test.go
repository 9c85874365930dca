package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/authtest"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/login"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/logout"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/refresh"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/register"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/verifyemail"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/memory"
)

func newTestDispatcher() *mediator.Dispatcher {
	return BuildDispatcher(AuthDeps{
		Store:      memory.NewUserStore(),
		Hasher:     authtest.Hasher{},
		Issuer:     authtest.NewIssuer(time.Now()),
		Tokens:     memory.NewVerificationTokens(),
		VerifyTTL:  time.Hour,
		VerifyLink: "https://app.test/verify",
	})
}

func Test_BuildDispatcher_BindsEveryCommand(t *testing.T) {
	d := newTestDispatcher()

	assert.ElementsMatch(t, []string{
		register.CommandType,
		login.CommandType,
		refresh.CommandType,
		logout.CommandType,
		verifyemail.RequestCommandType,
		verifyemail.ConfirmCommandType,
	}, d.Types())
}

func Test_BuildDispatcher_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher()

	reg, err := mediator.Send[register.Command, register.Response](ctx, d, register.Command{
		Email: "alice@example.com", Password: "Secret123!", DisplayName: "Alice",
	})
	require.NoError(t, err)
	require.True(t, reg.IsSuccess())

	res, err := mediator.Send[login.Command, auth.Session](ctx, d, login.Command{
		Email: "ALICE@example.com", Password: "Secret123!",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, reg.Value().UserID, res.Value().UserID)
}
