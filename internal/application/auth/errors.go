// Package auth holds what the account commands share: the error catalogue,
// session issuance and infrastructure-failure mapping.
package auth

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/domain/result"
)

var (
	EmailAlreadyInUse        = result.NewError("auth.email_already_in_use", "An account with this email already exists.")
	InvalidCredentials       = result.NewError("auth.invalid_credentials", "Email or password is incorrect.")
	InvalidRefreshToken      = result.NewError("auth.invalid_refresh_token", "The refresh token is invalid or has expired.")
	UserNotFound             = result.NewError("auth.user_not_found", "The user does not exist.")
	InvalidVerificationToken = result.NewError("auth.invalid_verification_token", "The verification link is invalid or has expired.")
	ConcurrentUpdate         = result.NewError("auth.concurrent_update", "The account was changed by another request. Please try again.")
)

// Fail turns an infrastructure error into a handler outcome.
// If ctx was cancelled the cancellation is returned as the Go error and nothing
// is logged; otherwise err is logged and callers only see result.InternalError.
func Fail[R any](ctx context.Context, logger logrus.FieldLogger, op string, err error) (result.Result[R], error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result.Result[R]{}, ctxErr
	}
	logger.WithError(err).WithField("op", op).Error("auth command failed")
	return result.Failure[R](result.InternalError), nil
}
