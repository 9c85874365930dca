package handlers

import (
	"context"
	"errors"
	"expvar"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/login"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/logout"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/refresh"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/register"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/verifyemail"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
	"github.com/oksasatya/taskflow-auth/pkg/response"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

// StatusClientClosedRequest is written when the caller went away mid-command.
const StatusClientClosedRequest = 499

// outcome counters, published on /api/debug/vars
var authOutcomes = expvar.NewMap("auth_outcomes")

type AuthHandler struct {
	Dispatcher *mediator.Dispatcher
	Cookies    *helpers.CookieManager
	Logger     logrus.FieldLogger
}

func NewAuthHandler(d *mediator.Dispatcher, cookies *helpers.CookieManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Dispatcher: d, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyConfirmRequest struct {
	Token string `json:"token"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := mediator.Send[register.Command, register.Response](c.Request.Context(), h.Dispatcher, register.Command{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if !check(h, c, register.CommandType, res, err) {
		return
	}
	response.Success(c, http.StatusCreated, res.Value(), "account created", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := mediator.Send[login.Command, auth.Session](c.Request.Context(), h.Dispatcher, login.Command{
		Email:    req.Email,
		Password: req.Password,
	})
	if !check(h, c, login.CommandType, res, err) {
		return
	}
	h.writeSession(c, res.Value(), "login successful")
}

// Refresh POST /api/auth/refresh {refresh_token}; falls back to the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !h.bind(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(helpers.RefreshCookie)
	}
	res, err := mediator.Send[refresh.Command, auth.Session](c.Request.Context(), h.Dispatcher, refresh.Command{
		RefreshToken: req.RefreshToken,
	})
	if !check(h, c, refresh.CommandType, res, err) {
		return
	}
	h.writeSession(c, res.Value(), "token refreshed")
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	res, err := mediator.Send[logout.Command, logout.Response](c.Request.Context(), h.Dispatcher, logout.Command{UserID: uid})
	h.Cookies.Clear(c)
	if !check(h, c, logout.CommandType, res, err) {
		return
	}
	response.Success(c, http.StatusOK, res.Value(), "logged out", nil)
}

// VerifyInit POST /api/auth/verify/init (auth required)
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	res, err := mediator.Send[verifyemail.RequestCommand, verifyemail.RequestResponse](c.Request.Context(), h.Dispatcher, verifyemail.RequestCommand{UserID: uid})
	if !check(h, c, verifyemail.RequestCommandType, res, err) {
		return
	}
	msg := "verification email sent"
	if res.Value().AlreadyVerified {
		msg = "already verified"
	}
	response.Success(c, http.StatusOK, res.Value(), msg, nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := mediator.Send[verifyemail.ConfirmCommand, verifyemail.ConfirmResponse](c.Request.Context(), h.Dispatcher, verifyemail.ConfirmCommand{
		Token: req.Token,
	})
	if !check(h, c, verifyemail.ConfirmCommandType, res, err) {
		return
	}
	response.Success(c, http.StatusOK, res.Value(), "email verified", nil)
}

func (h *AuthHandler) writeSession(c *gin.Context, s auth.Session, msg string) {
	h.Cookies.SetPair(c, s.AccessToken, s.AccessTokenExpiresAt, s.RefreshToken, s.RefreshTokenExpiresAt)
	response.Success(c, http.StatusOK, s, msg, map[string]any{
		"access_expires_at":  s.AccessTokenExpiresAt,
		"refresh_expires_at": s.RefreshTokenExpiresAt,
	})
}

// bind decodes the JSON body. An empty body decodes to the zero request and is
// left to the command validator.
func (h *AuthHandler) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Code:    "validation.payload",
		Details: validation.ToDetails(err),
	})
	return false
}

func (h *AuthHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	uid, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", response.ErrorBody{Code: "auth.unauthorized"})
		return uuid.Nil, false
	}
	return uid, true
}

// check writes the error response for a cancelled or failed command and
// reports whether the caller should write the success body.
func check[R any](h *AuthHandler, c *gin.Context, op string, res result.Result[R], err error) bool {
	if err != nil {
		authOutcomes.Add("cancelled", 1)
		status := StatusClientClosedRequest
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.Logger.WithError(err).WithField("op", op).Warn("request abandoned")
		response.Error(c, status, "request cancelled", response.ErrorBody{Code: "request.cancelled"})
		return false
	}
	if res.IsSuccess() {
		authOutcomes.Add(op+".ok", 1)
		return true
	}
	errs := res.Errors()
	first := errs[0]
	authOutcomes.Add(first.Code, 1)
	body := response.ErrorBody{Code: first.Code}
	if isValidation(first.Code) {
		body.Details = validation.DetailsFromResult(errs)
	}
	response.Error(c, StatusFor(first.Code), first.Message, body)
	return false
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch {
	case isValidation(code):
		return http.StatusBadRequest
	case code == auth.EmailAlreadyInUse.Code, code == auth.ConcurrentUpdate.Code:
		return http.StatusConflict
	case code == auth.InvalidCredentials.Code, code == auth.InvalidRefreshToken.Code:
		return http.StatusUnauthorized
	case code == auth.UserNotFound.Code:
		return http.StatusNotFound
	case code == auth.InvalidVerificationToken.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(code string) bool { return strings.HasPrefix(code, "validation.") }
