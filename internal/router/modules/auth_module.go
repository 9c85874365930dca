package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/taskflow-auth/internal/interface/http"
	"github.com/oksasatya/taskflow-auth/internal/interface/middleware"
)

// AuthModule serves /api/auth.
//
// Public: register, login, refresh, verify/confirm (per-IP limits).
// Protected: logout, verify/init (per-user limits).
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.AccessTokenParser
	RDB     *redis.Client
	Logger  logrus.FieldLogger
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.AccessTokenParser, rdb *redis.Client, logger logrus.FieldLogger) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, RDB: rdb, Logger: logger}
}

func (m *AuthModule) limit(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(m.RDB, max, time.Minute, key, nil, m.Logger)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	g.POST("/register", m.limit(5, middleware.KeyByIPAndPath()), m.Handler.Register)
	g.POST("/login", m.limit(10, middleware.KeyByIPAndPath()), m.Handler.Login)
	g.POST("/refresh", m.limit(60, middleware.KeyByIPAndPath()), m.Handler.Refresh)
	g.POST("/verify/confirm", m.limit(30, middleware.KeyByIPAndPath()), m.Handler.VerifyConfirm)

	auth := g.Group("")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.POST("/logout", m.limit(30, middleware.KeyByUserAndPath()), m.Handler.Logout)
		auth.POST("/verify/init", m.limit(5, middleware.KeyByUserAndPath()), m.Handler.VerifyInit)
	}
}
