package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/taskflow-auth/config"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/authtest"
	"github.com/oksasatya/taskflow-auth/internal/container"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/memory"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
)

func Test_InitModules_RegistersAuthAndDebugRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := logtest.NewNullLogger()
	container.SetConfig(&config.Config{DebugMetricsEnabled: true})
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager("secret", "test", time.Minute, time.Hour))
	container.SetDispatcher(container.BuildDispatcher(container.AuthDeps{
		Store:  memory.NewUserStore(),
		Hasher: authtest.Hasher{},
		Issuer: authtest.NewIssuer(time.Now()),
		Tokens: memory.NewVerificationTokens(),
	}))
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(func(c *gin.Context) { c.Header("X-Registry", "1"); c.Next() })

	InitModules(reg)
	reg.RegisterAll()

	got := map[string]bool{}
	for _, r := range engine.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"POST /api/auth/verify/init",
		"POST /api/auth/verify/confirm",
		"GET /api/debug/vars",
	} {
		assert.True(t, got[want], want)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Registry"), "registry middleware runs before module routes")
}
