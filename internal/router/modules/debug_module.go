package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/interface/middleware"
)

// DebugModule exposes expvar (including auth_outcomes) on /debug/vars.
// Private addresses skip the rate limit.
type DebugModule struct {
	RDB    *redis.Client
	Logger logrus.FieldLogger
}

func NewDebugModule(rdb *redis.Client, logger logrus.FieldLogger) *DebugModule {
	return &DebugModule{RDB: rdb, Logger: logger}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
