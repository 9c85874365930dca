package router

import (
	"github.com/oksasatya/taskflow-auth/internal/container"
	handlers "github.com/oksasatya/taskflow-auth/internal/interface/http"
	"github.com/oksasatya/taskflow-auth/internal/router/modules"
)

// InitModules builds every module from the container and adds it to r.
// Call once at startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	authHandler := handlers.NewAuthHandler(container.GetDispatcher(), container.GetCookies(), logger)
	r.Add(modules.NewAuthModule(authHandler, container.GetJWT(), rdb, logger))

	if cfg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb, logger))
	}
}
