package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/config"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router builds its modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	cookies    *helpers.CookieManager
	rabbitPub  *helpers.RabbitPublisher
	dispatcher *mediator.Dispatcher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }

// SetRedis stores the Redis client; nil disables rate limiting.
func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetCookies(m *helpers.CookieManager) { cookies = m }
func GetCookies() *helpers.CookieManager {
	if cookies != nil {
		return cookies
	}
	if cfg != nil {
		return helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)
	}
	return helpers.NewCookieManager("", false)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetDispatcher(d *mediator.Dispatcher) { dispatcher = d }
func GetDispatcher() *mediator.Dispatcher  { return dispatcher }
