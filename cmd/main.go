package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/config"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/verifyemail"
	"github.com/oksasatya/taskflow-auth/internal/container"
	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/memory"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/taskflow-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/redisstore"
	"github.com/oksasatya/taskflow-auth/internal/interface/middleware"
	"github.com/oksasatya/taskflow-auth/internal/router"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	// Redis backs rate limiting and verification tokens. Memory mode runs without it.
	var tokens verifyemail.TokenStore
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	switch {
	case err == nil:
		defer func() { _ = rdb.Close() }()
		tokens = redisstore.NewVerificationTokens(rdb)
	case cfg.StorageDriver == config.StorageMemory:
		logger.WithError(err).Warn("redis unavailable: rate limiting off, verification tokens kept in memory")
		tokens = memory.NewVerificationTokens()
	default:
		logger.WithError(err).Fatal("failed to connect to redis")
	}

	// RabbitMQ carries account events and email jobs; both are best effort.
	var (
		publisher event.Publisher
		mailer    verifyemail.Mailer
	)
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.RabbitMQUserEventsQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable: events and emails are not published")
	} else {
		defer pub.Close()
		container.SetRabbitPub(pub)
		publisher = messaging.NewEventPublisher(pub, cfg.RabbitMQUserEventsQueue)
		mailer = messaging.NewEmailQueue(pub, cfg.RabbitMQEmailQueue, cfg.Brand(), cfg.MailSendEnabled)
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	dispatcher := container.BuildDispatcher(container.AuthDeps{
		Store:      store,
		Hasher:     helpers.NewBcryptHasher(cfg.BcryptCost),
		Issuer:     jwtManager,
		Publisher:  publisher,
		Tokens:     tokens,
		Mailer:     mailer,
		VerifyTTL:  cfg.VerifyTokenTTL,
		VerifyLink: cfg.VerifyEmailURL,
		Validate:   validation.New(),
		Logger:     logger,
	})

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetCookies(helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure))
	container.SetDispatcher(dispatcher)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserStore, func()) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory user store; accounts are lost on restart")
		return memory.NewUserStore(), func() {}
	case config.StoragePostgres:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:             cfg.PostgresDSN(),
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
		return pginfra.NewUserStore(pool), pool.Close
	default:
		logger.WithField("driver", cfg.StorageDriver).Fatal("unknown STORAGE_DRIVER")
		return nil, nil
	}
}
