package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/taskflow-auth/config"
	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/register"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/container"
	pginfra "github.com/oksasatya/taskflow-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
)

// seed registers a demo account through the same command path as the API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	d := container.BuildDispatcher(container.AuthDeps{
		Store:  pginfra.NewUserStore(pool),
		Hasher: helpers.NewBcryptHasher(cfg.BcryptCost),
		Logger: logger,
	})

	email := "demo@taskflow.local"
	password := "password123"
	name := "Demo User"
	res, err := mediator.Send[register.Command, register.Response](ctx, d, register.Command{
		Email:       email,
		Password:    password,
		DisplayName: name,
	})
	if err != nil {
		logger.WithError(err).Fatal("seed aborted")
	}
	if res.IsFailure() {
		if res.Err() == auth.EmailAlreadyInUse {
			fmt.Printf("demo user already exists: email=%s\n", email)
			return
		}
		logger.WithField("errors", res.Errors()).Fatal("failed to seed user")
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", res.Value().UserID, email, name, password)
}
