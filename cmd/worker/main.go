package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/taskflow-auth/config"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/messaging"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/search"
	"github.com/oksasatya/taskflow-auth/internal/worker"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
	"github.com/oksasatya/taskflow-auth/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQPrefetch, logger)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer consumer.Close()

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp publisher")
	}
	defer pub.Close()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Fatal("elasticsearch client")
	}
	indexer := search.NewUserIndexer(es, cfg.ESUsersIndex)
	if err := indexer.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Fatal("ensure users index")
	}

	welcome := messaging.NewEmailQueue(pub, cfg.RabbitMQEmailQueue, cfg.Brand(), cfg.MailSendEnabled)
	userEvents := worker.NewUserEventProcessor(indexer, welcome, logger.WithField("processor", "user_events"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx, cfg.RabbitMQUserEventsQueue, userEvents.Process)
	})

	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; email queue not consumed")
	case cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "":
		logger.Warn("Mailgun not configured; email queue not consumed")
	default:
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
		emails := worker.NewEmailProcessor(mg, logger.WithField("processor", "emails"))
		g.Go(func() error {
			return consumer.Consume(gctx, cfg.RabbitMQEmailQueue, emails.Process)
		})
	}

	logger.WithFields(logrus.Fields{
		"user_events_queue": cfg.RabbitMQUserEventsQueue,
		"email_queue":       cfg.RabbitMQEmailQueue,
	}).Info("worker started")

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("worker stopped")
	}
	logger.Info("worker exited properly")
}
