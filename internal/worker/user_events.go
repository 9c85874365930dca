package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/pkg/helpers"
)

// UserIndexer is satisfied by *search.UserIndexer.
type UserIndexer interface {
	IndexUser(ctx context.Context, e event.UserRegistered) error
}

// WelcomeMailer is satisfied by *messaging.EmailQueue.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, displayName string) error
}

type UserEventProcessor struct {
	indexer UserIndexer
	welcome WelcomeMailer
	logger  logrus.FieldLogger
}

// NewUserEventProcessor wires the processor. indexer and welcome may be nil.
func NewUserEventProcessor(indexer UserIndexer, welcome WelcomeMailer, logger logrus.FieldLogger) *UserEventProcessor {
	return &UserEventProcessor{indexer: indexer, welcome: welcome, logger: logger}
}

// Process handles one account event. Indexing is idempotent, so a failure
// there is retried; the welcome email is queued only after indexing succeeds.
func (p *UserEventProcessor) Process(ctx context.Context, body []byte) error {
	var e event.UserRegistered
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("decode user event: %v: %w", err, helpers.ErrDrop)
	}
	if e.Type != event.UserRegisteredType {
		p.logger.WithField("type", e.Type).Debug("ignoring user event")
		return nil
	}
	if e.UserID == "" || e.Email == "" {
		return fmt.Errorf("user registered event without user: %w", helpers.ErrDrop)
	}

	if p.indexer != nil {
		if err := p.indexer.IndexUser(ctx, e); err != nil {
			return err
		}
	}
	if p.welcome != nil {
		if err := p.welcome.SendWelcome(ctx, e.Email, e.DisplayName); err != nil {
			return err
		}
	}
	p.logger.WithField("user_id", e.UserID).Info("user registered event processed")
	return nil
}
