// Package messaging puts account events and email jobs on RabbitMQ.
package messaging

import (
	"context"
	"fmt"

	"github.com/oksasatya/taskflow-auth/internal/application/auth/verifyemail"
	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/pkg/mailer"
	"github.com/oksasatya/taskflow-auth/pkg/mailer/templates"
)

// JSONPublisher is satisfied by *helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, queue string, body any) error
}

// EventPublisher publishes account events to the user events queue.
type EventPublisher struct {
	pub   JSONPublisher
	queue string
}

func NewEventPublisher(pub JSONPublisher, queue string) *EventPublisher {
	return &EventPublisher{pub: pub, queue: queue}
}

func (p *EventPublisher) PublishUserRegistered(ctx context.Context, e event.UserRegistered) error {
	if err := p.pub.PublishJSON(ctx, p.queue, e); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// EmailQueue enqueues templated emails for the worker. When disabled, jobs
// are discarded.
type EmailQueue struct {
	pub     JSONPublisher
	queue   string
	brand   templates.Brand
	enabled bool
}

func NewEmailQueue(pub JSONPublisher, queue string, brand templates.Brand, enabled bool) *EmailQueue {
	return &EmailQueue{pub: pub, queue: queue, brand: brand, enabled: enabled}
}

func (q *EmailQueue) SendVerification(ctx context.Context, msg verifyemail.Message) error {
	return q.enqueue(ctx, mailer.EmailJob{
		To:       msg.To,
		Template: templates.VerifyEmail,
		Data:     templates.NewVerifyEmailData(q.brand, msg.DisplayName, msg.To, msg.Link, msg.ExpiresAt),
	})
}

func (q *EmailQueue) SendWelcome(ctx context.Context, to, displayName string) error {
	return q.enqueue(ctx, mailer.EmailJob{
		To:       to,
		Template: templates.Welcome,
		Data:     templates.NewWelcomeData(q.brand, displayName, to),
	})
}

func (q *EmailQueue) enqueue(ctx context.Context, job mailer.EmailJob) error {
	if !q.enabled {
		return nil
	}
	if err := q.pub.PublishJSON(ctx, q.queue, job); err != nil {
		return fmt.Errorf("enqueue %s email: %w", job.Template, err)
	}
	return nil
}
