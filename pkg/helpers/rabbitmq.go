package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RabbitPublisher publishes JSON messages to durable queues through the default exchange.
type RabbitPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

// NewRabbitPublisher dials url and declares every queue it will publish to.
func NewRabbitPublisher(url string, queues ...string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	for _, q := range queues {
		if err := declareQueue(ch, q); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}
	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes a persistent JSON message to queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, queue string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// ErrDrop marks a message that will never be processed; it is rejected without requeue.
var ErrDrop = errors.New("drop message")

// DeliveryHandler processes one message body.
type DeliveryHandler func(ctx context.Context, body []byte) error

type RabbitConsumer struct {
	conn     *amqp.Connection
	prefetch int
	logger   logrus.FieldLogger
}

func NewRabbitConsumer(url string, prefetch int, logger logrus.FieldLogger) (*RabbitConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &RabbitConsumer{conn: conn, prefetch: prefetch, logger: logger}, nil
}

func (c *RabbitConsumer) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume blocks handling messages from queue until ctx is done or the broker
// closes the channel. Each call uses its own channel.
func (c *RabbitConsumer) Consume(ctx context.Context, queue string, handle DeliveryHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	log := c.logger.WithField("queue", queue)
	log.Info("consumer listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consume %s: delivery channel closed", queue)
			}
			settle(ctx, msg, handle, log)
		}
	}
}

// settle acks on success, drops on ErrDrop or a second failure, and requeues
// the first transient failure.
func settle(ctx context.Context, msg amqp.Delivery, handle DeliveryHandler, log logrus.FieldLogger) {
	err := handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrDrop):
		log.WithError(err).Warn("dropping message")
		_ = msg.Nack(false, false)
	case msg.Redelivered:
		log.WithError(err).Error("message failed twice, dropping")
		_ = msg.Nack(false, false)
	default:
		log.WithError(err).Warn("message failed, requeueing")
		_ = msg.Nack(false, true)
	}
}
