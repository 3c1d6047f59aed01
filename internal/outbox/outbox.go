// Package outbox publishes domain events to RabbitMQ for downstream
// consumers. Publishing is best-effort: errors are logged and returned, and
// callers are expected to ignore them rather than fail the main request.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Emitter is the narrow surface services depend on.
type Emitter interface {
	Emit(ctx context.Context, name string, payload any) error
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// New connects to the broker and declares a durable queue for domain events.
func New(url, queue string, logger *slog.Logger) (*Client, error) {
	const op = "outbox.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
		logger:  logger,
	}, nil
}

type envelope struct {
	Name    string `json:"name"`
	TsUnix  int64  `json:"ts_unix"`
	Payload any    `json:"payload"`
}

// Emit publishes one persistent message onto the outbox queue.
func (c *Client) Emit(ctx context.Context, name string, payload any) error {
	const op = "outbox.Emit"

	body, err := json.Marshal(envelope{
		Name:    name,
		TsUnix:  time.Now().Unix(),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	err = c.channel.PublishWithContext(ctx,
		"",      // default exchange
		c.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		c.logger.Warn("outbox publish failed", "event", name, "error", err)
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
