// Package service provides the RabbitMQ publisher for change events.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/rental-api/internal/queue"
)

// Publisher sends ChangeEvents to the changes queue. Each call dials its own
// connection; change traffic is low and this keeps the publisher free of
// reconnect state.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish marshals event and publishes it as a persistent message. A zero
// At is filled with the current UTC time.
func (p *Publisher) Publish(ctx context.Context, event q.ChangeEvent) error {
	if event.At == "" {
		event.At = time.Now().UTC().Format(time.RFC3339Nano)
	}
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("rabbitmq: marshal event failed", "err", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		slog.Warn("rabbitmq: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Warn("rabbitmq: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ChangesQueue, // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	); err != nil {
		slog.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",             // default exchange
		q.ChangesQueue, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		pub,
	); err != nil {
		slog.Warn("rabbitmq: publish failed", "err", err)
		return err
	}
	return nil
}
