package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultFavoritesQueue is the durable queue favorite events are routed to.
const DefaultFavoritesQueue = "favorite.marked"

// Publisher publishes domain events to RabbitMQ.  Each publish dials the
// broker, declares the queue and sends one persistent message.  Errors are
// logged and returned so the caller can choose to ignore them.
type Publisher struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queueName string, logger *zap.Logger) *Publisher {
	if queueName == "" {
		queueName = DefaultFavoritesQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{url: url, queue: queueName, logger: logger}
}

// PublishFavoriteMarked sends ev to the favorites queue.
func (p *Publisher) PublishFavoriteMarked(ctx context.Context, ev FavoriteMarkedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.logger.Warn("rabbitmq: queue declare failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		p.logger.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
