// Package queue publishes reservation lifecycle events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"hotel-reservations/models"
)

const (
	// DefaultQueue is the durable queue reservation events are routed to.
	DefaultQueue = "reservation.events"
	// DefaultDialTimeout bounds the connect, since publishing runs on the
	// request path after commit.
	DefaultDialTimeout = 2 * time.Second
)

// AMQPPublisher dials the broker for each publish. Reservation writes are
// infrequent enough that a long-lived channel is not worth the reconnect logic.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
	Log         *zap.Logger
}

func NewAMQPPublisher(url, queue string, log *zap.Logger) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{URL: url, Queue: queue, DialTimeout: DefaultDialTimeout, Log: log}
}

// Publish sends ev as a persistent JSON message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev models.ReservationEvent) error {
	msg, err := buildPublishing(ev, time.Now())
	if err != nil {
		return err
	}

	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare %s: %w", p.Queue, err)
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.Log.Debug("reservation event published",
		zap.String("queue", p.Queue),
		zap.String("event_id", ev.EventID),
		zap.String("type", ev.Type),
	)
	return nil
}

func buildPublishing(ev models.ReservationEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", ev.EventID, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
