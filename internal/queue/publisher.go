package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends reservation events to RabbitMQ.  It dials per publish,
// which keeps it free of connection state at the cost of a handshake per
// event.
type Publisher struct {
	URL   string
	Queue string
	// DialTimeout bounds the TCP connect and AMQP handshake.  A sooner
	// context deadline wins.
	DialTimeout time.Duration
}

const defaultDialTimeout = 5 * time.Second

// NewPublisher returns a Publisher for the reservation events queue.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Queue: ReservationsQueue, DialTimeout: defaultDialTimeout}
}

func (p *Publisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return timeout
}

// Publish delivers one event as a persistent JSON message through the
// default exchange.  The queue is declared first so that publishing
// works against a fresh broker.
func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) error {
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return fmt.Errorf("rabbitmq: dial failed: %w", context.DeadlineExceeded)
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		MessageId:    event.ReservationID + ":" + event.OccurredAt,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}
