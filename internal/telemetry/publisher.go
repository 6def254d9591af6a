package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to a durable RabbitMQ queue.  Report returns at
// once; delivery happens on a goroutine bounded by a short timeout and
// failures are only logged.
type Publisher struct {
	url     string
	queue   string
	timeout time.Duration
	log     *slog.Logger

	// dial is replaced in tests.
	dial func(url string, timeout time.Duration) (channel, func() error, error)

	wg sync.WaitGroup
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		url:     url,
		queue:   queue,
		timeout: 5 * time.Second,
		log:     log.With("component", "telemetry"),
		dial:    dialAMQP,
	}
}

// dialAMQP bounds both the TCP connect and the AMQP handshake by timeout.
func dialAMQP(url string, timeout time.Duration) (channel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, conn.Close, nil
}

func (p *Publisher) Report(ctx context.Context, ev Event) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			p.log.Warn("telemetry publish failed", "resource", ev.Resource, "status", ev.Status, "error", err)
		}
	}()
}

// Publish delivers ev synchronously.  The queue is declared on every call
// (idempotent) so a fresh broker needs no provisioning.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, closeConn, err := p.dial(p.url, p.timeout)
	if err != nil {
		return err
	}
	defer func() { _ = closeConn() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Kind,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close waits for in-flight reports.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
