package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/Harin-6044/Resume-Shortlister/internal/config"
	"github.com/Harin-6044/Resume-Shortlister/internal/models"
)

// SessionEvent is broadcast whenever a screening session changes state.
type SessionEvent struct {
	SessionID string               `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
	Message   string               `json:"message,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

type EventPublisher interface {
	PublishSessionUpdate(ctx context.Context, event SessionEvent) error
	Close() error
}

// NewEventPublisher connects to RabbitMQ, or returns a publisher that drops events
// when no URL is configured.
func NewEventPublisher(cfg config.EventsConfig) (EventPublisher, error) {
	if cfg.RabbitMQURL == "" {
		log.Println("ℹ️  RABBITMQ_URL not set, session events are disabled")
		return NoopEventPublisher{}, nil
	}
	return NewAMQPEventPublisher(cfg.RabbitMQURL, cfg.Exchange)
}

type amqpEventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
}

func NewAMQPEventPublisher(url, exchange string) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Printf("✅ Publishing session events to exchange %s\n", exchange)

	return &amqpEventPublisher{
		conn:     conn,
		exchange: exchange,
	}, nil
}

func (p *amqpEventPublisher) PublishSessionUpdate(_ context.Context, event SessionEvent) error {
	body, routingKey, err := encodeSessionEvent(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish session update: %w", err)
	}
	return nil
}

func (p *amqpEventPublisher) Close() error {
	return p.conn.Close()
}

func encodeSessionEvent(event SessionEvent) ([]byte, string, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode session event: %w", err)
	}
	return body, fmt.Sprintf("session.%s", event.SessionID), nil
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishSessionUpdate(context.Context, SessionEvent) error { return nil }

func (NoopEventPublisher) Close() error { return nil }
