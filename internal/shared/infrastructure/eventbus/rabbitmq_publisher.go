package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange performance events are published to.
const DefaultExchange = "perfboard.events"

// RabbitMQConfig configures the broker connection.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	AppID    string
}

var (
	// ErrPublisherClosed is returned once the channel or connection is gone.
	ErrPublisherClosed = errors.New("publisher channel is closed")
	// ErrPublishNacked is returned when the broker refuses a message.
	ErrPublishNacked = errors.New("broker did not confirm message")
)

// RabbitMQPublisher publishes persistent messages to a topic exchange and
// waits for the broker's confirm before reporting success, so an outbox row
// is only marked published once RabbitMQ owns the message.
type RabbitMQPublisher struct {
	exchange string
	appID    string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  chan *amqp.Error
}

// NewRabbitMQPublisher dials the broker, declares a durable topic exchange
// and puts the channel into confirm mode.
func NewRabbitMQPublisher(cfg RabbitMQConfig, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.AppID == "" {
		cfg.AppID = "perfboard"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := openChannel(conn, cfg.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	p := &RabbitMQPublisher{
		exchange: cfg.Exchange,
		appID:    cfg.AppID,
		logger:   logger.With("exchange", cfg.Exchange),
		conn:     conn,
		channel:  ch,
		closed:   ch.NotifyClose(make(chan *amqp.Error, 1)),
	}
	p.logger.Info("rabbitmq publisher connected")
	return p, nil
}

func openChannel(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	// durable, not auto-deleted, not internal, wait for the reply
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return ch, nil
}

// Publish sends one message and blocks until the broker acks or nacks it.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.usable(); err != nil {
		return err
	}

	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			AppId:        p.appID,
			Type:         routingKey,
			Body:         payload,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm for %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("%s: %w", routingKey, ErrPublishNacked)
	}

	p.logger.Debug("event published", "routing_key", routingKey, "size", len(payload))
	return nil
}

// usable must be called with p.mu held.
func (p *RabbitMQPublisher) usable() error {
	select {
	case amqpErr, ok := <-p.closed:
		if ok && amqpErr != nil {
			p.logger.Warn("rabbitmq channel closed by broker", "error", amqpErr)
		}
		p.channel = nil
	default:
	}
	if p.channel == nil || p.channel.IsClosed() {
		return ErrPublisherClosed
	}
	return nil
}

// Close shuts the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil && !p.channel.IsClosed() {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	p.channel, p.conn = nil, nil
	p.logger.Info("rabbitmq publisher closed")
	return errors.Join(errs...)
}
