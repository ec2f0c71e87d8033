package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string // durable topic exchange every event is published to
}

// NewClient connects to RabbitMQ, opens a channel and declares the exchange.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("RabbitMQ client connected", zap.String("exchange", cfg.Exchange))

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		log:      logger,
	}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the exchange under routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.Debug("published event", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Consume binds a durable queue to the exchange with bindingKey and hands every delivery
// to handler until ctx is cancelled. Deliveries are acked when handler returns nil and
// nacked without requeue otherwise.
func (c *Client) Consume(ctx context.Context, queue, bindingKey string, handler func(amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	q, err := c.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := c.channel.QueueBind(q.Name, bindingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for events", zap.String("queue", q.Name), zap.String("binding", bindingKey))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			HandleDelivery(msg, handler, c.log)
		}
	}
}

// Acknowledger is the part of amqp.Delivery that HandleDelivery needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleDelivery runs handler on msg and acknowledges the outcome.
func HandleDelivery(msg amqp.Delivery, handler func(amqp.Delivery) error, logger *zap.Logger) {
	settle(msg, msg.DeliveryTag, msg.RoutingKey, func() error { return handler(msg) }, logger)
}

func settle(ack Acknowledger, tag uint64, routingKey string, run func() error, logger *zap.Logger) {
	if err := run(); err != nil {
		logger.Warn("failed to process message",
			zap.Uint64("delivery_tag", tag),
			zap.String("routing_key", routingKey),
			zap.Error(err))
		// unprocessable messages are dropped instead of looping forever
		if nackErr := ack.Nack(false, false); nackErr != nil {
			logger.Error("failed to nack message", zap.Uint64("delivery_tag", tag), zap.Error(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		logger.Error("failed to ack message", zap.Uint64("delivery_tag", tag), zap.Error(ackErr))
	}
}
