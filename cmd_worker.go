package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"proshop/internal/config"
	"proshop/internal/logger"
	"proshop/internal/metrics"
	"proshop/internal/services"
	"proshop/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var workerQueueFlag string

// proshop worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume order events from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(envFileFlag)
		if err != nil {
			return err
		}
		if cfg.RabbitMQURL == "" {
			return fmt.Errorf("worker: RABBITMQ_URL is not configured")
		}
		log, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
		if err != nil {
			return err
		}
		defer log.Sync()

		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			return err
		}
		defer mq.Close()

		log.Info("worker started", zap.String("queue", workerQueueFlag))
		err = mq.Consume(ctx, workerQueueFlag, "order.*", orderEventHandler(log))
		log.Info("worker stopped")
		return err
	},
}

// orderEventHandler decodes order events and records them. Malformed events are rejected.
func orderEventHandler(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var ev services.OrderEvent
		err := json.Unmarshal(msg.Body, &ev)
		if err == nil && ev.OrderID == "" {
			err = fmt.Errorf("event without order id")
		}
		metrics.EventsConsumed.WithLabelValues(msg.RoutingKey, metrics.Outcome(err)).Inc()
		if err != nil {
			return fmt.Errorf("decode %s: %w", msg.RoutingKey, err)
		}
		log.Info("order event",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("order_id", ev.OrderID),
			zap.String("user_id", ev.UserID),
			zap.Float64("total_price", ev.TotalPrice),
			zap.Time("occurred_at", ev.OccurredAt))
		return nil
	}
}

func init() {
	workerCmd.Flags().StringVarP(&workerQueueFlag, "queue", "q", "proshop.order-events", "queue bound to the order exchange")
}
