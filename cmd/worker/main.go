package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeremyjsx/quickfacts/internal/config"
	"github.com/jeremyjsx/quickfacts/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := events.DeclareTopology(ch, events.QueueName); err != nil {
		logger.Error("failed to declare topology", "error", err)
		os.Exit(1)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		logger.Error("failed to set prefetch", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(events.QueueName, "newsletter-worker", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	logger.Info("newsletter worker started", "queue", events.QueueName)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handleDelivery(logger, d)
		}
	}
}

func handleDelivery(logger *slog.Logger, d amqp.Delivery) {
	e, err := events.Decode(d.Body)
	if err != nil {
		logger.Error("invalid event body", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypePostPublished {
		logger.Debug("ignoring event type", "type", e.Type)
		_ = d.Ack(false)
		return
	}

	attrs := []any{
		"post_id", e.Payload.PostID,
		"title", e.Payload.Title,
		"source", e.Payload.Source,
		"published_at", e.Payload.PublishedAt,
	}
	if e.Payload.Category != nil {
		attrs = append(attrs, "category", *e.Payload.Category)
	}
	logger.Info("post published event received", attrs...)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
