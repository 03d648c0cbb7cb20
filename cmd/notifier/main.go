package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"busline/internal/notifications"
	"busline/pkg/config"
	"busline/pkg/kafka"
	kafka_config "busline/pkg/kafka/config"
)

const (
	ServiceName   = "busline-notifier"
	consumerGroup = "busline-notifier"
	dlqSuffix     = ".dlq"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	notifier := notifications.NewNotifier(cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaBookingsTopic,
		consumerGroup,
		cfg.KafkaBookingsTopic+dlqSuffix,
		notifier.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier consuming booking events",
		"topic", cfg.KafkaBookingsTopic,
		"group", consumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
