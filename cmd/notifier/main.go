package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"projecttracker/internal/mqhandler"
	"projecttracker/internal/notify"
	"projecttracker/pkg/config"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/mq"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/base.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notifier worker...",
		zap.String("mq_url", cfg.MQ.URL),
	)

	eventTypes := []string{
		notify.EventTaskCreated,
		notify.EventTaskDeleted,
		notify.EventTaskStatusChanged,
		notify.EventDeliverableDeleted,
		notify.EventDeliverableStatusChanged,
		notify.EventPhaseDeleted,
		notify.EventPhaseStatusChanged,
		notify.EventPermissionsAssigned,
	}

	consumers := make([]*mq.Consumer, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		queueName := eventType + ".q"

		log.Info("Initializing MQ consumer...",
			zap.String("queue", queueName),
			zap.String("routing_key", eventType),
		)
		consumer, err := mq.NewConsumer(cfg.MQ.URL, queueName, eventType, log)
		if err != nil {
			log.Fatal("Failed to init consumer",
				zap.String("routing_key", eventType),
				zap.Error(err),
			)
		}
		consumer.SetHandler(mqhandler.NewEventHandler(eventType, log).Handle)

		go func(rk string, c *mq.Consumer) {
			log.Info("Starting consumer...", zap.String("routing_key", rk))
			if err := c.StartConsuming(); err != nil {
				log.Fatal("Consumer failed",
					zap.String("routing_key", rk),
					zap.Error(err),
				)
			}
		}(eventType, consumer)

		consumers = append(consumers, consumer)
	}

	log.Info("notifier worker is fully initialized and running",
		zap.Int("consumers", len(consumers)),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier worker gracefully...")
	for _, c := range consumers {
		c.Close()
	}
	log.Info("notifier worker shutdown complete")
}
