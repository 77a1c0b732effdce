package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/craftora/marketplace/internal/dal/interfaces/ioutbox"
	"github.com/craftora/marketplace/internal/dal/rabbitmq"
)

// Worker drains the transactional outbox into RabbitMQ. Order events are
// written to the outbox inside the checkout transaction and published here,
// so a broker outage never fails a checkout.
type Worker struct {
	outboxRepo   ioutbox.Repository
	rabbitClient *rabbitmq.Client
	pollInterval time.Duration
	batchSize    int
	backoffBase  time.Duration
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker tuned from config.
func NewWorker(outboxRepo ioutbox.Repository, rabbitClient *rabbitmq.Client) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	backoffSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if backoffSeconds == 0 {
		backoffSeconds = 30
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		rabbitClient: rabbitClient,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		backoffBase:  time.Duration(backoffSeconds) * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// Start polls the outbox until the context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) drain(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		routingKey := msg.RoutingKey
		if routingKey == "" {
			routingKey = msg.QueueName
		}

		err := w.rabbitClient.Channel().Publish(
			msg.ExchangeName,
			routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Payload,
			},
		)
		if err != nil {
			w.scheduleRetry(ctx, msg.ID, msg.RetryCount, err)

			continue
		}

		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after publish",
				"outbox_id", msg.ID,
				"error", err,
			)

			continue
		}

		slog.Info("Outbox message published", "outbox_id", msg.ID, "routing_key", routingKey)
	}
}

func (w *Worker) scheduleRetry(ctx context.Context, id int64, retryCount int, pubErr error) {
	newRetryCount := retryCount + 1
	backoff := time.Duration(math.Pow(2, float64(newRetryCount))) * w.backoffBase
	nextRetryAt := time.Now().Add(backoff)

	slog.Warn("Failed to publish message from outbox, will retry",
		"outbox_id", id,
		"retry_count", newRetryCount,
		"next_retry", nextRetryAt,
		"error", pubErr,
	)

	if err := w.outboxRepo.UpdateRetry(ctx, id, newRetryCount, pubErr.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", id, "error", err)
	}
}
