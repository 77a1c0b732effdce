package orderevents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/craftora/marketplace/internal/dal/rabbitmq"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/models/orderevent"
)

// RabbitMQRepository publishes per-order created notifications directly to
// RabbitMQ. It is best effort: seller-facing consumers that miss a message
// catch up from the outbox-driven queue.
type RabbitMQRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewRabbitMQRepository(client *rabbitmq.Client) *RabbitMQRepository {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       "marketplace.order.created",
		Durable:    false,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &RabbitMQRepository{
		client: client,
		queue:  queue,
	}
}

// PublishCreated fans out one event per order with bounded concurrency.
func (r *RabbitMQRepository) PublishCreated(ctx context.Context, orders []order.Order) error {
	publishCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	g, _ := errgroup.WithContext(publishCtx)
	g.SetLimit(3)

	for _, ord := range orders {
		ord := ord
		g.Go(func() error {
			event := orderevent.OrderCreated{
				EventID:    uuid.New().String(),
				OrderID:    ord.ID,
				UserID:     ord.UserID,
				ShopID:     ord.ShopID,
				TotalPrice: ord.TotalPrice,
				CreatedAt:  ord.CreatedAt,
			}

			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}

			return r.client.Channel().Publish(
				"",
				r.queue.Name,
				false,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        payload,
				},
			)
		})
	}

	return g.Wait()
}
