package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanmng/pa-intake-be/internal/api/model"
	"github.com/tuanmng/pa-intake-be/shared/rabbitmq"
)

// Publisher pushes job descriptors onto the durable document queue.
// Delivery is at-least-once; deduplication belongs to the consumer.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// PublishJob serializes the descriptor to JSON and publishes it with
// persistent delivery and retry.
func (p *Publisher) PublishJob(ctx context.Context, desc model.JobDescriptor) error {
	body, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal job descriptor: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job descriptor: %w", err)
	}

	p.logger.Info("Enqueued document job",
		slog.String("job_id", desc.JobID),
		slog.String("request_id", desc.RequestID),
	)

	return nil
}
