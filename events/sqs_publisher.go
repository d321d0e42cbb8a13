package events

import (
	"context"
	"encoding/json"
	"fmt"

	pkgaws "storefront/pkg/aws"

	"go.uber.org/zap"
)

// SQSPublisher queues order events, tagging each message with its event type.
type SQSPublisher struct {
	client   pkgaws.SQSSender
	queueURL string
}

func NewSQSPublisher(client pkgaws.SQSSender, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Event, err)
	}
	if err := p.client.SendMessage(ctx, p.queueURL, data, map[string]string{"event_type": event.Event}); err != nil {
		return err
	}
	zap.L().Info("queued order event on SQS",
		zap.String("order_id", event.OrderID),
		zap.String("queue_url", p.queueURL),
	)
	return nil
}

func (p *SQSPublisher) Close() error { return nil }
