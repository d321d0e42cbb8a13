package events

import (
	"context"
	"encoding/json"
	"fmt"

	pkgaws "storefront/pkg/aws"

	"go.uber.org/zap"
)

type SNSPublisher struct {
	client   pkgaws.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client pkgaws.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Event, err)
	}
	if err := p.client.Publish(ctx, p.topicArn, data); err != nil {
		return err
	}
	zap.L().Info("published order event to SNS",
		zap.String("order_id", event.OrderID),
		zap.String("topic_arn", p.topicArn),
	)
	return nil
}

func (p *SNSPublisher) Close() error { return nil }
