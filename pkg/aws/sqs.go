package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSSender sends raw message bodies to an SQS queue.
type SQSSender interface {
	SendMessage(ctx context.Context, queueURL string, body []byte, attrs map[string]string) error
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSClient struct {
	client sqsAPI
}

func NewSQSClient(cfg sdkaws.Config) *SQSClient {
	return &SQSClient{client: sqs.NewFromConfig(cfg)}
}

// SendMessage sends a single message to the queue. Attributes are sent as
// String message attributes.
func (c *SQSClient) SendMessage(ctx context.Context, queueURL string, body []byte, attrs map[string]string) error {
	if queueURL == "" {
		return fmt.Errorf("empty queueURL")
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(queueURL),
		MessageBody: sdkaws.String(string(body)),
	}
	if len(attrs) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(v),
			}
		}
	}

	out, err := c.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", queueURL, err)
	}
	zap.L().Debug("sqs message sent", zap.String("queue_url", queueURL), zap.String("message_id", sdkaws.ToString(out.MessageId)))
	return nil
}
