// Package queue wraps the inbound health-event queue. Only the receive and
// delete primitives are exposed; visibility-timeout semantics stay with the
// transport.
package queue

import (
	"context"
	"fmt"
	"log"

	"opentrainer/plan-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Message is one raw, undecoded queue message. ReceiptHandle is the
// acknowledgment token passed back to Delete.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Client defines the queue operations the poll loop depends on.
type Client interface {
	// Receive long-polls the queue and returns up to the configured batch of
	// messages. Unacknowledged messages become visible again after the
	// configured visibility timeout.
	Receive(ctx context.Context) ([]Message, error)

	// Delete acknowledges a message so it will not be redelivered.
	Delete(ctx context.Context, receiptHandle string) error
}

// NewRawClient creates the underlying SQS client, honoring a custom endpoint
// for localstack-style deployments. Shared by the health-queue consumer and
// the notification publisher.
func NewRawClient(cfg config.SQSConfig) (*sqs.Client, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for SQS: %v", err)
		return nil, err
	}

	return sqs.NewFromConfig(awsSDKConfig), nil
}

// sqsQueue implements Client against an SQS queue.
type sqsQueue struct {
	client            *sqs.Client
	queueURL          string
	maxMessages       int32
	waitTimeSeconds   int32
	visibilityTimeout int32
}

// NewSQSQueue wraps an SQS client as the health-event queue consumer.
func NewSQSQueue(client *sqs.Client, cfg config.SQSConfig) Client {
	return &sqsQueue{
		client:            client,
		queueURL:          cfg.HealthQueueURL,
		maxMessages:       cfg.MaxMessages,
		waitTimeSeconds:   cfg.WaitTimeSeconds,
		visibilityTimeout: cfg.VisibilityTimeoutSeconds,
	}
}

func (q *sqsQueue) Receive(ctx context.Context) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: q.maxMessages,
		WaitTimeSeconds:     q.waitTimeSeconds, // Long polling
		VisibilityTimeout:   q.visibilityTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("receive from health queue: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

func (q *sqsQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete from health queue: %w", err)
	}
	return nil
}
