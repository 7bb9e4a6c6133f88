// Package notifier dispatches user-facing notification events. Delivery is
// fire-and-forget: failures are logged here and never surfaced back to the
// orchestrator, so plan state correctness does not depend on delivery.
package notifier

import (
	"context"
	"encoding/json"
	"log"

	"opentrainer/plan-service/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Notifier dispatches an event describing a processing outcome.
type Notifier interface {
	Send(ctx context.Context, event domain.NotificationEvent)
}

// sqsNotifier publishes notification events to a dedicated SQS queue.
type sqsNotifier struct {
	client   *sqs.Client
	queueURL string
	logger   *log.Logger
}

// NewSQSNotifier creates a notifier publishing to the given queue URL.
func NewSQSNotifier(client *sqs.Client, queueURL string, logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &sqsNotifier{client: client, queueURL: queueURL, logger: logger}
}

func (n *sqsNotifier) Send(ctx context.Context, event domain.NotificationEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Printf("ERROR: Failed to marshal notification for user %s type %s: %v",
			event.UserID, event.NotificationType, err)
		return
	}

	out, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(n.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: buildMessageAttributes(event),
	})
	if err != nil {
		n.logger.Printf("ERROR: Failed to send notification for user %s type %s: %v",
			event.UserID, event.NotificationType, err)
		return
	}

	n.logger.Printf("INFO: Sent notification. MessageId: %s, UserId: %s, Type: %s",
		aws.ToString(out.MessageId), event.UserID, event.NotificationType)
}

// buildMessageAttributes mirrors the attributes downstream consumers filter on.
func buildMessageAttributes(event domain.NotificationEvent) map[string]types.MessageAttributeValue {
	return map[string]types.MessageAttributeValue{
		"userId": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.UserID),
		},
		"notificationType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.NotificationType),
		},
		"priority": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.Priority),
		},
	}
}
