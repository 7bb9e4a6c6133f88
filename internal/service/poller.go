package service

import (
	"context"
	"log"
	"time"

	"opentrainer/plan-service/internal/codec"
	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/queue"
)

// EventProcessor receives decoded health events from the poll loop.
// A returned error means the triggering message must not be acknowledged.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event domain.HealthEvent) error
}

// Poller is the periodic driver: it receives a batch from the queue, feeds
// each successfully decoded message to the processor, and acknowledges.
// Cycles run serially with a fixed delay between the end of one cycle and
// the start of the next, so they can never overlap.
type Poller struct {
	queue     queue.Client
	processor EventProcessor
	interval  time.Duration
	logger    *log.Logger
}

// PollerOption configures optional behaviour for the Poller.
type PollerOption func(*Poller)

// WithPollerLogger overrides the poller's logger.
func WithPollerLogger(logger *log.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a new Poller.
func NewPoller(q queue.Client, processor EventProcessor, interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		queue:     q,
		processor: processor,
		interval:  interval,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks, executing poll cycles until the context is cancelled. A cycle's
// failure is logged and never crashes the driver.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// pollOnce executes a single poll cycle.
func (p *Poller) pollOnce(ctx context.Context) {
	messages, err := p.queue.Receive(ctx)
	if err != nil {
		p.logger.Printf("ERROR: Error polling messages from health queue: %v", err)
		return
	}

	p.logger.Printf("INFO: Received %d messages from health queue", len(messages))

	for _, message := range messages {
		event, err := codec.Decode([]byte(message.Body))
		if err != nil {
			// Malformed messages can never become valid by redelivery:
			// acknowledge and drop.
			p.logger.Printf("WARN: Failed to decode message, discarding: %v", err)
			p.deleteMessage(ctx, message.ReceiptHandle)
			continue
		}

		if err := p.processor.ProcessEvent(ctx, event); err != nil {
			// Leave the message unacknowledged; it becomes visible again
			// after the visibility timeout and will be redelivered.
			p.logger.Printf("ERROR: Error processing message for user %s: %v", event.UserID, err)
			continue
		}

		p.deleteMessage(ctx, message.ReceiptHandle)
		p.logger.Printf("INFO: Successfully processed message for user: %s", event.UserID)
	}
}

func (p *Poller) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := p.queue.Delete(ctx, receiptHandle); err != nil {
		p.logger.Printf("ERROR: Failed to delete message: %v", err)
	}
}
