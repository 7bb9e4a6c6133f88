package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/queue"

	"github.com/stretchr/testify/require"
)

type stubQueue struct {
	mu          sync.Mutex
	batches     [][]queue.Message
	receiveErr  error
	receives    int
	deleted     []string
	deleteErr   error
	deleteCalls int
}

func (q *stubQueue) Receive(context.Context) ([]queue.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receives++
	if q.receiveErr != nil {
		return nil, q.receiveErr
	}
	if len(q.batches) == 0 {
		return nil, nil
	}
	batch := q.batches[0]
	q.batches = q.batches[1:]
	return batch, nil
}

func (q *stubQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleteCalls++
	if q.deleteErr != nil {
		return q.deleteErr
	}
	q.deleted = append(q.deleted, receiptHandle)
	return nil
}

type stubProcessor struct {
	mu     sync.Mutex
	events []domain.HealthEvent
	err    error
}

func (p *stubProcessor) ProcessEvent(_ context.Context, event domain.HealthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

const pollerValidBody = `{"user_id": "user123", "goals": ["weight_loss"], "current_fitness_level": "intermediate"}`

func TestPollerProcessesAndAcknowledges(t *testing.T) {
	q := &stubQueue{batches: [][]queue.Message{{
		{Body: pollerValidBody, ReceiptHandle: "rh-1"},
	}}}
	proc := &stubProcessor{}
	p := NewPoller(q, proc, 0, WithPollerLogger(quietLogger(t)))

	p.pollOnce(context.Background())

	require.Len(t, proc.events, 1)
	require.Equal(t, "user123", proc.events[0].UserID)
	require.Equal(t, []string{"rh-1"}, q.deleted)
}

func TestPollerDiscardsMalformedMessages(t *testing.T) {
	q := &stubQueue{batches: [][]queue.Message{{
		{Body: "not json", ReceiptHandle: "rh-bad"},
		{Body: pollerValidBody, ReceiptHandle: "rh-good"},
	}}}
	proc := &stubProcessor{}
	p := NewPoller(q, proc, 0, WithPollerLogger(quietLogger(t)))

	p.pollOnce(context.Background())

	// The malformed message is acknowledged without reaching the processor;
	// the valid one is processed and acknowledged.
	require.Len(t, proc.events, 1)
	require.Equal(t, []string{"rh-bad", "rh-good"}, q.deleted)
}

func TestPollerSkipsAcknowledgeOnProcessError(t *testing.T) {
	q := &stubQueue{batches: [][]queue.Message{{
		{Body: pollerValidBody, ReceiptHandle: "rh-1"},
	}}}
	proc := &stubProcessor{err: errors.New("store unavailable")}
	p := NewPoller(q, proc, 0, WithPollerLogger(quietLogger(t)))

	p.pollOnce(context.Background())

	// Message stays in the queue; it becomes visible again after the
	// visibility timeout.
	require.Len(t, proc.events, 1)
	require.Empty(t, q.deleted)
}

func TestPollerEmptyBatch(t *testing.T) {
	q := &stubQueue{}
	proc := &stubProcessor{}
	p := NewPoller(q, proc, 0, WithPollerLogger(quietLogger(t)))

	p.pollOnce(context.Background())

	require.Equal(t, 1, q.receives)
	require.Empty(t, proc.events)
	require.Zero(t, q.deleteCalls)
}

func TestPollerSurvivesReceiveError(t *testing.T) {
	q := &stubQueue{receiveErr: errors.New("network down")}
	proc := &stubProcessor{}
	p := NewPoller(q, proc, 0, WithPollerLogger(quietLogger(t)))

	require.NotPanics(t, func() { p.pollOnce(context.Background()) })
	require.Empty(t, proc.events)
}

func TestPollerRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &stubQueue{}
	p := NewPoller(q, &stubProcessor{}, 0, WithPollerLogger(quietLogger(t)))

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
