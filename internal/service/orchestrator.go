package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/genai"
	"opentrainer/plan-service/internal/notifier"
	"opentrainer/plan-service/internal/repository"
	"opentrainer/plan-service/internal/storage"
)

// Time allowed for the terminal record write and notification after a
// generation attempt finishes, independent of the generation budget.
const reconcileTimeout = 30 * time.Second

// Orchestrator drives the plan-generation state machine for each health
// event: a synchronous provisional PROCESSING write, a detached generation
// call, and a terminal GENERATED or ERROR reconciliation.
type Orchestrator struct {
	repo       repository.PlanRepository
	generator  genai.Client
	notifier   notifier.Notifier
	archive    storage.PlanArchive // optional; nil disables plan-document archiving
	logger     *log.Logger
	genTimeout time.Duration

	// Tracks detached generation continuations so shutdown can drain them.
	inflight sync.WaitGroup
}

// OrchestratorOption configures optional behaviour for the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger overrides the orchestrator's logger.
func WithLogger(logger *log.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithGenerationTimeout bounds a single detached generation call, retries
// included.
func WithGenerationTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.genTimeout = d
	}
}

// NewOrchestrator creates a new Orchestrator. The archive may be nil.
func NewOrchestrator(
	repo repository.PlanRepository,
	generator genai.Client,
	notif notifier.Notifier,
	archive storage.PlanArchive,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		repo:       repo,
		generator:  generator,
		notifier:   notif,
		archive:    archive,
		logger:     log.Default(),
		genTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessEvent is the per-message entry point. It persists the provisional
// PROCESSING record synchronously, dispatches generation on a detached
// goroutine, and returns. A returned error means the provisional write
// failed and the triggering message must not be acknowledged; once
// ProcessEvent returns nil the message is safe to delete regardless of the
// generation outcome.
func (o *Orchestrator) ProcessEvent(ctx context.Context, event domain.HealthEvent) error {
	o.logger.Printf("INFO: Processing health event for user: %s", event.UserID)

	provisional := domain.NewProcessingRecord(event, domain.ProvisionalPlanID(time.Now()))
	if err := o.repo.Put(ctx, &provisional); err != nil {
		return fmt.Errorf("write provisional record for user %s: %w", event.UserID, err)
	}

	prompt := genai.BuildPrompt(event.UserID, o.healthDataString(event))

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		// Detached from the poll cycle's context on purpose: the triggering
		// message is acknowledged once ProcessEvent returns, and generation
		// runs to completion or to exhaustion of its retry budget.
		gctx, cancel := context.WithTimeout(context.Background(), o.genTimeout)
		defer cancel()

		plan, err := o.generator.Generate(gctx, prompt, event.UserID)

		// Reconciliation gets its own context: when generation fails by
		// exhausting its timeout, gctx is already done and would doom the
		// ERROR write and the failure notification.
		rctx, rcancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer rcancel()

		if err != nil {
			o.handleFailure(rctx, event.UserID, provisional.PlanID, err)
			return
		}
		o.handleGenerated(rctx, plan, provisional.PlanID)
	}()

	return nil
}

// Wait blocks until all detached generation continuations have completed.
// Called during graceful shutdown.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// handleGenerated reconciles a successful generation: archive the full plan
// document (best-effort), persist the terminal GENERATED record, notify.
// Any failure is redirected into the failure path rather than propagating.
func (o *Orchestrator) handleGenerated(ctx context.Context, plan *domain.GeneratedPlan, provisionalPlanID string) {
	o.logger.Printf("INFO: Training plan generated successfully for user: %s", plan.UserID)

	record := domain.NewGeneratedRecord(plan)
	if o.archive != nil {
		objectKey, err := o.archive.Store(ctx, plan)
		if err != nil {
			// Archiving is best-effort, like notification delivery. The
			// metadata record stays authoritative.
			o.logger.Printf("WARN: Failed to archive plan document for user %s plan %s: %v",
				plan.UserID, plan.PlanID, err)
		} else {
			record.Metadata[domain.MetaScheduleObjectKey] = objectKey
		}
	}

	if err := o.repo.Put(ctx, &record); err != nil {
		o.handleFailure(ctx, plan.UserID, provisionalPlanID,
			fmt.Errorf("write generated record: %w", err))
		return
	}

	o.notifier.Send(ctx, domain.NewPlanGeneratedNotification(plan.UserID, plan.PlanID, plan.Title))

	o.logger.Printf("INFO: Successfully processed training plan for user: %s with plan ID: %s",
		plan.UserID, plan.PlanID)
}

// handleFailure transitions the provisional record to ERROR and sends the
// failure notification. It targets the exact provisional key captured at
// dispatch time; if that record is gone or already terminal it falls back to
// the newest PROCESSING record for the user, and otherwise is a logged no-op.
// Nothing here propagates: there is no further failure path to redirect to.
func (o *Orchestrator) handleFailure(ctx context.Context, userID, provisionalPlanID string, genErr error) {
	o.logger.Printf("ERROR: Training plan generation failed for user %s: %v", userID, genErr)

	record := o.findProcessingRecord(ctx, userID, provisionalPlanID)
	if record == nil {
		o.logger.Printf("WARN: No PROCESSING record found for user %s, skipping status update", userID)
	} else {
		record.Status = domain.PlanStatusError
		if err := o.repo.Put(ctx, record); err != nil {
			o.logger.Printf("ERROR: Failed to mark record ERROR for user %s plan %s: %v",
				userID, record.PlanID, err)
		}
	}

	o.notifier.Send(ctx, domain.NewPlanErrorNotification(userID, genErr.Error()))
}

// findProcessingRecord resolves the record the failure path should
// transition: the captured provisional key when still PROCESSING, else the
// most recent PROCESSING record in the user's partition.
func (o *Orchestrator) findProcessingRecord(ctx context.Context, userID, provisionalPlanID string) *domain.PlanRecord {
	record, err := o.repo.GetByKey(ctx, userID, provisionalPlanID)
	if err == nil && record.Status == domain.PlanStatusProcessing {
		return record
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		o.logger.Printf("WARN: Failed to load provisional record for user %s plan %s: %v",
			userID, provisionalPlanID, err)
	}

	records, err := o.repo.QueryByUserID(ctx, userID)
	if err != nil {
		o.logger.Printf("WARN: Failed to query records for user %s: %v", userID, err)
		return nil
	}
	for i := range records {
		if records[i].Status == domain.PlanStatusProcessing {
			return &records[i]
		}
	}
	return nil
}

// healthDataString serializes the event for the prompt, falling back to the
// fixed-format summary when structured serialization fails.
func (o *Orchestrator) healthDataString(event domain.HealthEvent) string {
	data, err := json.Marshal(event)
	if err != nil {
		o.logger.Printf("WARN: Failed to serialize health event for user %s, using fallback: %v",
			event.UserID, err)
		return genai.FormatHealthSummary(event)
	}
	return string(data)
}
