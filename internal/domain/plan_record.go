// internal/domain/plan_record.go
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// PlanStatus type for the per-record state machine.
type PlanStatus string

// Valid statuses. GENERATED and ERROR are terminal; no further transitions occur.
const (
	PlanStatusProcessing PlanStatus = "PROCESSING"
	PlanStatusGenerated  PlanStatus = "GENERATED"
	PlanStatusError      PlanStatus = "ERROR"
)

// Metadata keys used on PlanRecord.
const (
	MetaFitnessLevel              = "fitness_level"
	MetaGoalsCount                = "goals_count"
	MetaWeeklyScheduleCount       = "weekly_schedule_count"
	MetaSafetyConsiderationsCount = "safety_considerations_count"
	MetaHasNutritionGuidelines    = "has_nutrition_guidelines"
	MetaScheduleObjectKey         = "schedule_object_key"
)

// PlanRecord is the persisted state for a (userId, planId) pair.
// UserID is the partition key, PlanID the sort key: either a synthetic
// "PROCESSING-<timestamp>" token for the provisional record or the
// generation service's id for the final record.
type PlanRecord struct {
	UserID          string            `json:"userId" bson:"userId" dynamodbav:"userId"`
	PlanID          string            `json:"planId" bson:"planId" dynamodbav:"planId"`
	Title           string            `json:"title" bson:"title" dynamodbav:"title"`
	Description     string            `json:"description,omitempty" bson:"description,omitempty" dynamodbav:"description,omitempty"`
	DurationWeeks   *int              `json:"durationWeeks,omitempty" bson:"durationWeeks,omitempty" dynamodbav:"durationWeeks,omitempty"`
	DifficultyLevel string            `json:"difficultyLevel,omitempty" bson:"difficultyLevel,omitempty" dynamodbav:"difficultyLevel,omitempty"`
	Status          PlanStatus        `json:"status" bson:"status" dynamodbav:"status"`
	CreatedAt       time.Time         `json:"createdAt" bson:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt" bson:"updatedAt" dynamodbav:"updatedAt"`
	Metadata        map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// IsTerminal reports whether the record has reached a terminal status.
func (r *PlanRecord) IsTerminal() bool {
	return r.Status == PlanStatusGenerated || r.Status == PlanStatusError
}

// ProvisionalPlanID builds the synthetic sort-key token for a provisional
// record. Nanosecond resolution keeps concurrently-processing records for the
// same user from colliding under normal clock resolution.
func ProvisionalPlanID(now time.Time) string {
	return fmt.Sprintf("PROCESSING-%d", now.UnixNano())
}

// NewProcessingRecord builds the provisional record written synchronously
// before generation begins.
func NewProcessingRecord(event HealthEvent, planID string) PlanRecord {
	return PlanRecord{
		UserID:      event.UserID,
		PlanID:      planID,
		Title:       "Training Plan (Processing)",
		Description: "Training plan is being generated based on your health data",
		Status:      PlanStatusProcessing,
		Metadata: map[string]string{
			MetaFitnessLevel: event.CurrentFitnessLevel,
			MetaGoalsCount:   strconv.Itoa(len(event.Goals)),
		},
	}
}

// NewGeneratedRecord folds a GeneratedPlan into a terminal GENERATED record.
func NewGeneratedRecord(plan *GeneratedPlan) PlanRecord {
	duration := plan.DurationWeeks
	metadata := map[string]string{
		MetaWeeklyScheduleCount:       strconv.Itoa(len(plan.WeeklySchedule)),
		MetaSafetyConsiderationsCount: strconv.Itoa(len(plan.SafetyConsiderations)),
	}
	if plan.NutritionGuidelines != "" {
		metadata[MetaHasNutritionGuidelines] = "true"
	}
	return PlanRecord{
		UserID:          plan.UserID,
		PlanID:          plan.PlanID,
		Title:           plan.Title,
		Description:     plan.Description,
		DurationWeeks:   &duration,
		DifficultyLevel: plan.DifficultyLevel,
		Status:          PlanStatusGenerated,
		Metadata:        metadata,
	}
}
