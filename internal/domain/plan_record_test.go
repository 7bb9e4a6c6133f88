package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProvisionalPlanIDUnique(t *testing.T) {
	a := ProvisionalPlanID(time.Now())
	b := ProvisionalPlanID(time.Now())

	require.Contains(t, a, "PROCESSING-")
	require.NotEqual(t, a, b)
}

func TestNewProcessingRecord(t *testing.T) {
	event := HealthEvent{
		UserID:              "user123",
		Goals:               []string{"weight_loss", "muscle_gain"},
		CurrentFitnessLevel: "intermediate",
	}

	record := NewProcessingRecord(event, "PROCESSING-42")

	require.Equal(t, "user123", record.UserID)
	require.Equal(t, "PROCESSING-42", record.PlanID)
	require.Equal(t, PlanStatusProcessing, record.Status)
	require.False(t, record.IsTerminal())
	require.Nil(t, record.DurationWeeks)
	require.Equal(t, "intermediate", record.Metadata[MetaFitnessLevel])
	require.Equal(t, "2", record.Metadata[MetaGoalsCount])
}

func TestNewGeneratedRecord(t *testing.T) {
	plan := &GeneratedPlan{
		PlanID:          "plan-1",
		UserID:          "user123",
		Title:           "12-Week Strength Plan",
		Description:     "Progressive strength training",
		DurationWeeks:   12,
		DifficultyLevel: "intermediate",
		WeeklySchedule: []WeeklySchedule{
			{Week: 1}, {Week: 2}, {Week: 3},
		},
		NutritionGuidelines:  "Eat protein",
		SafetyConsiderations: []string{"warm up first"},
	}

	record := NewGeneratedRecord(plan)

	require.Equal(t, PlanStatusGenerated, record.Status)
	require.True(t, record.IsTerminal())
	require.Equal(t, "plan-1", record.PlanID)
	require.Equal(t, "12-Week Strength Plan", record.Title)
	require.NotNil(t, record.DurationWeeks)
	require.Equal(t, 12, *record.DurationWeeks)
	require.Equal(t, "3", record.Metadata[MetaWeeklyScheduleCount])
	require.Equal(t, "1", record.Metadata[MetaSafetyConsiderationsCount])
	require.Equal(t, "true", record.Metadata[MetaHasNutritionGuidelines])
}

func TestNewGeneratedRecordWithoutNutrition(t *testing.T) {
	record := NewGeneratedRecord(&GeneratedPlan{PlanID: "p", UserID: "u"})

	_, ok := record.Metadata[MetaHasNutritionGuidelines]
	require.False(t, ok)
}
