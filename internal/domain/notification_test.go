package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPlanGeneratedNotification(t *testing.T) {
	event := NewPlanGeneratedNotification("user123", "plan-1", "12-Week Strength Plan")

	require.Equal(t, "user123", event.UserID)
	require.Equal(t, "plan-1", event.PlanID)
	require.Equal(t, NotificationTrainingPlanGenerated, event.NotificationType)
	require.Equal(t, "Your Training Plan is Ready!", event.Title)
	require.Contains(t, event.Message, "12-Week Strength Plan")
	require.Equal(t, PriorityHigh, event.Priority)
	require.Equal(t, "VIEW_PLAN", event.Metadata["action_required"])
	require.False(t, event.Timestamp.IsZero())
}

func TestNewPlanErrorNotification(t *testing.T) {
	event := NewPlanErrorNotification("user123", "generation failed after 3 retries")

	require.Equal(t, "user123", event.UserID)
	require.Empty(t, event.PlanID)
	require.Equal(t, NotificationTrainingPlanError, event.NotificationType)
	require.Equal(t, "Training Plan Generation Failed", event.Title)
	require.Contains(t, event.Message, "generation failed after 3 retries")
	require.Equal(t, PriorityMedium, event.Priority)
	require.Equal(t, "true", event.Metadata["requires_retry"])
}
