// internal/domain/notification.go
package domain

import (
	"fmt"
	"time"
)

// Notification type tags.
const (
	NotificationTrainingPlanGenerated = "TRAINING_PLAN_GENERATED"
	NotificationTrainingPlanError     = "TRAINING_PLAN_ERROR"
)

// Notification priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
)

// NotificationEvent is a one-shot outbound fact describing a processing
// outcome. Constructed, sent, and discarded; never persisted by the core.
type NotificationEvent struct {
	UserID           string            `json:"user_id"`
	PlanID           string            `json:"plan_id,omitempty"`
	NotificationType string            `json:"notification_type"`
	Title            string            `json:"title"`
	Message          string            `json:"message"`
	Timestamp        time.Time         `json:"timestamp"`
	Priority         string            `json:"priority"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// NewPlanGeneratedNotification builds the success notification for a
// freshly generated plan.
func NewPlanGeneratedNotification(userID, planID, planTitle string) NotificationEvent {
	return NotificationEvent{
		UserID:           userID,
		PlanID:           planID,
		NotificationType: NotificationTrainingPlanGenerated,
		Title:            "Your Training Plan is Ready!",
		Message:          fmt.Sprintf("Your personalized training plan '%s' has been generated and is ready for you to start.", planTitle),
		Timestamp:        time.Now().UTC(),
		Priority:         PriorityHigh,
		Metadata: map[string]string{
			"action_required": "VIEW_PLAN",
			"plan_title":      planTitle,
		},
	}
}

// NewPlanErrorNotification builds the failure notification. The error message
// is the sanitized text surfaced to the user, not a stack trace.
func NewPlanErrorNotification(userID, errorMessage string) NotificationEvent {
	return NotificationEvent{
		UserID:           userID,
		NotificationType: NotificationTrainingPlanError,
		Title:            "Training Plan Generation Failed",
		Message:          fmt.Sprintf("We encountered an issue generating your training plan: %s. Please try again or contact support.", errorMessage),
		Timestamp:        time.Now().UTC(),
		Priority:         PriorityMedium,
		Metadata: map[string]string{
			"error_type":     "GENERATION_FAILED",
			"requires_retry": "true",
		},
	}
}
