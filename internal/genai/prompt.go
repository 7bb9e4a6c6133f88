// internal/genai/prompt.go
package genai

import (
	"fmt"
	"strings"

	"opentrainer/plan-service/internal/domain"
)

const promptTemplate = `Create a personalized training plan based on the following health data:

%s

Please provide a comprehensive training plan in JSON format with the following structure:
{
    "plan_id": "unique_id",
    "user_id": "%s",
    "title": "Training Plan Title",
    "description": "Brief description of the plan",
    "duration_weeks": 12,
    "difficulty_level": "beginner|intermediate|advanced",
    "weekly_schedule": [
        {
            "week": 1,
            "workouts": [
                {
                    "day": "Monday",
                    "type": "strength|cardio|flexibility",
                    "duration_minutes": 45,
                    "exercises": [
                        {
                            "name": "Exercise name",
                            "sets": 3,
                            "reps": "8-12",
                            "weight": "bodyweight or specific weight",
                            "instructions": "Clear instructions"
                        }
                    ],
                    "rest_periods": "60-90 seconds between sets"
                }
            ]
        }
    ],
    "nutrition_guidelines": "Basic nutrition advice",
    "safety_considerations": ["Important safety notes"]
}

Consider the user's current fitness level, medical conditions, goals, and preferences.
Ensure the plan is progressive, safe, and achievable.`

// BuildPrompt embeds the serialized health data into the generation prompt.
func BuildPrompt(userID, healthData string) string {
	return fmt.Sprintf(promptTemplate, healthData, userID)
}

// FormatHealthSummary is the fallback textual rendering of a health event,
// used when structured serialization fails. Pure formatting; never fails.
func FormatHealthSummary(event domain.HealthEvent) string {
	return fmt.Sprintf(`User ID: %s
Current Fitness Level: %s
Goals: %s
Age: %d
Weight: %.1f
Height: %.1f
Activity Level: %s
Medical Conditions: %s`,
		event.UserID,
		event.CurrentFitnessLevel,
		strings.Join(event.Goals, ", "),
		event.HealthMetrics.Age,
		event.HealthMetrics.Weight,
		event.HealthMetrics.Height,
		event.HealthMetrics.ActivityLevel,
		strings.Join(event.HealthMetrics.MedicalConditions, ", "),
	)
}
