// internal/domain/generated_plan.go
package domain

// GeneratedPlan is the structured result produced by the generation service.
// The orchestrator owns it for the duration of reconciliation, folds it into a
// PlanRecord, and discards it.
type GeneratedPlan struct {
	PlanID               string           `json:"plan_id"`
	UserID               string           `json:"user_id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	DurationWeeks        int              `json:"duration_weeks"`
	DifficultyLevel      string           `json:"difficulty_level"`
	WeeklySchedule       []WeeklySchedule `json:"weekly_schedule"`
	NutritionGuidelines  string           `json:"nutrition_guidelines,omitempty"`
	SafetyConsiderations []string         `json:"safety_considerations"`
}

// WeeklySchedule is one week of the plan, ordered by week number.
type WeeklySchedule struct {
	Week     int       `json:"week"`
	Workouts []Workout `json:"workouts"`
}

// Workout is a single session within a week.
type Workout struct {
	Day             string     `json:"day"`
	Type            string     `json:"type"` // strength | cardio | flexibility
	DurationMinutes int        `json:"duration_minutes"`
	Exercises       []Exercise `json:"exercises"`
	RestPeriods     string     `json:"rest_periods,omitempty"`
}

// Exercise is one movement within a workout.
type Exercise struct {
	Name         string `json:"name"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
	Weight       string `json:"weight,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}
