// internal/domain/health_event.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// HealthEvent is one inbound unit of work consumed from the health queue.
// Immutable once decoded; the orchestrator consumes it exactly once and it
// is never persisted as-is.
type HealthEvent struct {
	UserID              string         `json:"user_id"`
	Timestamp           EventTime      `json:"timestamp,omitempty"`
	HealthMetrics       HealthMetrics  `json:"health_metrics"`
	Goals               []string       `json:"goals"`
	Preferences         map[string]any `json:"preferences,omitempty"`
	CurrentFitnessLevel string         `json:"current_fitness_level"`
}

// HealthMetrics is the nested measurement block of a HealthEvent.
type HealthMetrics struct {
	Age               int      `json:"age"`
	Weight            float64  `json:"weight"`
	Height            float64  `json:"height"`
	HeartRate         int      `json:"heart_rate"`
	BloodPressure     string   `json:"blood_pressure"`
	ActivityLevel     string   `json:"activity_level"`
	MedicalConditions []string `json:"medical_conditions"`
}

// EventTime wraps time.Time to accept both RFC3339 timestamps and the
// zone-less "2006-01-02T15:04:05" form that upstream producers emit.
type EventTime struct {
	time.Time
}

const eventTimeLayout = "2006-01-02T15:04:05"

// UnmarshalJSON parses the timestamp, trying RFC3339 first and falling back
// to the zone-less layout interpreted as UTC.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(eventTimeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON emits RFC3339, or null for the zero value.
func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
