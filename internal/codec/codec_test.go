package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const validBody = `{
  "user_id": "user123",
  "timestamp": "2024-01-15T10:30:00",
  "health_metrics": {
    "age": 30,
    "weight": 70.5,
    "height": 175.0,
    "heart_rate": 72,
    "blood_pressure": "120/80",
    "activity_level": "moderate",
    "medical_conditions": ["none"]
  },
  "goals": ["weight_loss", "muscle_gain"],
  "preferences": {"workout_type": "strength_training"},
  "current_fitness_level": "intermediate"
}`

func TestDecodeValidMessage(t *testing.T) {
	event, err := Decode([]byte(validBody))
	require.NoError(t, err)

	require.Equal(t, "user123", event.UserID)
	require.Equal(t, "intermediate", event.CurrentFitnessLevel)
	require.Equal(t, []string{"weight_loss", "muscle_gain"}, event.Goals)
	require.Equal(t, 30, event.HealthMetrics.Age)
	require.InDelta(t, 70.5, event.HealthMetrics.Weight, 0.001)
	require.Equal(t, "120/80", event.HealthMetrics.BloodPressure)
	require.Equal(t, []string{"none"}, event.HealthMetrics.MedicalConditions)
	require.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), event.Timestamp.Time)
}

func TestDecodeMissingUserID(t *testing.T) {
	body := `{"goals": ["weight_loss"], "current_fitness_level": "beginner"}`

	_, err := Decode([]byte(body))
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	require.Contains(t, decodeErr.Error(), "user_id")
}

func TestDecodeMalformedBody(t *testing.T) {
	for _, body := range []string{"", "not json", `{"user_id": 42}`, `[1,2,3]`} {
		_, err := Decode([]byte(body))
		require.Error(t, err, "body %q should not decode", body)

		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr), "body %q should yield a DecodeError", body)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	body := `{"user_id": "user456", "unknown_field": {"nested": true}, "goals": []}`

	event, err := Decode([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "user456", event.UserID)
}

func TestDecodeAcceptsRFC3339Timestamp(t *testing.T) {
	body := `{"user_id": "user789", "timestamp": "2024-01-15T10:30:00Z"}`

	event, err := Decode([]byte(body))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), event.Timestamp.Time)
}
