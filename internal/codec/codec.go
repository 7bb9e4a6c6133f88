// Package codec decodes raw queue message bodies into domain events.
// Decoding is pure: no side effects, no external dependencies.
package codec

import (
	"encoding/json"
	"fmt"

	"opentrainer/plan-service/internal/domain"
)

// DecodeError marks an inbound message as malformed. Malformed messages can
// never become valid by redelivery, so the poll loop discards them.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode health event: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode health event: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a raw message body into a HealthEvent. Unknown fields are
// ignored; a missing user_id yields a DecodeError.
func Decode(body []byte) (domain.HealthEvent, error) {
	var event domain.HealthEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return domain.HealthEvent{}, &DecodeError{Reason: "invalid message body", Err: err}
	}
	if event.UserID == "" {
		return domain.HealthEvent{}, &DecodeError{Reason: "missing required field user_id"}
	}
	return event, nil
}
