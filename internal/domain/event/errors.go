package event

import (
	"errors"
	"fmt"
)

// ErrInvalidSubmission is the root of every validation failure; handlers
// match it with errors.Is to map the whole family to a 400.
var ErrInvalidSubmission = errors.New("invalid event submission")

var (
	ErrSourceAppRequired     = fmt.Errorf("%w: source_app is required", ErrInvalidSubmission)
	ErrSessionIDRequired     = fmt.Errorf("%w: session_id is required", ErrInvalidSubmission)
	ErrHookEventTypeRequired = fmt.Errorf("%w: hook_event_type is required", ErrInvalidSubmission)
	ErrPayloadRequired       = fmt.Errorf("%w: payload is required", ErrInvalidSubmission)
)
