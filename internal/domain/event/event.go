// Package event holds the one entity of the pipeline: a lifecycle event
// emitted by a coding-agent session. Events are immutable once committed;
// id order defines recency.
package event

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Event is a committed hook event. Payload is the caller's document,
// passed through byte for byte. Timestamp is Unix milliseconds, the wire
// format the hook emitters use.
type Event struct {
	ID             int64           `json:"id"`
	SourceApp      string          `json:"source_app"`
	SessionID      string          `json:"session_id"`
	HookEventType  string          `json:"hook_event_type"`
	Payload        json.RawMessage `json:"payload"`
	Summary        string          `json:"summary,omitempty"`
	ChatTranscript string          `json:"chat_transcript,omitempty"`
	Timestamp      int64           `json:"timestamp"`
}

// Submission is an event as received, before the store assigns id and
// backfills the timestamp. Summary may arrive pre-computed from the
// emitter or be filled in by enrichment before commit.
type Submission struct {
	SourceApp     string
	SessionID     string
	HookEventType string
	Payload       json.RawMessage
	Summary       string
	Timestamp     int64
}

// Validate checks the four required fields. It runs before any mutation;
// a failing submission never reaches the store.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.SourceApp) == "" {
		return ErrSourceAppRequired
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrSessionIDRequired
	}
	if strings.TrimSpace(s.HookEventType) == "" {
		return ErrHookEventTypeRequired
	}
	if emptyPayload(s.Payload) {
		return ErrPayloadRequired
	}
	return nil
}

func emptyPayload(p json.RawMessage) bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// FilterOptions lists the distinct values seen across the whole log,
// used to populate dashboard filter controls.
type FilterOptions struct {
	SourceApps     []string `json:"source_apps"`
	SessionIDs     []string `json:"session_ids"`
	HookEventTypes []string `json:"hook_event_types"`
}
