package ports

import (
	"context"
	"encoding/json"
)

// Summarizer produces a short natural-language annotation for an event.
// Any error means "no summary"; the ingestion path never fails on it.
type Summarizer interface {
	Summarize(ctx context.Context, hookEventType string, payload json.RawMessage) (string, error)
}
