package ports

import (
	"context"

	"agentsight/internal/domain/event"
)

// EventRepository is the append-only event log. There is deliberately no
// update or delete: committed events are immutable and the log is the
// audit trail.
type EventRepository interface {
	// Append assigns the id and, when the submission carries none, the
	// commit timestamp, then writes durably and returns the stored event.
	Append(ctx context.Context, sub event.Submission) (event.Event, error)

	// Recent returns up to limit events newest-first. limit <= 0 means the
	// default window; oversized limits are capped.
	Recent(ctx context.Context, limit int) ([]event.Event, error)

	// FilterOptions returns the distinct source_app, session_id and
	// hook_event_type values across the whole log, in stable order.
	FilterOptions(ctx context.Context) (event.FilterOptions, error)
}
