package ports

import (
	"context"

	"agentsight/internal/domain/event"
)

// EventMirror republishes committed events to an external bus. Delivery
// is best-effort: publish errors are logged by the caller and absorbed.
type EventMirror interface {
	Publish(ctx context.Context, ev event.Event) error
}
