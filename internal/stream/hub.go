// Package stream owns the set of live subscribers and fans committed
// events out to them. The hub is constructed once and injected into both
// the ingestion path and the connection-handling path.
package stream

import (
	"context"
	"log/slog"
	"sync"

	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/domain/event"
	"agentsight/internal/errs"
	"agentsight/internal/ports"
)

// SnapshotLimit bounds the initial backlog a new subscriber receives.
const SnapshotLimit = 50

// Subscriber is one live connection. Send must be safe for concurrent
// callers; a returned error drops the subscriber.
type Subscriber interface {
	ID() string
	Send(msg event.StreamMessage) error
}

type Hub struct {
	repo ports.EventRepository

	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

func NewHub(repo ports.EventRepository) *Hub {
	return &Hub{
		repo: repo,
		subs: make(map[Subscriber]struct{}),
	}
}

// Attach registers the subscriber and then sends it the initial snapshot.
// Registration happens before the snapshot read, so an event committed
// while the snapshot is being fetched reaches the subscriber as a live
// message; it may also appear in the snapshot. Consumers dedupe by id.
func (h *Hub) Attach(ctx context.Context, sub Subscriber) error {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	logging.Info(ctx, "subscriber attached",
		slog.String("subscriber_id", sub.ID()),
		slog.Int("subscribers", count),
	)

	events, err := h.repo.Recent(ctx, SnapshotLimit)
	if err != nil {
		h.Detach(ctx, sub)
		return errs.Wrap(err, "load initial snapshot")
	}
	if err := sub.Send(event.InitialMessage{Events: events}); err != nil {
		h.Detach(ctx, sub)
		return errs.Wrap(err, "send initial snapshot")
	}
	return nil
}

func (h *Hub) Detach(ctx context.Context, sub Subscriber) {
	h.mu.Lock()
	_, present := h.subs[sub]
	delete(h.subs, sub)
	count := len(h.subs)
	h.mu.Unlock()

	if present {
		logging.Info(ctx, "subscriber detached",
			slog.String("subscriber_id", sub.ID()),
			slog.Int("subscribers", count),
		)
	}
}

// Broadcast delivers one committed event to every registered subscriber.
// A failing subscriber is dropped; the failure never reaches the caller
// and never affects the others.
func (h *Hub) Broadcast(ctx context.Context, ev event.Event) {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	msg := event.EventMessage{Event: ev}
	for _, sub := range subs {
		if err := sub.Send(msg); err != nil {
			h.Detach(ctx, sub)
			logging.Warn(ctx, "subscriber dropped after send failure",
				slog.String("subscriber_id", sub.ID()),
				slog.Int64("event_id", ev.ID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}

// SubscriberCount reports the size of the registry.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
