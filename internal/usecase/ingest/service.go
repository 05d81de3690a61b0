// Package ingest implements the intake pipeline: validate, optionally
// enrich, append, then broadcast. The caller sees all-or-nothing; the
// enrichment and fanout legs degrade silently.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/domain/event"
	"agentsight/internal/errs"
	"agentsight/internal/ports"
)

// Broadcaster is the hub as the service sees it.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev event.Event)
}

type Service struct {
	repo             ports.EventRepository
	hub              Broadcaster
	summarizer       ports.Summarizer  // nil when enrichment is not configured
	mirror           ports.EventMirror // nil when no mirror is configured
	summarizeTimeout time.Duration
}

func NewService(
	repo ports.EventRepository,
	hub Broadcaster,
	summarizer ports.Summarizer,
	mirror ports.EventMirror,
	summarizeTimeout time.Duration,
) *Service {
	if summarizeTimeout <= 0 {
		summarizeTimeout = 10 * time.Second
	}
	return &Service{
		repo:             repo,
		hub:              hub,
		summarizer:       summarizer,
		mirror:           mirror,
		summarizeTimeout: summarizeTimeout,
	}
}

type IngestEventInput struct {
	Submission event.Submission
	// Summarize requests enrichment when the submission carries no summary.
	Summarize bool
}

// IngestEvent validates and commits one submission. On success the event
// has been durably appended and broadcast to every live subscriber. On a
// validation error nothing was mutated; on a persistence error nothing
// was broadcast.
func (s *Service) IngestEvent(ctx context.Context, in IngestEventInput) (event.Event, error) {
	if ctx == nil {
		return event.Event{}, errors.New("context is required")
	}

	if err := in.Submission.Validate(); err != nil {
		return event.Event{}, err
	}

	sub := in.Submission
	if in.Summarize && strings.TrimSpace(sub.Summary) == "" {
		sub.Summary = s.summarize(ctx, sub)
	}

	stored, err := s.repo.Append(ctx, sub)
	if err != nil {
		return event.Event{}, errs.Wrap(err, "append event")
	}

	// Commit before broadcast, always in that order.
	s.hub.Broadcast(ctx, stored)

	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, stored); err != nil {
			logging.Warn(ctx, "event mirror publish failed",
				slog.Int64("event_id", stored.ID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}

	return stored, nil
}

// summarize runs the enrichment collaborator under its own timeout. Every
// failure mode collapses to "no summary".
func (s *Service) summarize(ctx context.Context, sub event.Submission) string {
	if s.summarizer == nil {
		return ""
	}

	sctx, cancel := context.WithTimeout(ctx, s.summarizeTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(sctx, sub.HookEventType, sub.Payload)
	if err != nil {
		logging.Warn(ctx, "event enrichment failed",
			slog.String("hook_event_type", sub.HookEventType),
			slog.Any("err", errs.Loggable(err)),
		)
		return ""
	}
	return strings.TrimSpace(summary)
}

// RecentEvents returns up to limit committed events newest-first.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]event.Event, error) {
	events, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, errs.Wrap(err, "query recent events")
	}
	return events, nil
}

// FilterOptions returns the distinct field values across the whole log.
func (s *Service) FilterOptions(ctx context.Context) (event.FilterOptions, error) {
	opts, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return event.FilterOptions{}, errs.Wrap(err, "query filter options")
	}
	return opts, nil
}
