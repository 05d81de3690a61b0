package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"agentsight/internal/domain/event"
	"agentsight/internal/errs"
	"agentsight/internal/infrastructure/persistence/sqlite/model"
	"agentsight/internal/ports"
)

const (
	defaultRecentLimit = 100
	maxRecentLimit     = 1000
)

type EventRepository struct {
	db *gorm.DB
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, sub event.Submission) (event.Event, error) {
	if ctx == nil {
		return event.Event{}, errors.New("context is required")
	}

	row := model.Event{
		SourceApp:     sub.SourceApp,
		SessionID:     sub.SessionID,
		HookEventType: sub.HookEventType,
		PayloadJSON:   string(sub.Payload),
		Summary:       sub.Summary,
		Timestamp:     sub.Timestamp,
	}
	if row.Timestamp == 0 {
		row.Timestamp = time.Now().UnixMilli()
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return event.Event{}, errs.Wrap(err, "insert event")
	}
	return mapEvent(row), nil
}

func (r *EventRepository) Recent(ctx context.Context, limit int) ([]event.Event, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var rows []model.Event
	if err := r.db.WithContext(ctx).
		Order("event_id desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recent events")
	}

	items := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvent(row))
	}
	return items, nil
}

func (r *EventRepository) FilterOptions(ctx context.Context) (event.FilterOptions, error) {
	if ctx == nil {
		return event.FilterOptions{}, errors.New("context is required")
	}

	opts := event.FilterOptions{
		SourceApps:     []string{},
		SessionIDs:     []string{},
		HookEventTypes: []string{},
	}

	for _, col := range []struct {
		name string
		dest *[]string
	}{
		{"source_app", &opts.SourceApps},
		{"session_id", &opts.SessionIDs},
		{"hook_event_type", &opts.HookEventTypes},
	} {
		if err := r.db.WithContext(ctx).
			Model(&model.Event{}).
			Distinct(col.name).
			Order(col.name + " asc").
			Pluck(col.name, col.dest).Error; err != nil {
			return event.FilterOptions{}, errs.Wrapf(err, "query distinct %s", col.name)
		}
	}
	return opts, nil
}

func mapEvent(row model.Event) event.Event {
	return event.Event{
		ID:             row.EventID,
		SourceApp:      row.SourceApp,
		SessionID:      row.SessionID,
		HookEventType:  row.HookEventType,
		Payload:        json.RawMessage(row.PayloadJSON),
		Summary:        row.Summary,
		ChatTranscript: row.ChatTranscript,
		Timestamp:      row.Timestamp,
	}
}
