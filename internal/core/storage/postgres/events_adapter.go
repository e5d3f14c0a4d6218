package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// CreateEvent inserts event, populating ID, CreatedAt and UpdatedAt.
// A slug collision returns storage.ErrDuplicate and leaves event unchanged.
func (a *Adapter) CreateEvent(ctx context.Context, event *v1.Event) error {
	id := a.newID()
	now := a.now()

	_, err := a.db.ExecContext(ctx, queryInsertEvent,
		id,
		event.Title,
		event.Description,
		event.Overview,
		event.Image,
		event.Venue,
		event.Location,
		event.Date,
		event.Time,
		event.Mode,
		event.Audience,
		pq.Array(event.Agenda),
		event.Organizer,
		pq.Array(event.Tags),
		event.Slug,
		now,
		now,
	)
	if err != nil {
		return mapWriteError(err, "insert event")
	}

	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now

	slog.Debug("[Postgres] Created event", "event_id", id, "slug", event.Slug)
	return nil
}

// UpdateEvent rewrites every mutable column of the event with event.ID.
func (a *Adapter) UpdateEvent(ctx context.Context, event *v1.Event) error {
	if !validID(event.ID) {
		return storage.ErrNotFound
	}
	now := a.now()

	var createdAt time.Time
	err := a.db.QueryRowContext(ctx, queryUpdateEvent,
		event.ID,
		event.Title,
		event.Description,
		event.Overview,
		event.Image,
		event.Venue,
		event.Location,
		event.Date,
		event.Time,
		event.Mode,
		event.Audience,
		pq.Array(event.Agenda),
		event.Organizer,
		pq.Array(event.Tags),
		event.Slug,
		now,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return mapWriteError(err, "update event")
	}

	event.CreatedAt = createdAt.UTC()
	event.UpdatedAt = now
	return nil
}

func (a *Adapter) GetEvent(ctx context.Context, id string) (*v1.Event, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	return scanEventRow(a.db.QueryRowContext(ctx, querySelectEventByID, id))
}

func (a *Adapter) GetEventBySlug(ctx context.Context, slug string) (*v1.Event, error) {
	return scanEventRow(a.db.QueryRowContext(ctx, querySelectEventBySlug, slug))
}

// ListEvents returns events newest first.
func (a *Adapter) ListEvents(ctx context.Context, limit, offset int) ([]*v1.Event, error) {
	if offset < 0 {
		offset = 0
	}

	rows, err := a.db.QueryContext(ctx, queryListEvents, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*v1.Event
	for rows.Next() {
		evt, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (a *Adapter) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, queryCountEvents).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// DeleteEvent removes the event row only; bookings have no foreign key to it.
func (a *Adapter) DeleteEvent(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	res, err := a.db.ExecContext(ctx, queryDeleteEvent, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
