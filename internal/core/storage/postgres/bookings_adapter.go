package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// CreateBooking inserts booking. A second booking for the same (event_id, email)
// returns storage.ErrDuplicate via the bookings_event_email_unique index.
func (a *Adapter) CreateBooking(ctx context.Context, booking *v1.Booking) error {
	if !validID(booking.EventID) {
		return storage.ErrNotFound
	}
	id := a.newID()
	now := a.now()

	_, err := a.db.ExecContext(ctx, queryInsertBooking, id, booking.EventID, booking.Email, now, now)
	if err != nil {
		return mapWriteError(err, "insert booking")
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	slog.Debug("[Postgres] Created booking", "booking_id", id, "event_id", booking.EventID)
	return nil
}

func (a *Adapter) UpdateBooking(ctx context.Context, booking *v1.Booking) error {
	if !validID(booking.ID) || !validID(booking.EventID) {
		return storage.ErrNotFound
	}
	now := a.now()

	var createdAt time.Time
	err := a.db.QueryRowContext(ctx, queryUpdateBooking, booking.ID, booking.EventID, booking.Email, now).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return mapWriteError(err, "update booking")
	}

	booking.CreatedAt = createdAt.UTC()
	booking.UpdatedAt = now
	return nil
}

func (a *Adapter) GetBooking(ctx context.Context, id string) (*v1.Booking, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	return scanBookingRow(a.db.QueryRowContext(ctx, querySelectBookingByID, id))
}

func (a *Adapter) ListBookingsByEvent(ctx context.Context, eventID string) ([]*v1.Booking, error) {
	if !validID(eventID) {
		return nil, nil
	}

	rows, err := a.db.QueryContext(ctx, queryListBookingsByEvent, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*v1.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func (a *Adapter) CountBookings(ctx context.Context, eventID string) (int64, error) {
	var row *sql.Row
	switch {
	case eventID == "":
		row = a.db.QueryRowContext(ctx, queryCountBookings)
	case !validID(eventID):
		return 0, nil
	default:
		row = a.db.QueryRowContext(ctx, queryCountBookingsByEvent, eventID)
	}

	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (a *Adapter) DeleteBooking(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	res, err := a.db.ExecContext(ctx, queryDeleteBooking, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireAffected(res)
}
