package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// uniqueViolation is the SQLSTATE postgres reports for unique index conflicts.
const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans one row selected with eventColumns.
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	err := row.Scan(
		&evt.ID,
		&evt.Title,
		&evt.Description,
		&evt.Overview,
		&evt.Image,
		&evt.Venue,
		&evt.Location,
		&evt.Date,
		&evt.Time,
		&evt.Mode,
		&evt.Audience,
		pq.Array(&evt.Agenda),
		&evt.Organizer,
		pq.Array(&evt.Tags),
		&evt.Slug,
		&evt.CreatedAt,
		&evt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}
	evt.CreatedAt = evt.CreatedAt.UTC()
	evt.UpdatedAt = evt.UpdatedAt.UTC()
	return &evt, nil
}

// scanBookingRow scans one row selected with bookingColumns.
func scanBookingRow(row scanner) (*v1.Booking, error) {
	var b v1.Booking
	err := row.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan booking row: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

// mapWriteError turns unique index conflicts into storage.ErrDuplicate.
func mapWriteError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// validID reports whether id can be a primary key. Ids that cannot are reported
// as not found instead of letting postgres reject the cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// limitArg maps limit <= 0 to SQL NULL, which postgres reads as no limit.
func limitArg(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}
