package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
)

var (
	// ErrDuplicate is returned when a write violates a unique index
	// (events.slug or bookings(event_id, email)). Adapters wrap it with the index name.
	ErrDuplicate = errors.New("duplicate key")

	// ErrNotFound is returned when a record does not exist, including lookups
	// by ids that are not well-formed.
	ErrNotFound = errors.New("record not found")
)

// EventStore persists Event records.
type EventStore interface {
	// CreateEvent assigns ID, CreatedAt and UpdatedAt and inserts the event.
	CreateEvent(ctx context.Context, event *v1.Event) error

	// UpdateEvent replaces the stored event with the same ID and refreshes UpdatedAt.
	// Returns ErrNotFound if no such event exists.
	UpdateEvent(ctx context.Context, event *v1.Event) error

	GetEvent(ctx context.Context, id string) (*v1.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*v1.Event, error)

	// ListEvents returns events newest first. limit <= 0 means no limit.
	ListEvents(ctx context.Context, limit, offset int) ([]*v1.Event, error)
	CountEvents(ctx context.Context) (int64, error)

	// DeleteEvent removes the event only. Bookings referencing it are left untouched.
	DeleteEvent(ctx context.Context, id string) error
}

// BookingStore persists Booking records.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *v1.Booking) error
	UpdateBooking(ctx context.Context, booking *v1.Booking) error
	GetBooking(ctx context.Context, id string) (*v1.Booking, error)

	// ListBookingsByEvent returns the bookings of one event, newest first.
	ListBookingsByEvent(ctx context.Context, eventID string) ([]*v1.Booking, error)

	// CountBookings counts bookings of eventID, or all bookings when eventID is empty.
	CountBookings(ctx context.Context, eventID string) (int64, error)
	DeleteBooking(ctx context.Context, id string) error
}

// Backend is an established connection to a record store.
type Backend interface {
	EventStore
	BookingStore

	Ping(ctx context.Context) error
	Close() error
}
