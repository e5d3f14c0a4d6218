// Package records is the single write path for events and bookings. Every
// save normalizes and validates the record before the store sees it.
package records

import (
	"context"
	"errors"
	"log/slog"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
	"github.com/aevon-lab/eventbook/internal/validation"
)

// Connector hands out the shared record store connection. *conn.Cache implements it.
type Connector interface {
	Acquire(ctx context.Context) (storage.Backend, error)
}

type Service struct {
	conn Connector
}

func NewService(conn Connector) *Service {
	if conn == nil {
		panic("records: connector must not be nil")
	}
	return &Service{conn: conn}
}

func (s *Service) CreateEvent(ctx context.Context, event *v1.Event) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := validation.NormalizeEvent(event, nil); err != nil {
		return err
	}
	if err := store.CreateEvent(ctx, event); err != nil {
		logDuplicate(err, "event", "slug", event.Slug)
		return err
	}

	slog.Info("[Records] Event created", "event_id", event.ID, "slug", event.Slug)
	return nil
}

// UpdateEvent validates event against its stored version and saves it.
// The slug is regenerated only if the title changed.
func (s *Service) UpdateEvent(ctx context.Context, event *v1.Event) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	prev, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if err := validation.NormalizeEvent(event, prev); err != nil {
		return err
	}
	if err := store.UpdateEvent(ctx, event); err != nil {
		logDuplicate(err, "event", "slug", event.Slug)
		return err
	}

	slog.Info("[Records] Event updated", "event_id", event.ID, "slug", event.Slug)
	return nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*v1.Event, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetEvent(ctx, id)
}

func (s *Service) GetEventBySlug(ctx context.Context, slug string) (*v1.Event, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetEventBySlug(ctx, slug)
}

// ListEvents returns events newest first. limit <= 0 returns all of them.
func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]*v1.Event, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListEvents(ctx, limit, offset)
}

func (s *Service) CountEvents(ctx context.Context) (int64, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	return store.CountEvents(ctx)
}

// DeleteEvent removes the event. Its bookings stay in place.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	slog.Info("[Records] Event deleted", "event_id", id)
	return nil
}

func (s *Service) CreateBooking(ctx context.Context, booking *v1.Booking) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := validation.NormalizeBooking(ctx, booking, nil, store); err != nil {
		return err
	}
	if err := store.CreateBooking(ctx, booking); err != nil {
		logDuplicate(err, "booking", "event_id", booking.EventID)
		return err
	}

	slog.Info("[Records] Booking created", "booking_id", booking.ID, "event_id", booking.EventID)
	return nil
}

// UpdateBooking saves booking. The referenced event is only checked when
// EventID differs from the stored booking.
func (s *Service) UpdateBooking(ctx context.Context, booking *v1.Booking) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	prev, err := store.GetBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	if err := validation.NormalizeBooking(ctx, booking, prev, store); err != nil {
		return err
	}
	if err := store.UpdateBooking(ctx, booking); err != nil {
		logDuplicate(err, "booking", "event_id", booking.EventID)
		return err
	}

	slog.Info("[Records] Booking updated", "booking_id", booking.ID, "event_id", booking.EventID)
	return nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*v1.Booking, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetBooking(ctx, id)
}

func (s *Service) ListBookingsByEvent(ctx context.Context, eventID string) ([]*v1.Booking, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListBookingsByEvent(ctx, eventID)
}

// CountBookings counts the bookings of eventID, or all bookings if eventID is empty.
func (s *Service) CountBookings(ctx context.Context, eventID string) (int64, error) {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	return store.CountBookings(ctx, eventID)
}

func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	store, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	slog.Info("[Records] Booking deleted", "booking_id", id)
	return nil
}

func logDuplicate(err error, kind, key, value string) {
	if errors.Is(err, storage.ErrDuplicate) {
		slog.Warn("[Records] Duplicate rejected", "kind", kind, key, value, "error", err)
	}
}
