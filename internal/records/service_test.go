package records

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/conn"
	"github.com/aevon-lab/eventbook/internal/core/storage"
	"github.com/aevon-lab/eventbook/internal/core/storage/memory"
	"github.com/aevon-lab/eventbook/internal/validation"
)

// writeCountingStore counts create and update calls that reach the store.
type writeCountingStore struct {
	*memory.Adapter
	writes atomic.Int32
}

func (s *writeCountingStore) CreateEvent(ctx context.Context, e *v1.Event) error {
	s.writes.Add(1)
	return s.Adapter.CreateEvent(ctx, e)
}

func (s *writeCountingStore) UpdateEvent(ctx context.Context, e *v1.Event) error {
	s.writes.Add(1)
	return s.Adapter.UpdateEvent(ctx, e)
}

func (s *writeCountingStore) CreateBooking(ctx context.Context, b *v1.Booking) error {
	s.writes.Add(1)
	return s.Adapter.CreateBooking(ctx, b)
}

func (s *writeCountingStore) UpdateBooking(ctx context.Context, b *v1.Booking) error {
	s.writes.Add(1)
	return s.Adapter.UpdateBooking(ctx, b)
}

func newTestService(t *testing.T) (*Service, *writeCountingStore) {
	t.Helper()

	store := &writeCountingStore{Adapter: memory.NewAdapter()}
	cache := conn.NewCache("memory://test", func(ctx context.Context, uri string) (storage.Backend, error) {
		return store, nil
	})
	t.Cleanup(func() { _ = cache.Close() })

	return NewService(cache), store
}

func newEvent(title string) *v1.Event {
	return &v1.Event{
		Title:       title,
		Description: "A full day of talks.",
		Overview:    "Talks and workshops.",
		Image:       "https://example.com/banner.png",
		Venue:       "Convention Center",
		Location:    "San Francisco, CA",
		Date:        "12/15/2024",
		Time:        "2:30 PM",
		Mode:        v1.ModeHybrid,
		Audience:    "Developers",
		Agenda:      []string{"Keynote", "Workshops"},
		Organizer:   "Community",
		Tags:        []string{"react", "frontend"},
	}
}

func TestService_CreateEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	evt := newEvent("React Conference 2024")
	require.NoError(t, svc.CreateEvent(ctx, evt))
	require.Equal(t, "react-conference-2024", evt.Slug)
	require.Equal(t, "2024-12-15", evt.Date)
	require.Equal(t, "14:30", evt.Time)

	got, err := svc.GetEvent(ctx, evt.ID)
	require.NoError(t, err)
	require.Equal(t, evt, got)

	bySlug, err := svc.GetEventBySlug(ctx, "react-conference-2024")
	require.NoError(t, err)
	require.Equal(t, evt.ID, bySlug.ID)
}

func TestService_InvalidEventNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	evt := newEvent("Broken")
	evt.Mode = "in-person"
	evt.Date = "invalid-date"

	err := svc.CreateEvent(ctx, evt)
	require.ErrorIs(t, err, validation.ErrValidation)

	var multi *validation.MultiValidationError
	require.ErrorAs(t, err, &multi)
	require.NotNil(t, multi.Field("mode"))
	require.Equal(t, "Invalid date format", multi.Field("date").Message)

	require.Equal(t, int32(0), store.writes.Load())
	n, err := svc.CountEvents(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestService_DuplicateSlug(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.CreateEvent(ctx, newEvent("Go Meetup")))
	err := svc.CreateEvent(ctx, newEvent("  go meetup "))
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	evt := newEvent("Go Meetup")
	require.NoError(t, svc.CreateEvent(ctx, evt))
	created := evt.CreatedAt

	t.Run("slug kept when title unchanged", func(t *testing.T) {
		evt.Venue = "Room 2"
		require.NoError(t, svc.UpdateEvent(ctx, evt))
		require.Equal(t, "go-meetup", evt.Slug)
		require.Equal(t, created, evt.CreatedAt)
	})

	t.Run("slug follows a new title", func(t *testing.T) {
		evt.Title = "Go Meetup Berlin"
		require.NoError(t, svc.UpdateEvent(ctx, evt))
		require.Equal(t, "go-meetup-berlin", evt.Slug)

		_, err := svc.GetEventBySlug(ctx, "go-meetup")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("missing event", func(t *testing.T) {
		ghost := newEvent("Ghost")
		ghost.ID = "does-not-exist"
		require.ErrorIs(t, svc.UpdateEvent(ctx, ghost), storage.ErrNotFound)
	})
}

func TestService_ListEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, title := range []string{"First", "Second", "Third"} {
		require.NoError(t, svc.CreateEvent(ctx, newEvent(title)))
	}

	events, err := svc.ListEvents(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "third", events[0].Slug)
	require.Equal(t, "second", events[1].Slug)
}

func TestService_BookingEmailIsCanonical(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	evt := newEvent("Go Meetup")
	require.NoError(t, svc.CreateEvent(ctx, evt))

	first := &v1.Booking{EventID: evt.ID, Email: "user@example.com"}
	require.NoError(t, svc.CreateBooking(ctx, first))

	second := &v1.Booking{EventID: evt.ID, Email: "  USER@EXAMPLE.COM  "}
	err := svc.CreateBooking(ctx, second)
	require.ErrorIs(t, err, storage.ErrDuplicate)
	require.Equal(t, "user@example.com", second.Email)

	n, err := svc.CountBookings(ctx, evt.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestService_BookingForMissingEvent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	err := svc.CreateBooking(ctx, &v1.Booking{EventID: "nope", Email: "user@example.com"})
	require.ErrorIs(t, err, validation.ErrValidation)
	require.ErrorContains(t, err, "Event with ID nope does not exist")
	require.Equal(t, int32(0), store.writes.Load())
}

func TestService_BookingOutlivesEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	evt := newEvent("Go Meetup")
	require.NoError(t, svc.CreateEvent(ctx, evt))

	booking := &v1.Booking{EventID: evt.ID, Email: "user@example.com"}
	require.NoError(t, svc.CreateBooking(ctx, booking))
	require.NoError(t, svc.DeleteEvent(ctx, evt.ID))

	got, err := svc.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, evt.ID, got.EventID)

	got.Email = "Renamed@Example.com"
	require.NoError(t, svc.UpdateBooking(ctx, got))
	require.Equal(t, "renamed@example.com", got.Email)

	// Moving it to another missing event is still rejected.
	got.EventID = "elsewhere"
	require.ErrorContains(t, svc.UpdateBooking(ctx, got), "does not exist")

	list, err := svc.ListBookingsByEvent(ctx, evt.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "renamed@example.com", list[0].Email)
}

func TestService_DeleteBooking(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	evt := newEvent("Go Meetup")
	require.NoError(t, svc.CreateEvent(ctx, evt))
	booking := &v1.Booking{EventID: evt.ID, Email: "user@example.com"}
	require.NoError(t, svc.CreateBooking(ctx, booking))

	require.NoError(t, svc.DeleteBooking(ctx, booking.ID))
	require.ErrorIs(t, svc.DeleteBooking(ctx, booking.ID), storage.ErrNotFound)

	total, err := svc.CountBookings(ctx, "")
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestService_ConnectionErrorsPropagate(t *testing.T) {
	svc := NewService(conn.NewCache("", nil))

	_, err := svc.GetEvent(context.Background(), "x")
	require.ErrorIs(t, err, conn.ErrConfiguration)

	dialErr := errors.New("failed to ping postgres database: connection refused")
	svc = NewService(conn.NewCache("postgres://localhost/db", func(ctx context.Context, uri string) (storage.Backend, error) {
		return nil, dialErr
	}))
	require.ErrorIs(t, svc.CreateEvent(context.Background(), newEvent("Go")), dialErr)
}
