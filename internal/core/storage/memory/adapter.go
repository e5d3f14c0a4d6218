// Package memory is an in-process record store used by tests and local runs.
// It enforces the same unique indexes as the database backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

var _ storage.Backend = (*Adapter)(nil)

// eventRow is a stored event. List methods sort copies taken under the lock.
type eventRow struct {
	seq   int64
	event *v1.Event
}

type bookingRow struct {
	seq     int64
	booking *v1.Booking
}

type bookingKey struct {
	eventID string
	email   string
}

// Adapter keeps records in maps guarded by a single mutex.
type Adapter struct {
	mu        sync.RWMutex
	seq       int64
	events    map[string]*eventRow
	slugs     map[string]string
	bookings  map[string]*bookingRow
	attendees map[bookingKey]string
	closed    bool

	now   func() time.Time
	newID func() string
}

func NewAdapter() *Adapter {
	return &Adapter{
		events:    make(map[string]*eventRow),
		slugs:     make(map[string]string),
		bookings:  make(map[string]*bookingRow),
		attendees: make(map[bookingKey]string),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return fmt.Errorf("memory store is closed")
	}
	return ctx.Err()
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return nil
}

func (a *Adapter) CreateEvent(_ context.Context, event *v1.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.slugs[event.Slug]; taken {
		return fmt.Errorf("%w: events_slug_unique", storage.ErrDuplicate)
	}

	now := a.now()
	event.ID = a.newID()
	event.CreatedAt = now
	event.UpdatedAt = now

	a.seq++
	a.events[event.ID] = &eventRow{seq: a.seq, event: event.Clone()}
	a.slugs[event.Slug] = event.ID
	return nil
}

func (a *Adapter) UpdateEvent(_ context.Context, event *v1.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	row, ok := a.events[event.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if owner, taken := a.slugs[event.Slug]; taken && owner != event.ID {
		return fmt.Errorf("%w: events_slug_unique", storage.ErrDuplicate)
	}

	delete(a.slugs, row.event.Slug)
	a.slugs[event.Slug] = event.ID

	event.CreatedAt = row.event.CreatedAt
	event.UpdatedAt = a.now()
	row.event = event.Clone()
	return nil
}

func (a *Adapter) GetEvent(_ context.Context, id string) (*v1.Event, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	row, ok := a.events[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return row.event.Clone(), nil
}

func (a *Adapter) GetEventBySlug(_ context.Context, slug string) (*v1.Event, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	row, ok := a.events[a.slugs[slug]]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return row.event.Clone(), nil
}

func (a *Adapter) ListEvents(_ context.Context, limit, offset int) ([]*v1.Event, error) {
	a.mu.RLock()
	rows := make([]eventRow, 0, len(a.events))
	for _, row := range a.events {
		rows = append(rows, eventRow{seq: row.seq, event: row.event.Clone()})
	}
	a.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		return newer(rows[i].event.CreatedAt, rows[i].seq, rows[j].event.CreatedAt, rows[j].seq)
	})

	lo, hi := window(len(rows), limit, offset)
	events := make([]*v1.Event, 0, hi-lo)
	for _, row := range rows[lo:hi] {
		events = append(events, row.event)
	}
	return events, nil
}

func (a *Adapter) CountEvents(context.Context) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int64(len(a.events)), nil
}

// DeleteEvent leaves the event's bookings in place.
func (a *Adapter) DeleteEvent(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	row, ok := a.events[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(a.slugs, row.event.Slug)
	delete(a.events, id)
	return nil
}

func (a *Adapter) CreateBooking(_ context.Context, booking *v1.Booking) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := bookingKey{eventID: booking.EventID, email: booking.Email}
	if _, taken := a.attendees[key]; taken {
		return fmt.Errorf("%w: bookings_event_email_unique", storage.ErrDuplicate)
	}

	now := a.now()
	booking.ID = a.newID()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	a.seq++
	a.bookings[booking.ID] = &bookingRow{seq: a.seq, booking: booking.Clone()}
	a.attendees[key] = booking.ID
	return nil
}

func (a *Adapter) UpdateBooking(_ context.Context, booking *v1.Booking) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	row, ok := a.bookings[booking.ID]
	if !ok {
		return storage.ErrNotFound
	}
	key := bookingKey{eventID: booking.EventID, email: booking.Email}
	if owner, taken := a.attendees[key]; taken && owner != booking.ID {
		return fmt.Errorf("%w: bookings_event_email_unique", storage.ErrDuplicate)
	}

	delete(a.attendees, bookingKey{eventID: row.booking.EventID, email: row.booking.Email})
	a.attendees[key] = booking.ID

	booking.CreatedAt = row.booking.CreatedAt
	booking.UpdatedAt = a.now()
	row.booking = booking.Clone()
	return nil
}

func (a *Adapter) GetBooking(_ context.Context, id string) (*v1.Booking, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	row, ok := a.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return row.booking.Clone(), nil
}

func (a *Adapter) ListBookingsByEvent(_ context.Context, eventID string) ([]*v1.Booking, error) {
	a.mu.RLock()
	var rows []bookingRow
	for _, row := range a.bookings {
		if row.booking.EventID == eventID {
			rows = append(rows, bookingRow{seq: row.seq, booking: row.booking.Clone()})
		}
	}
	a.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		return newer(rows[i].booking.CreatedAt, rows[i].seq, rows[j].booking.CreatedAt, rows[j].seq)
	})

	bookings := make([]*v1.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.booking)
	}
	return bookings, nil
}

func (a *Adapter) CountBookings(_ context.Context, eventID string) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if eventID == "" {
		return int64(len(a.bookings)), nil
	}
	var n int64
	for _, row := range a.bookings {
		if row.booking.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (a *Adapter) DeleteBooking(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	row, ok := a.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(a.attendees, bookingKey{eventID: row.booking.EventID, email: row.booking.Email})
	delete(a.bookings, id)
	return nil
}

func newer(at time.Time, seq int64, bt time.Time, bseq int64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return seq > bseq
}

// window clamps limit and offset to [0, n]. limit <= 0 means no limit.
func window(n, limit, offset int) (int, int) {
	lo := min(max(offset, 0), n)
	hi := n
	if limit > 0 {
		hi = min(lo+limit, n)
	}
	return lo, hi
}
