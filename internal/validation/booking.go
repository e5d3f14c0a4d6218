package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

// EventLookup resolves the event a booking references.
// storage.EventStore satisfies it.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*v1.Event, error)
}

var fieldRules = validator.New(validator.WithRequiredStructEnabled())

// CanonicalEmail returns the form used for storage and uniqueness: trimmed and lowercased.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email has a valid address shape.
func ValidEmail(email string) bool {
	return fieldRules.Var(email, "required,email") == nil
}

// NormalizeBooking runs the booking save pipeline in place. prev is the persisted
// version of the record, nil on create. The referenced event is only looked up when
// EventID is new or changed, so deleting an event never invalidates existing bookings.
//
// Lookup failures other than storage.ErrNotFound are returned as-is; they are store
// errors, not validation errors.
func NormalizeBooking(ctx context.Context, b *v1.Booking, prev *v1.Booking, events EventLookup) error {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = CanonicalEmail(b.Email)

	var c collector
	if b.EventID == "" {
		c.add("eventId", "Event ID is required")
	}
	if b.Email == "" {
		c.add("email", "Email is required")
	} else if !ValidEmail(b.Email) {
		c.add("email", "Please provide a valid email address")
	}

	if b.EventID != "" && (prev == nil || prev.EventID != b.EventID) {
		if _, err := events.GetEvent(ctx, b.EventID); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to look up event %s: %w", b.EventID, err)
			}
			c.add("eventId", fmt.Sprintf("Event with ID %s does not exist", b.EventID))
		}
	}

	return c.err()
}
