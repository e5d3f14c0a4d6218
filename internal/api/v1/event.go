package v1

import (
	"slices"
	"time"
)

// Event mode values accepted by the validator.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

// Event is a bookable event as persisted by the record store.
type Event struct {
	// ID is assigned by the store on create (UUID string).
	ID string `json:"id" bson:"_id" yaml:"-"`

	Title       string `json:"title" bson:"title" yaml:"title"`
	Description string `json:"description" bson:"description" yaml:"description"`
	Overview    string `json:"overview" bson:"overview" yaml:"overview"`
	Image       string `json:"image" bson:"image" yaml:"image"`
	Venue       string `json:"venue" bson:"venue" yaml:"venue"`
	Location    string `json:"location" bson:"location" yaml:"location"`

	// Date is normalized to YYYY-MM-DD before persistence.
	Date string `json:"date" bson:"date" yaml:"date"`

	// Time is normalized to 24-hour HH:MM before persistence.
	Time string `json:"time" bson:"time" yaml:"time"`

	// Mode is one of online, offline or hybrid.
	Mode      string   `json:"mode" bson:"mode" yaml:"mode"`
	Audience  string   `json:"audience" bson:"audience" yaml:"audience"`
	Agenda    []string `json:"agenda" bson:"agenda" yaml:"agenda"`
	Organizer string   `json:"organizer" bson:"organizer" yaml:"organizer"`
	Tags      []string `json:"tags" bson:"tags" yaml:"tags"`

	// Slug is derived from Title and is unique across events.
	Slug string `json:"slug" bson:"slug" yaml:"-"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Clone returns a deep copy so stores can hand out records without sharing slices.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Agenda = slices.Clone(e.Agenda)
	c.Tags = slices.Clone(e.Tags)
	return &c
}
