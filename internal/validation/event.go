package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
	maxOverviewLen    = 500
)

// NormalizeEvent runs the event save pipeline in place: trim, check, derive slug,
// normalize date and time. prev is the persisted version of the record, nil on create;
// the slug is only recomputed when the title is new or changed.
//
// All violations are reported together as a *MultiValidationError.
func NormalizeEvent(e *v1.Event, prev *v1.Event) error {
	trimEvent(e)

	var c collector
	checkText(&c, "title", "Title", e.Title, maxTitleLen)
	checkText(&c, "description", "Description", e.Description, maxDescriptionLen)
	checkText(&c, "overview", "Overview", e.Overview, maxOverviewLen)
	requireText(&c, "image", "Image URL", e.Image)
	requireText(&c, "venue", "Venue", e.Venue)
	requireText(&c, "location", "Location", e.Location)
	requireText(&c, "date", "Date", e.Date)
	requireText(&c, "time", "Time", e.Time)
	requireText(&c, "audience", "Audience", e.Audience)
	requireText(&c, "organizer", "Organizer", e.Organizer)

	switch e.Mode {
	case "":
		c.add("mode", "Mode is required")
	case v1.ModeOnline, v1.ModeOffline, v1.ModeHybrid:
	default:
		c.add("mode", "Mode must be either online, offline, or hybrid")
	}

	if len(e.Agenda) == 0 {
		c.add("agenda", "At least one agenda item is required")
	}
	if len(e.Tags) == 0 {
		c.add("tags", "At least one tag is required")
	}

	switch {
	case e.Title == "":
	case prev == nil || prev.Title != e.Title || prev.Slug == "":
		e.Slug = Slugify(e.Title)
	default:
		e.Slug = prev.Slug
	}

	if !c.has("date") {
		if d, err := NormalizeDate(e.Date); err != nil {
			c.add("date", err.Error())
		} else {
			e.Date = d
		}
	}
	if !c.has("time") {
		if t, err := NormalizeTime(e.Time); err != nil {
			c.add("time", err.Error())
		} else {
			e.Time = t
		}
	}

	return c.err()
}

func trimEvent(e *v1.Event) {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Overview = strings.TrimSpace(e.Overview)
	e.Image = strings.TrimSpace(e.Image)
	e.Venue = strings.TrimSpace(e.Venue)
	e.Location = strings.TrimSpace(e.Location)
	e.Date = strings.TrimSpace(e.Date)
	e.Time = strings.TrimSpace(e.Time)
	e.Mode = strings.TrimSpace(e.Mode)
	e.Audience = strings.TrimSpace(e.Audience)
	e.Organizer = strings.TrimSpace(e.Organizer)
	e.Agenda = trimItems(e.Agenda, false)
	e.Tags = trimItems(e.Tags, true)
}

// trimItems trims every item and drops blanks. Tags behave like a set, so with
// dedupe the first occurrence of each value is kept.
func trimItems(items []string, dedupe bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

func requireText(c *collector, field, label, value string) {
	if value == "" {
		c.add(field, label+" is required")
	}
}

func checkText(c *collector, field, label, value string, limit int) {
	if value == "" {
		c.add(field, label+" is required")
		return
	}
	if utf8.RuneCountInString(value) > limit {
		c.add(field, label+" cannot exceed "+strconv.Itoa(limit)+" characters")
	}
}
