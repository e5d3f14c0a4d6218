package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	msgInvalidDate       = "Invalid date format"
	msgInvalidTimeFormat = "Invalid time format"
	msgInvalidTimeValues = "Invalid time values"

	dateLayout = "2006-01-02"
)

var (
	errInvalidDate       = errors.New(msgInvalidDate)
	errInvalidTimeFormat = errors.New(msgInvalidTimeFormat)
	errInvalidTimeValues = errors.New(msgInvalidTimeValues)
)

// Layouts tried in order. Timestamps carrying a zone are converted to UTC before
// the date portion is taken; zone-less timestamps are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var usDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
}

// NormalizeDate converts a canonical date, a full timestamp, or an MM/DD/YYYY date
// into YYYY-MM-DD.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errInvalidDate
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.Format(dateLayout), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(dateLayout), nil
		}
	}
	for _, layout := range usDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", errInvalidDate
}

var (
	timePeriod = regexp.MustCompile(`(?i)^(.*?)\s*(AM|PM)$`)
	timeDigits = regexp.MustCompile(`^[0-9]{1,2}$`)
	minDigits  = regexp.MustCompile(`^[0-9]{2}$`)
)

// NormalizeTime converts H:MM / HH:MM, optionally followed by AM or PM, into
// 24-hour HH:MM. 12 AM maps to 00 and 12 PM stays 12.
func NormalizeTime(value string) (string, error) {
	value = strings.TrimSpace(value)

	period := ""
	if m := timePeriod.FindStringSubmatch(value); m != nil {
		value = strings.TrimSpace(m[1])
		period = strings.ToUpper(m[2])
	}

	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok {
		return "", errInvalidTimeFormat
	}
	if !timeDigits.MatchString(hourPart) || !minDigits.MatchString(minutePart) {
		return "", errInvalidTimeFormat
	}

	hour, _ := strconv.Atoi(hourPart)
	minute, _ := strconv.Atoi(minutePart)

	switch period {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", errInvalidTimeValues
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
