package hours

import (
	"regexp"
	"strings"
	"time"

	"github.com/mumbaitrails/trails_core/internal/models"
)

// CivilZone is the fixed civil timezone all opening hours and itinerary
// times are evaluated in (Asia/Kolkata, UTC+05:30), independent of where
// the server runs. A fixed zone avoids a tzdata dependency; IST has no DST.
var CivilZone = time.FixedZone("IST", 5*3600+30*60)

// civilOffset is appended to timestamps that carry no zone marker, so
// bare local-looking strings are read as Mumbai time rather than UTC
const civilOffset = "+05:30"

// zoneMarker matches a trailing Z or an explicit +HH:MM / +HHMM offset
var zoneMarker = regexp.MustCompile(`[zZ]$|[+-]\d{2}:?\d{2}$`)

// parseLayouts are tried in order against the offset-qualified string
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
}

// ParseLocal parses a timestamp-ish string in the city's civil timezone.
// Strings without an explicit zone marker are interpreted at +05:30.
// Returns nil for empty or unparseable input; it never fails, because a
// badly formatted time means "unspecified", not an error.
func ParseLocal(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !zoneMarker.MatchString(value) {
		value += civilOffset
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.In(CivilZone)
			return &t
		}
	}
	return nil
}

// NormalizeOpenAt converts a timestamp-ish string into the weekday and
// HH:MM wall-clock time it lands on in the civil timezone. Returns nil
// when the input is absent or unparseable.
func NormalizeOpenAt(value string) *models.OpenContext {
	t := ParseLocal(value)
	if t == nil {
		return nil
	}
	return ContextAt(*t)
}

// ContextAt derives the open-at context for an instant
func ContextAt(t time.Time) *models.OpenContext {
	local := t.In(CivilZone)
	return &models.OpenContext{
		Weekday: models.Weekday(strings.ToUpper(local.Format("Mon"))),
		Time:    local.Format("15:04"),
	}
}

// IsOpenAt reports whether at least one interval covers the given weekday
// and time. Bounds are inclusive; comparison is lexicographic, which is
// valid for zero-padded 24h HH:MM strings. Intervals whose close time
// precedes their open time (midnight wraparound) never match; wraparound
// hours must be stored split at midnight.
func IsOpenAt(intervals []models.OpeningHour, weekday models.Weekday, tm string) bool {
	for _, interval := range intervals {
		if interval.Day == weekday && interval.OpenTime <= tm && interval.CloseTime >= tm {
			return true
		}
	}
	return false
}
