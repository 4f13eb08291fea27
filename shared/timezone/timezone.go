package timezone

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/shared/constant"
)

var (
	appLocation *time.Location
	locMu       sync.RWMutex
)

func init() {
	cfg := config.Get()

	name := cfg.App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC")
		loc = time.UTC
	}

	UseLocation(loc)
}

// UseLocation replaces the application location.
func UseLocation(loc *time.Location) {
	locMu.Lock()
	defer locMu.Unlock()

	appLocation = loc
}

// GetLocation returns the current application timezone location
func GetLocation() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()

	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

// Now returns the current time in the application timezone
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse parses a time string in the application timezone
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return Parse(constant.DayFormat, value)
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// DateOf drops the wall clock, keeping the calendar day of t as stored.
// Dates coming back from postgres DATE columns are UTC midnight, so the
// year/month/day fields are read as-is rather than converted.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, GetLocation())
}

// Today is midnight of the current day in the application timezone.
func Today() time.Time {
	return DateOf(Now())
}

// IsPastDate reports whether the calendar day of t is strictly before today.
func IsPastDate(t time.Time) bool {
	return DateOf(t).Before(Today())
}

// SameDay compares calendar days only.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
