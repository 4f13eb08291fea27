// Package slots derives bookable start times from an open window.
package slots

import (
	"time"

	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
)

// DefaultGranularity is the step used when none is configured.
const DefaultGranularity = time.Hour

// Generate returns every start time in [windowStart, windowEnd) spaced by
// granularity, skipping candidates whose start equals one of booked.
//
// Only exact start matches are removed. A 90 minute booking at 09:00 still
// leaves 10:00 in the result; callers that need an overlap-safe answer use
// Free, and every write is re-validated by the conflict check regardless.
func Generate(windowStart, windowEnd calendar.Clock, granularity time.Duration, booked []calendar.Clock) []calendar.Clock {
	step := stepOf(granularity)
	if step <= 0 || !windowStart.Before(windowEnd) {
		return []calendar.Clock{}
	}

	taken := make(map[calendar.Clock]struct{}, len(booked))
	for _, start := range booked {
		taken[start] = struct{}{}
	}

	out := make([]calendar.Clock, 0, int(windowEnd-windowStart)/int(step)+1)

	for candidate := windowStart; candidate < windowEnd; candidate += step {
		if _, ok := taken[candidate]; ok {
			continue
		}

		out = append(out, candidate)
	}

	return out
}

// Free returns start times within window at which a booking of the given
// duration fits entirely inside the window without intersecting any busy
// interval.
func Free(window calendar.Interval, granularity, duration time.Duration, busy []calendar.Interval) []calendar.Clock {
	step := stepOf(granularity)
	length := stepOf(duration)

	if step <= 0 || length <= 0 || window.Empty() {
		return []calendar.Clock{}
	}

	out := []calendar.Clock{}

	for candidate := window.Start; candidate+length <= window.End; candidate += step {
		span := calendar.Interval{Start: candidate, End: candidate + length}
		if overlapsAny(span, busy) {
			continue
		}

		out = append(out, candidate)
	}

	return out
}

func overlapsAny(span calendar.Interval, busy []calendar.Interval) bool {
	for _, b := range busy {
		if conflict.Collides(b, span) {
			return true
		}
	}

	return false
}

func stepOf(d time.Duration) calendar.Clock {
	return calendar.Clock(d / time.Minute)
}
