// Package conflict decides whether a candidate booking may be written.
//
// The check is pure: callers load the open windows and the confirmed bookings
// sharing the candidate's selector and date, and Check returns a Decision.
// Serializing the read and the subsequent write is the caller's job.
package conflict

import (
	"fmt"

	"appointer/internal/scheduling/calendar"
)

// Reason classifies a rejection.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonOutsideAvailability
	ReasonOverlap
)

func (r Reason) String() string {
	switch r {
	case ReasonOutsideAvailability:
		return "outside_availability"
	case ReasonOverlap:
		return "overlap"
	default:
		return "none"
	}
}

// Booked is an existing confirmed booking as seen by the detector.
type Booked struct {
	ID   string
	Span calendar.Interval
}

// Candidate is the booking being validated.
type Candidate struct {
	Selector Selector
	Span     calendar.Interval
	// Exclude skips the booking with this id, so a reschedule never collides
	// with its own current slot.
	Exclude string
	// Bounded requires the span to fit inside one of the windows even when the
	// selector is not a specialist. Specialists are always bounded.
	Bounded bool
}

// Decision is the outcome of Check. Conflict is set for ReasonOverlap.
type Decision struct {
	Accepted bool
	Reason   Reason
	Conflict *Booked
}

func accept() Decision {
	return Decision{Accepted: true}
}

// Check validates c against the open windows and the existing bookings.
// existing must already be restricted to c's selector and date.
func Check(c Candidate, windows []calendar.Interval, existing []Booked) Decision {
	if c.Selector.IsSpecialist() || c.Bounded {
		if !covered(c.Span, windows) {
			return Decision{Reason: ReasonOutsideAvailability}
		}
	}

	for i := range existing {
		b := existing[i]
		if b.ID != "" && b.ID == c.Exclude {
			continue
		}

		if Collides(b.Span, c.Span) {
			return Decision{Reason: ReasonOverlap, Conflict: &b}
		}
	}

	return accept()
}

// Collides is the half-open overlap test with one addition: two spans that
// start at the same minute always collide, even if one has no length.
func Collides(a, b calendar.Interval) bool {
	return a.Start == b.Start || a.Overlaps(b)
}

func covered(span calendar.Interval, windows []calendar.Interval) bool {
	for _, w := range windows {
		if w.Contains(span) {
			return true
		}
	}

	return false
}

// Message renders a client-facing explanation naming the resource kind.
func (d Decision) Message(sel Selector) string {
	switch d.Reason {
	case ReasonOutsideAvailability:
		if sel.IsSpecialist() {
			return "the specialist is not available for the whole requested time"
		}

		return fmt.Sprintf("the requested time is outside the opening hours for this %s", sel.Kind())
	case ReasonOverlap:
		if d.Conflict != nil {
			return fmt.Sprintf("the %s is already booked from %s to %s", sel.Kind(), d.Conflict.Span.Start, d.Conflict.Span.End)
		}

		return fmt.Sprintf("the %s is already booked at the requested time", sel.Kind())
	default:
		return ""
	}
}
