package model

import (
	"time"

	"appointer/internal/scheduling/calendar"
	"appointer/shared/model"
)

const (
	TableName  = "availability_windows"
	EntityName = "availability"

	FieldID           = "id"
	FieldSpecialistID = "specialist_id"
	FieldDate         = "date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldIsAvailable  = "is_available"
	FieldNotes        = "notes"
)

// Window narrows one specialist's day. IsAvailable=false records an explicit
// absence and never opens time.
type Window struct {
	ID           string         `db:"id"`
	SpecialistID string         `db:"specialist_id"`
	Date         calendar.Date  `db:"date"`
	StartTime    calendar.Clock `db:"start_time"`
	EndTime      calendar.Clock `db:"end_time"`
	IsAvailable  bool           `db:"is_available"`
	Notes        string         `db:"notes"`
	model.Metadata
}

func (w Window) Interval() calendar.Interval {
	return calendar.Interval{Start: w.StartTime, End: w.EndTime}
}

// AffectedBooking is the slice of a confirmed booking an administrator needs
// when a window shrinks or goes away.
type AffectedBooking struct {
	ID              string         `db:"id"`
	CustomerID      string         `db:"customer_id"`
	CustomerName    string         `db:"customer_name"`
	CustomerEmail   string         `db:"customer_email"`
	ServiceName     string         `db:"service_name"`
	Date            calendar.Date  `db:"date"`
	StartTime       calendar.Clock `db:"start_time"`
	DurationMinutes int            `db:"duration_minutes"`
	Status          string         `db:"status"`
}

func (b AffectedBooking) Interval() calendar.Interval {
	return calendar.Span(b.StartTime, time.Duration(b.DurationMinutes)*time.Minute)
}
