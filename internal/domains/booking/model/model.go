package model

import (
	"slices"
	"time"

	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared/constant"
	"appointer/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldCustomerID      = "customer_id"
	FieldServiceName     = "service_name"
	FieldDate            = "date"
	FieldStartTime       = "start_time"
	FieldDurationMinutes = "duration_minutes"
	FieldStatus          = "status"
	FieldSpecialistID    = "specialist_id"
	FieldResourceID      = "resource_id"
	FieldBusinessType    = "business_type"
	FieldPaymentStatus   = "payment_status"
	FieldNotes           = "notes"

	usersTable = "users"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

func ValidPaymentStatus(status string) bool {
	return slices.Contains(PaymentStatuses, status)
}

// Booking is one ledger row. At most one of SpecialistID and ResourceID is
// set; neither means a plain time-slot booking. CustomerName and
// CustomerEmail are read through the users join and never written.
type Booking struct {
	ID              string         `db:"id"`
	CustomerID      string         `db:"customer_id"`
	ServiceName     string         `db:"service_name"`
	Date            calendar.Date  `db:"date"`
	StartTime       calendar.Clock `db:"start_time"`
	DurationMinutes int            `db:"duration_minutes"`
	Status          string         `db:"status"`
	SpecialistID    *string        `db:"specialist_id"`
	ResourceID      *string        `db:"resource_id"`
	BusinessType    string         `db:"business_type"`
	PaymentStatus   string         `db:"payment_status"`
	Notes           string         `db:"notes"`
	CustomerName    *string        `column:"full_name" db:"customer_name"  table:"users"`
	CustomerEmail   *string        `column:"email"     db:"customer_email" table:"users"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN " + usersTable + " ON " + usersTable + ".id = " + TableName + "." + FieldCustomerID
}

func (b Booking) Selector() conflict.Selector {
	switch {
	case b.ResourceID != nil && *b.ResourceID != "":
		return conflict.Resource(*b.ResourceID)
	case b.SpecialistID != nil && *b.SpecialistID != "":
		return conflict.Specialist(*b.SpecialistID)
	default:
		return conflict.None()
	}
}

// SetSelector stores sel in the two nullable id columns.
func (b *Booking) SetSelector(sel conflict.Selector) {
	b.SpecialistID = nil
	b.ResourceID = nil

	switch {
	case sel.IsSpecialist():
		id := sel.ID()
		b.SpecialistID = &id
	case sel.IsResource():
		id := sel.ID()
		b.ResourceID = &id
	}
}

func (b Booking) Duration() time.Duration {
	return time.Duration(b.DurationMinutes) * time.Minute
}

func (b Booking) Span() calendar.Interval {
	return calendar.Span(b.StartTime, b.Duration())
}

func (b Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Booked is the view the conflict check works on.
func (b Booking) Booked() conflict.Booked {
	return conflict.Booked{ID: b.ID, Span: b.Span()}
}

// Mutable is every column a lifecycle write may change.
func (b Booking) Mutable() map[string]any {
	return map[string]any{
		FieldServiceName:         b.ServiceName,
		FieldDate:                b.Date,
		FieldStartTime:           b.StartTime,
		FieldDurationMinutes:     b.DurationMinutes,
		FieldStatus:              b.Status,
		FieldSpecialistID:        b.SpecialistID,
		FieldResourceID:          b.ResourceID,
		FieldBusinessType:        b.BusinessType,
		FieldPaymentStatus:       b.PaymentStatus,
		FieldNotes:               b.Notes,
		constant.FieldModifiedAt: b.ModifiedAt,
		constant.FieldModifiedBy: b.ModifiedBy,
	}
}
