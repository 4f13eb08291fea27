package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"appointer/internal/domains/booking/model"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared"
	gDto "appointer/shared/dto"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

const defaultBusinessType = "appointment"

var ErrEmptyUpdate = errors.New("update request cannot be empty")

type CreateBookingRequest struct {
	// CustomerID lets an administrator book on behalf of a customer.
	CustomerID      string `json:"customer_id"      validate:"omitempty,max=64"`
	ServiceName     string `json:"service_name"     validate:"required,max=100"`
	Date            string `json:"date"             validate:"required,date"`
	StartTime       string `json:"start_time"       validate:"required,clock"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,max=1440"`
	SpecialistID    string `json:"specialist_id"    validate:"omitempty,max=64"`
	ResourceID      string `json:"resource_id"      validate:"omitempty,max=64"`
	BusinessType    string `json:"business_type"    validate:"omitempty,max=50"`
	Notes           string `json:"notes"            validate:"omitempty,max=500"`
}

// Parse resolves the scheduling fields. Once the validator has run only the
// selector and a span running past midnight can fail.
func (c *CreateBookingRequest) Parse() (calendar.Date, calendar.Interval, conflict.Selector, error) {
	date, err := calendar.ParseDate(c.Date)
	if err != nil {
		return date, calendar.Interval{}, conflict.None(), err
	}

	start, err := calendar.ParseClock(c.StartTime)
	if err != nil {
		return date, calendar.Interval{}, conflict.None(), err
	}

	sel, err := conflict.ParseSelector(c.SpecialistID, c.ResourceID)
	if err != nil {
		return date, calendar.Interval{}, sel, err
	}

	span := calendar.Span(start, time.Duration(c.DurationMinutes)*time.Minute)
	if !span.WithinDay() {
		return date, span, sel, calendar.ErrPastMidnight
	}

	return date, span, sel, nil
}

func (c *CreateBookingRequest) ToModel(customerID string, date calendar.Date, span calendar.Interval, sel conflict.Selector, user string) model.Booking {
	businessType := c.BusinessType
	if businessType == "" {
		businessType = defaultBusinessType
	}

	booking := model.Booking{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		ServiceName:     c.ServiceName,
		Date:            date,
		StartTime:       span.Start,
		DurationMinutes: int(span.Duration() / time.Minute),
		Status:          model.StatusConfirmed,
		BusinessType:    businessType,
		PaymentStatus:   model.PaymentPending,
		Notes:           c.Notes,
		Metadata:        gModel.NewMetadata(timezone.Now(), user),
	}
	booking.SetSelector(sel)

	return booking
}

// UpdateBookingRequest overwrites only the fields present. Sending either
// specialist_id or resource_id rebinds the booking: the one left out is
// cleared, and both empty makes it a plain time-slot booking.
type UpdateBookingRequest struct {
	ServiceName     *string `json:"service_name"     validate:"omitempty,max=100"`
	Date            *string `json:"date"             validate:"omitempty,date"`
	StartTime       *string `json:"start_time"       validate:"omitempty,clock"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0,max=1440"`
	SpecialistID    *string `json:"specialist_id"    validate:"omitempty,max=64"`
	ResourceID      *string `json:"resource_id"      validate:"omitempty,max=64"`
	BusinessType    *string `json:"business_type"    validate:"omitempty,max=50"`
	Notes           *string `json:"notes"            validate:"omitempty,max=500"`
}

func (u *UpdateBookingRequest) IsEmpty() bool {
	return *u == UpdateBookingRequest{}
}

func (u *UpdateBookingRequest) rebinds() bool {
	return u.SpecialistID != nil || u.ResourceID != nil
}

// Apply returns b with the present fields overwritten.
func (u *UpdateBookingRequest) Apply(b model.Booking) (model.Booking, error) {
	if u.IsEmpty() {
		return b, ErrEmptyUpdate
	}

	if u.ServiceName != nil {
		b.ServiceName = *u.ServiceName
	}

	if u.BusinessType != nil {
		b.BusinessType = *u.BusinessType
	}

	if u.Notes != nil {
		b.Notes = *u.Notes
	}

	if u.Date != nil {
		date, err := calendar.ParseDate(*u.Date)
		if err != nil {
			return b, err
		}

		b.Date = date
	}

	if u.StartTime != nil {
		start, err := calendar.ParseClock(*u.StartTime)
		if err != nil {
			return b, err
		}

		b.StartTime = start
	}

	if u.DurationMinutes != nil {
		b.DurationMinutes = *u.DurationMinutes
	}

	if u.rebinds() {
		sel, err := conflict.ParseSelector(deref(u.SpecialistID), deref(u.ResourceID))
		if err != nil {
			return b, err
		}

		b.SetSelector(sel)
	}

	if !b.Span().WithinDay() {
		return b, calendar.ErrPastMidnight
	}

	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// Rescheduled reports whether next occupies a different slot than prev.
func Rescheduled(prev, next model.Booking) bool {
	return !prev.Date.Equal(next.Date) ||
		prev.Span() != next.Span() ||
		prev.Selector() != next.Selector()
}

type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed refunded"`
}

type BookingResponse struct {
	ID              string         `json:"id"`
	CustomerID      string         `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	ServiceName     string         `json:"service_name"`
	Date            calendar.Date  `json:"date"`
	StartTime       calendar.Clock `json:"start_time"`
	EndTime         calendar.Clock `json:"end_time"`
	DurationMinutes int            `json:"duration_minutes"`
	Status          string         `json:"status"`
	ResourceKind    string         `json:"resource_kind"`
	SpecialistID    *string        `json:"specialist_id"`
	ResourceID      *string        `json:"resource_id"`
	BusinessType    string         `json:"business_type"`
	PaymentStatus   string         `json:"payment_status"`
	Notes           string         `json:"notes"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.CustomerID = m.CustomerID
	r.CustomerName = deref(m.CustomerName)
	r.CustomerEmail = deref(m.CustomerEmail)
	r.ServiceName = m.ServiceName
	r.Date = m.Date
	r.StartTime = m.StartTime
	r.EndTime = m.Span().End
	r.DurationMinutes = m.DurationMinutes
	r.Status = m.Status
	r.ResourceKind = m.Selector().Kind().String()
	r.SpecialistID = m.SpecialistID
	r.ResourceID = m.ResourceID
	r.BusinessType = m.BusinessType
	r.PaymentStatus = m.PaymentStatus
	r.Notes = m.Notes
	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, m := range models {
		r.Bookings[i].FromModel(m)
	}
}

// SlotQuery asks for the free start times of one resource dimension on one
// day. A non-zero Duration switches to overlap-aware slots.
type SlotQuery struct {
	Selector conflict.Selector
	Date     calendar.Date
	Duration time.Duration
}

type SlotsResponse struct {
	Date               calendar.Date    `json:"date"`
	ResourceKind       string           `json:"resource_kind"`
	ResourceID         string           `json:"resource_id,omitempty"`
	GranularityMinutes int              `json:"granularity_minutes"`
	DurationMinutes    int              `json:"duration_minutes,omitempty"`
	Slots              []calendar.Clock `json:"slots"`
}
