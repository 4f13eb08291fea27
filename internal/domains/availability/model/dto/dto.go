package dto

import (
	"errors"

	"github.com/google/uuid"

	"appointer/internal/domains/availability/model"
	"appointer/internal/scheduling/calendar"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

var errEmptyWindow = errors.New("end_time must be after start_time")

// WindowFields is the replaceable part of a window.
type WindowFields struct {
	Date        string `json:"date"         validate:"required,date"`
	StartTime   string `json:"start_time"   validate:"required,clock"`
	EndTime     string `json:"end_time"     validate:"required,clock"`
	IsAvailable *bool  `json:"is_available"`
	Notes       string `json:"notes"        validate:"omitempty,max=500"`
}

// Parse returns the date and the half-open span. Both strings were already
// checked by the validator, so only the ordering can fail here.
func (f WindowFields) Parse() (calendar.Date, calendar.Interval, error) {
	date, err := calendar.ParseDate(f.Date)
	if err != nil {
		return date, calendar.Interval{}, err
	}

	start, err := calendar.ParseClock(f.StartTime)
	if err != nil {
		return date, calendar.Interval{}, err
	}

	end, err := calendar.ParseClock(f.EndTime)
	if err != nil {
		return date, calendar.Interval{}, err
	}

	span := calendar.Interval{Start: start, End: end}
	if span.Empty() {
		return date, span, errEmptyWindow
	}

	return date, span, nil
}

func (f WindowFields) available() bool {
	return f.IsAvailable == nil || *f.IsAvailable
}

type CreateWindowRequest struct {
	SpecialistID string `json:"specialist_id" validate:"required"`
	WindowFields
}

func (r CreateWindowRequest) ToModel(date calendar.Date, span calendar.Interval, user string) model.Window {
	return model.Window{
		ID:           uuid.NewString(),
		SpecialistID: r.SpecialistID,
		Date:         date,
		StartTime:    span.Start,
		EndTime:      span.End,
		IsAvailable:  r.available(),
		Notes:        r.Notes,
		Metadata:     gModel.NewMetadata(timezone.Now(), user),
	}
}

// UpdateWindowRequest replaces every field of the window except its specialist.
type UpdateWindowRequest struct {
	WindowFields
}

func (r UpdateWindowRequest) Fields(date calendar.Date, span calendar.Interval, user string) map[string]any {
	return map[string]any{
		model.FieldDate:          date,
		model.FieldStartTime:     span.Start,
		model.FieldEndTime:       span.End,
		model.FieldIsAvailable:   r.available(),
		model.FieldNotes:         r.Notes,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}
}

type WindowResponse struct {
	ID           string         `json:"id"`
	SpecialistID string         `json:"specialist_id"`
	Date         calendar.Date  `json:"date"`
	StartTime    calendar.Clock `json:"start_time"`
	EndTime      calendar.Clock `json:"end_time"`
	IsAvailable  bool           `json:"is_available"`
	Notes        string         `json:"notes"`
	gDto.Metadata
}

func (r *WindowResponse) FromModel(m model.Window) {
	r.ID = m.ID
	r.SpecialistID = m.SpecialistID
	r.Date = m.Date
	r.StartTime = m.StartTime
	r.EndTime = m.EndTime
	r.IsAvailable = m.IsAvailable
	r.Notes = m.Notes
	r.Metadata.FromModel(m.Metadata)
}

type ListWindowsResponse struct {
	Windows []WindowResponse `json:"windows"`
}

func (r *ListWindowsResponse) FromModels(models []model.Window) {
	r.Windows = make([]WindowResponse, len(models))
	for i, m := range models {
		r.Windows[i].FromModel(m)
	}
}

type AffectedBookingResponse struct {
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
}

func (r *AffectedBookingResponse) FromModel(m model.AffectedBooking) {
	r.ID = m.ID
	r.CustomerID = m.CustomerID
	r.CustomerName = m.CustomerName
	r.CustomerEmail = m.CustomerEmail
	r.ServiceName = m.ServiceName
	r.Date = m.Date
	r.StartTime = m.StartTime
	r.EndTime = m.Interval().End
	r.DurationMinutes = m.DurationMinutes
	r.Status = m.Status
}

type AffectedBookingsResponse struct {
	WindowID string                    `json:"window_id"`
	Bookings []AffectedBookingResponse `json:"bookings"`
}
