package dto

import (
	"errors"

	"appointer/internal/domains/businesshours/model"
	"appointer/internal/scheduling/calendar"
	gDto "appointer/shared/dto"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

var errCloseBeforeOpen = errors.New("close_time must be after open_time")

// UpsertBusinessHoursRequest replaces the hours of one weekday. Times are
// required only when the day is open.
type UpsertBusinessHoursRequest struct {
	IsOpen    *bool  `json:"is_open"    validate:"required"`
	OpenTime  string `json:"open_time"  validate:"required_if=IsOpen true,omitempty,clock"`
	CloseTime string `json:"close_time" validate:"required_if=IsOpen true,omitempty,clock"`
}

// Interval parses and checks the opening span of an open day.
func (r *UpsertBusinessHoursRequest) Interval() (calendar.Interval, error) {
	if r.IsOpen == nil || !*r.IsOpen {
		return calendar.Interval{}, nil
	}

	open, err := calendar.ParseClock(r.OpenTime)
	if err != nil {
		return calendar.Interval{}, err
	}

	closing, err := calendar.ParseClock(r.CloseTime)
	if err != nil {
		return calendar.Interval{}, err
	}

	if !open.Before(closing) {
		return calendar.Interval{}, errCloseBeforeOpen
	}

	return calendar.Interval{Start: open, End: closing}, nil
}

func (r *UpsertBusinessHoursRequest) ToModel(weekday calendar.Weekday, span calendar.Interval, user string) model.BusinessHours {
	return model.BusinessHours{
		Weekday:   weekday,
		OpenTime:  span.Start,
		CloseTime: span.End,
		IsOpen:    r.IsOpen != nil && *r.IsOpen,
		Metadata:  gModel.NewMetadata(timezone.Now(), user),
	}
}

type BusinessHoursResponse struct {
	Weekday   calendar.Weekday `json:"weekday"`
	DayName   string           `json:"day_name"`
	IsOpen    bool             `json:"is_open"`
	OpenTime  *calendar.Clock  `json:"open_time"`
	CloseTime *calendar.Clock  `json:"close_time"`
	gDto.Metadata
}

func (r *BusinessHoursResponse) FromModel(m model.BusinessHours) {
	r.Weekday = m.Weekday
	r.DayName = m.Weekday.String()
	r.IsOpen = m.IsOpen
	r.OpenTime, r.CloseTime = nil, nil

	if m.IsOpen {
		open, closing := m.OpenTime, m.CloseTime
		r.OpenTime = &open
		r.CloseTime = &closing
	}

	r.Metadata.FromModel(m.Metadata)
}

// WeekResponse always lists the seven days Monday first; days without a
// stored row are reported closed.
type WeekResponse struct {
	Days []BusinessHoursResponse `json:"days"`
}

func (w *WeekResponse) FromModels(rows []model.BusinessHours) {
	byDay := make(map[calendar.Weekday]model.BusinessHours, len(rows))
	for _, row := range rows {
		byDay[row.Weekday] = row
	}

	w.Days = make([]BusinessHoursResponse, 0, 7)

	for day := calendar.Monday; day <= calendar.Sunday; day++ {
		row, ok := byDay[day]
		if !ok {
			row = model.BusinessHours{Weekday: day}
		}

		var res BusinessHoursResponse
		res.FromModel(row)
		w.Days = append(w.Days, res)
	}
}
