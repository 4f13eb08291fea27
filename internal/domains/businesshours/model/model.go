package model

import (
	"appointer/internal/scheduling/calendar"
	"appointer/shared/model"
)

const (
	TableName  = "business_hours"
	EntityName = "business_hours"

	FieldWeekday   = "weekday"
	FieldOpenTime  = "open_time"
	FieldCloseTime = "close_time"
	FieldIsOpen    = "is_open"
)

// BusinessHours is one weekday of the weekly calendar. A missing row or
// IsOpen=false means the day is closed.
type BusinessHours struct {
	Weekday   calendar.Weekday `db:"weekday"`
	OpenTime  calendar.Clock   `db:"open_time"`
	CloseTime calendar.Clock   `db:"close_time"`
	IsOpen    bool             `db:"is_open"`
	model.Metadata
}

func (b BusinessHours) Hours() calendar.Hours {
	return calendar.Hours{Open: b.OpenTime, Close: b.CloseTime}
}

// Policy builds the weekly lookup from stored rows.
func Policy(rows []BusinessHours) calendar.WeeklyPolicy {
	days := make(map[calendar.Weekday]calendar.Hours, len(rows))

	for _, row := range rows {
		if row.IsOpen {
			days[row.Weekday] = row.Hours()
		}
	}

	return calendar.NewWeeklyPolicy(days)
}
