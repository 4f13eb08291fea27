// Package params reads the scheduling query parameters shared by the slot
// endpoints.
package params

import (
	"fmt"
	"net/http"
	"strconv"

	"appointer/internal/scheduling/calendar"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

// Date reads the required ?date=YYYY-MM-DD.
func Date(r *http.Request) (calendar.Date, error) {
	raw := r.URL.Query().Get(constant.RequestParamDate)
	if raw == constant.Empty {
		return calendar.Date{}, failure.BadRequestFromString("date is required")
	}

	date, err := calendar.ParseDate(raw)
	if err != nil {
		return date, failure.BadRequestFromString(fmt.Sprintf("date %q must be YYYY-MM-DD", raw))
	}

	return date, nil
}

// OptionalDate reads ?date= when present.
func OptionalDate(r *http.Request) (*calendar.Date, error) {
	if r.URL.Query().Get(constant.RequestParamDate) == constant.Empty {
		return nil, nil
	}

	date, err := Date(r)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

// Duration reads the optional ?duration= in minutes; zero means absent.
func Duration(r *http.Request) (int, error) {
	raw := r.URL.Query().Get(constant.RequestParamDuration)
	if raw == constant.Empty {
		return 0, nil
	}

	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 0, failure.BadRequestFromString("duration must be a non-negative number of minutes")
	}

	return minutes, nil
}

// Equals builds an AND filter from the query parameters that are present.
func Equals(r *http.Request, table string, fields ...string) gDto.FilterGroup {
	filters := []any{}

	for _, field := range fields {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filters = append(filters, gDto.Eq(table, field, value))
		}
	}

	return gDto.And(filters...)
}
