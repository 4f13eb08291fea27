package businesshours_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	otelMocks "appointer/infras/otel/mocks"
	"appointer/internal/domains/businesshours/model/dto"
	"appointer/internal/domains/businesshours/service"
	"appointer/internal/handlers/businesshours"
	"appointer/internal/scheduling/calendar"
)

type fakeHours struct {
	service.BusinessHours

	upserted []calendar.Weekday
}

func (f *fakeHours) Upsert(_ context.Context, weekday calendar.Weekday, _ dto.UpsertBusinessHoursRequest) (dto.BusinessHoursResponse, error) {
	f.upserted = append(f.upserted, weekday)

	return dto.BusinessHoursResponse{}, nil
}

func (f *fakeHours) List(_ context.Context) (dto.WeekResponse, error) {
	return dto.WeekResponse{}, nil
}

func serve(svc service.BusinessHours, method, target, body string) *httptest.ResponseRecorder {
	handler := businesshours.New(svc, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestUpsertDay(t *testing.T) {
	const open = `{"is_open":true,"open_time":"09:00","close_time":"17:00"}`

	tests := []struct {
		name    string
		weekday string
		body    string
		code    int
		want    []calendar.Weekday
	}{
		{name: "monday", weekday: "1", body: open, code: http.StatusOK, want: []calendar.Weekday{1}},
		{name: "sunday is seven", weekday: "7", body: `{"is_open":false}`, code: http.StatusOK, want: []calendar.Weekday{7}},
		{name: "zero", weekday: "0", body: open, code: http.StatusBadRequest},
		{name: "eight", weekday: "8", body: open, code: http.StatusBadRequest},
		{name: "name instead of number", weekday: "mon", body: open, code: http.StatusBadRequest},
		{name: "missing is_open", weekday: "2", body: `{"open_time":"09:00","close_time":"17:00"}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeHours{}
			rec := serve(svc, http.MethodPut, "/business-hours/"+tt.weekday, tt.body)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.want, svc.upserted)
		})
	}
}

func TestGetWeek(t *testing.T) {
	rec := serve(&fakeHours{}, http.MethodGet, "/business-hours", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
