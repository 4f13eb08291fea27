package businesshours

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	"appointer/internal/domains/businesshours/model/dto"
	"appointer/internal/domains/businesshours/service"
	"appointer/internal/scheduling/calendar"
	"appointer/shared/constant"
	"appointer/shared/failure"
	"appointer/shared/validator"
	"appointer/transport/http/response"
)

const paramWeekday = "weekday"

type Handler struct {
	service service.BusinessHours
	otel    otel.Otel
}

func New(service service.BusinessHours, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/business-hours", func(r chi.Router) {
		r.Get("/", handler.GetWeek)
		r.Put("/{weekday}", handler.UpsertDay)
	})
}

func (handler *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWeek")
	defer scope.End()

	res, err := handler.service.List(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get business hours")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpsertDay sets the hours of one weekday, 1 = Monday through 7 = Sunday.
func (handler *Handler) UpsertDay(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertDay")
	defer scope.End()

	day, err := strconv.Atoi(chi.URLParam(r, paramWeekday))
	if err != nil || !calendar.Weekday(day).Valid() {
		response.WithError(w, failure.BadRequestFromString("weekday must be between 1 (Monday) and 7 (Sunday)"))

		return
	}

	req := dto.UpsertBusinessHoursRequest{}
	if err = validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Upsert(ctx, calendar.Weekday(day), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int("weekday", day).Msg("failed to upsert business hours")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
