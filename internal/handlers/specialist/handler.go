package specialist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	bookingService "appointer/internal/domains/booking/service"
	"appointer/internal/domains/specialist/model"
	"appointer/internal/domains/specialist/model/dto"
	"appointer/internal/domains/specialist/service"
	"appointer/internal/handlers/params"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/validator"
	"appointer/transport/http/response"
)

type Handler struct {
	service  service.Specialist
	bookings bookingService.Booking
	otel     otel.Otel
}

func New(service service.Specialist, bookings bookingService.Booking, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		bookings: bookings,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/specialists", func(r chi.Router) {
		r.Post("/", handler.CreateSpecialist)
		r.Get("/", handler.GetSpecialists)
		r.Get("/{id}", handler.GetSpecialist)
		r.Get("/{id}/slots", handler.GetSpecialistSlots)
		r.Patch("/{id}", handler.UpdateSpecialist)
		r.Delete("/{id}", handler.DeleteSpecialist)
	})
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

func (handler *Handler) CreateSpecialist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSpecialist")
	defer scope.End()

	req := dto.CreateSpecialistRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid specialist request")

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to create specialist")

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// GetSpecialists supports ?active= and ?specialty= filters.
func (handler *Handler) GetSpecialists(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSpecialists")
	defer scope.End()

	query := gDto.QueryParams{}
	query.FromRequest(r, true)
	query.Restrict(model.TableName, model.FieldName, model.FieldSpecialty, constant.FieldCreatedAt)

	res, err := handler.service.GetAll(ctx, query, params.Equals(r, model.TableName, model.FieldActive, model.FieldSpecialty))
	if err != nil {
		fail(w, scope, err, "failed to get specialists")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) GetSpecialist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSpecialist")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "failed to get specialist")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSpecialistSlots lists free start times inside the specialist's windows.
func (handler *Handler) GetSpecialistSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSpecialistSlots")
	defer scope.End()

	date, err := params.Date(r)
	if err != nil {
		fail(w, scope, err, "invalid slot date")

		return
	}

	minutes, err := params.Duration(r)
	if err != nil {
		fail(w, scope, err, "invalid slot duration")

		return
	}

	res, err := handler.bookings.ListSpecialistSlots(ctx, chi.URLParam(r, constant.RequestParamID), date, minutes)
	if err != nil {
		fail(w, scope, err, "failed to list specialist slots")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) UpdateSpecialist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSpecialist")
	defer scope.End()

	req := dto.UpdateSpecialistRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid specialist update")

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to update specialist")

		return
	}

	response.WithMessage(w, http.StatusOK, "specialist updated")
}

// DeleteSpecialist refuses specialists that bookings reference.
func (handler *Handler) DeleteSpecialist(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSpecialist")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to delete specialist")

		return
	}

	response.WithMessage(w, http.StatusOK, "specialist deleted")
}
