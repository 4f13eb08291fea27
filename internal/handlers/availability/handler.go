package availability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	"appointer/internal/domains/availability/model/dto"
	"appointer/internal/domains/availability/service"
	"appointer/internal/handlers/params"
	"appointer/shared/constant"
	"appointer/shared/failure"
	"appointer/shared/validator"
	"appointer/transport/http/response"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/availability", func(r chi.Router) {
		r.Post("/", handler.CreateWindow)
		r.Get("/", handler.ListWindows)
		r.Get("/{id}", handler.GetWindow)
		r.Get("/{id}/affected-bookings", handler.GetAffectedBookings)
		r.Put("/{id}", handler.UpdateWindow)
		r.Delete("/{id}", handler.DeleteWindow)
	})
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

func (handler *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateWindow")
	defer scope.End()

	req := dto.CreateWindowRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid availability window")

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to create availability window")

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// ListWindows requires ?specialist_id= and accepts an optional ?date=.
func (handler *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListWindows")
	defer scope.End()

	specialistID := r.URL.Query().Get(constant.RequestParamSpecialistID)
	if specialistID == constant.Empty {
		fail(w, scope, failure.BadRequestFromString("specialist_id is required"), "missing specialist")

		return
	}

	date, err := params.OptionalDate(r)
	if err != nil {
		fail(w, scope, err, "invalid window date")

		return
	}

	res, err := handler.service.List(ctx, specialistID, date)
	if err != nil {
		fail(w, scope, err, "failed to list availability windows")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWindow")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "failed to get availability window")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAffectedBookings lists the confirmed bookings inside the window, for
// review before it is narrowed or removed.
func (handler *Handler) GetAffectedBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAffectedBookings")
	defer scope.End()

	res, err := handler.service.AffectedBookings(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "failed to get affected bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateWindow")
	defer scope.End()

	req := dto.UpdateWindowRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid availability window")

		return
	}

	res, err := handler.service.Update(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		fail(w, scope, err, "failed to update availability window")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteWindow does not touch bookings inside the window.
func (handler *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteWindow")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to delete availability window")

		return
	}

	response.WithMessage(w, http.StatusOK, "availability window deleted")
}
