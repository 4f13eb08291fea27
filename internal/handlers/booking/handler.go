package booking

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/domains/booking/service"
	"appointer/internal/handlers/params"
	"appointer/internal/scheduling/conflict"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/validator"
	"appointer/transport/http/response"
)

var sortable = []string{
	model.FieldDate,
	model.FieldStartTime,
	model.FieldStatus,
	model.FieldServiceName,
	constant.FieldCreatedAt,
	constant.FieldModifiedAt,
}

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(r chi.Router) {
		r.Post("/", handler.CreateBooking)
		r.Get("/", handler.GetBookings)
		r.Get("/mine", handler.GetMyBookings)
		r.Get("/slots", handler.GetSlots)
		r.Get("/{id}", handler.GetBooking)
		r.Patch("/{id}", handler.UpdateBooking)
		r.Post("/{id}/cancel", handler.CancelBooking)
		r.Post("/{id}/complete", handler.CompleteBooking)
		r.Put("/{id}/payment-status", handler.SetPaymentStatus)
		r.Delete("/{id}", handler.PurgeBooking)
	})
}

func (handler *Handler) fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)

	if failure.IsRetryable(err) || failure.GetKind(err) == failure.KindInternal {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Debug().Err(err).Msg(msg)
	}

	response.WithError(w, err)
}

// CreateBooking books a slot. Overlaps answer 409, missing availability 422.
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		handler.fail(w, scope, err, "invalid booking request")

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		handler.fail(w, scope, err, "failed to create booking")

		return
	}

	scope.AddEvent("booking created")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetBookings lists every booking for administrators. Supports equality
// filters on status, date, customer_id, specialist_id, resource_id and
// payment_status.
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	query := gDto.QueryParams{}
	query.FromRequest(r, true)
	query.Restrict(model.TableName, sortable...)

	filter := params.Equals(r, model.TableName,
		model.FieldStatus, model.FieldDate, model.FieldCustomerID,
		model.FieldSpecialistID, model.FieldResourceID, model.FieldPaymentStatus)

	res, err := handler.service.GetAll(ctx, query, filter)
	if err != nil {
		handler.fail(w, scope, err, "failed to get bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	query := gDto.QueryParams{}
	query.FromRequest(r, true)
	query.Restrict(model.TableName, sortable...)

	res, err := handler.service.GetMine(ctx, query)
	if err != nil {
		handler.fail(w, scope, err, "failed to get own bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSlots lists bookable start times for ?date=, scoped by at most one of
// specialist_id or resource_id. ?duration= switches to overlap-aware slots.
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	date, err := params.Date(r)
	if err != nil {
		handler.fail(w, scope, err, "invalid slot date")

		return
	}

	minutes, err := params.Duration(r)
	if err != nil {
		handler.fail(w, scope, err, "invalid slot duration")

		return
	}

	query := r.URL.Query()

	sel, err := conflict.ParseSelector(query.Get(constant.RequestParamSpecialistID), query.Get(constant.RequestParamResourceID))
	if err != nil {
		handler.fail(w, scope, failure.BadRequest(err), "invalid slot selector")

		return
	}

	res, err := handler.service.Slots(ctx, dto.SlotQuery{Selector: sel, Date: date, Duration: time.Duration(minutes) * time.Minute})
	if err != nil {
		handler.fail(w, scope, err, "failed to list slots")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBooking")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		handler.fail(w, scope, err, "failed to get booking")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateBooking applies a partial update; moving the booking re-runs the
// availability and overlap checks.
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		handler.fail(w, scope, err, "invalid booking update")

		return
	}

	res, err := handler.service.Update(ctx, chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		handler.fail(w, scope, err, "failed to update booking")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	res, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		handler.fail(w, scope, err, "failed to cancel booking")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteBooking")
	defer scope.End()

	res, err := handler.service.Complete(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		handler.fail(w, scope, err, "failed to complete booking")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetPaymentStatus")
	defer scope.End()

	req := dto.PaymentStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		handler.fail(w, scope, err, "invalid payment status")

		return
	}

	res, err := handler.service.SetPaymentStatus(ctx, chi.URLParam(r, constant.RequestParamID), req.Status)
	if err != nil {
		handler.fail(w, scope, err, "failed to set payment status")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// PurgeBooking hard-deletes a booking. Cancellation is the normal path.
func (handler *Handler) PurgeBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PurgeBooking")
	defer scope.End()

	if err := handler.service.Purge(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		handler.fail(w, scope, err, "failed to purge booking")

		return
	}

	response.WithMessage(w, http.StatusOK, "booking deleted")
}
