package resource

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/infras/otel"
	bookingService "appointer/internal/domains/booking/service"
	"appointer/internal/domains/resource/model"
	"appointer/internal/domains/resource/model/dto"
	"appointer/internal/domains/resource/service"
	"appointer/internal/handlers/params"
	"appointer/shared"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/validator"
	"appointer/transport/http/response"
)

type Handler struct {
	service  service.Resource
	bookings bookingService.Booking
	otel     otel.Otel
}

func New(service service.Resource, bookings bookingService.Booking, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		bookings: bookings,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/resources", func(r chi.Router) {
		r.Post("/", handler.CreateResource)
		r.Get("/", handler.GetResources)
		r.Get("/{id}", handler.GetResource)
		r.Get("/{id}/slots", handler.GetResourceSlots)
		r.Patch("/{id}", handler.UpdateResource)
		r.Delete("/{id}", handler.DeleteResource)
	})
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

// photo returns the optional uploaded file of a parsed multipart form.
func photo(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(constant.FormFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}

	if err != nil {
		return nil, nil, failure.BadRequest(err)
	}

	return file, header, nil
}

func optionalString(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}

	value := r.FormValue(key)

	return &value
}

func optionalInt(r *http.Request, key string) (*int, error) {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil, nil
	}

	value, err := shared.ConvertStringToInt(r.FormValue(key))
	if err != nil {
		return nil, failure.BadRequestFromString(key + " must be a number")
	}

	return &value, nil
}

// CreateResource accepts multipart/form-data with an optional photo in "file".
func (handler *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateResource")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		fail(w, scope, failure.BadRequest(err), "failed to parse multipart form")

		return
	}

	capacity, err := optionalInt(r, model.FieldCapacity)
	if err != nil {
		fail(w, scope, err, "invalid resource capacity")

		return
	}

	file, header, err := photo(r)
	if err != nil {
		fail(w, scope, err, "failed to read resource photo")

		return
	}

	if file != nil {
		defer file.Close()
	}

	req := dto.CreateResourceRequest{
		Name:      r.FormValue(model.FieldName),
		Category:  r.FormValue(model.FieldCategory),
		Location:  r.FormValue(model.FieldLocation),
		Image:     header,
		ImageFile: file,
		Active:    shared.ConvertStringToBool(r.FormValue(model.FieldActive)),
	}

	if capacity != nil {
		req.Capacity = *capacity
	}

	if err = validator.ValidateStruct(&req); err != nil {
		fail(w, scope, err, "invalid resource request")

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(w, scope, err, "failed to create resource")

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

func (handler *Handler) GetResources(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResources")
	defer scope.End()

	query := gDto.QueryParams{}
	query.FromRequest(r, true)
	query.Restrict(model.TableName, model.FieldName, model.FieldCategory, model.FieldCapacity, constant.FieldCreatedAt)

	res, err := handler.service.GetAll(ctx, query, params.Equals(r, model.TableName, model.FieldActive, model.FieldCategory, model.FieldLocation))
	if err != nil {
		fail(w, scope, err, "failed to get resources")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResource")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "failed to get resource")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetResourceSlots lists free start times within business hours.
func (handler *Handler) GetResourceSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResourceSlots")
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

	res, err := handler.bookings.ListResourceSlots(ctx, chi.URLParam(r, constant.RequestParamID), date, minutes)
	if err != nil {
		fail(w, scope, err, "failed to list resource slots")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateResource is a partial multipart update; a new photo replaces the old one.
func (handler *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateResource")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		fail(w, scope, failure.BadRequest(err), "failed to parse multipart form")

		return
	}

	capacity, err := optionalInt(r, model.FieldCapacity)
	if err != nil {
		fail(w, scope, err, "invalid resource capacity")

		return
	}

	file, header, err := photo(r)
	if err != nil {
		fail(w, scope, err, "failed to read resource photo")

		return
	}

	if file != nil {
		defer file.Close()
	}

	req := dto.UpdateResourceRequest{
		Name:      r.FormValue(model.FieldName),
		Category:  optionalString(r, model.FieldCategory),
		Location:  optionalString(r, model.FieldLocation),
		Capacity:  capacity,
		Image:     header,
		ImageFile: file,
		Active:    shared.ConvertStringToBool(r.FormValue(model.FieldActive)),
	}

	if err = validator.ValidateStruct(&req); err != nil {
		fail(w, scope, err, "invalid resource update")

		return
	}

	if err = handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to update resource")

		return
	}

	response.WithMessage(w, http.StatusOK, "resource updated")
}

func (handler *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteResource")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to delete resource")

		return
	}

	response.WithMessage(w, http.StatusOK, "resource deleted")
}
