package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/otel"
	"appointer/internal/domains/availability/model"
	"appointer/internal/domains/availability/model/dto"
	"appointer/internal/domains/availability/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/lock"
	"appointer/shared/timezone"
)

// ActiveChecker is the slice of the specialist catalog this package needs.
type ActiveChecker interface {
	EnsureActive(ctx context.Context, id string) error
}

// Availability is the registry of per-specialist, per-date windows.
type Availability interface {
	Create(ctx context.Context, req dto.CreateWindowRequest) (dto.WindowResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateWindowRequest) (dto.WindowResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (dto.WindowResponse, error)
	List(ctx context.Context, specialistID string, date *calendar.Date) (dto.ListWindowsResponse, error)
	AffectedBookings(ctx context.Context, id string) (dto.AffectedBookingsResponse, error)
	// WindowFor returns the available window of the specialist on date.
	WindowFor(ctx context.Context, specialistID string, date calendar.Date) (dto.WindowResponse, bool, error)
	// OpenWindows returns the spans in which the specialist may be booked on date.
	OpenWindows(ctx context.Context, specialistID string, date calendar.Date) ([]calendar.Interval, error)
}

type serviceImpl struct {
	repo        repository.Window
	specialists ActiveChecker
	locker      lock.Locker
	cfg         *config.Config
	otel        otel.Otel
}

func New(repo repository.Window, specialists ActiveChecker, locker lock.Locker, cfg *config.Config, otel otel.Otel) Availability {
	return &serviceImpl{
		repo:        repo,
		specialists: specialists,
		locker:      locker,
		cfg:         cfg,
		otel:        otel,
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func onDate(specialistID string, date calendar.Date) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(model.TableName, model.FieldSpecialistID, specialistID),
		gDto.Eq(model.TableName, model.FieldDate, date),
	)
}

var byStart = gDto.QueryParams{SortBy: model.FieldStartTime, SortDir: gDto.SortDirAsc}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Window, error) {
	window, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get availability window")

		return window, failure.Storage(err)
	}

	if window.ID == constant.Empty {
		return window, failure.NotFound("availability window not found")
	}

	return window, nil
}

func (s *serviceImpl) sameDay(ctx context.Context, specialistID string, date calendar.Date) ([]model.Window, error) {
	windows, err := s.repo.GetAll(ctx, byStart, onDate(specialistID, date))
	if err != nil {
		log.Error().Err(err).Str("specialist", specialistID).Str("date", date.String()).Msg("failed to list availability windows")

		return nil, failure.Storage(err)
	}

	return windows, nil
}

// validate checks a window against the calendar and its neighbours. exclude
// is the id of the window being replaced.
func (s *serviceImpl) validate(ctx context.Context, specialistID string, date calendar.Date, span calendar.Interval, exclude string) error {
	if date.Before(calendar.DateOf(timezone.Now())) {
		return failure.BadRequestFromString(fmt.Sprintf("cannot set availability for past date %s", date))
	}

	windows, err := s.sameDay(ctx, specialistID, date)
	if err != nil {
		return err
	}

	for _, w := range windows {
		if w.ID == exclude {
			continue
		}

		if w.Interval().Overlaps(span) {
			return failure.BadRequestFromString(fmt.Sprintf("window %s overlaps existing window %s on %s", span, w.Interval(), date))
		}
	}

	return nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateWindowRequest) (res dto.WindowResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can manage availability")
	}

	date, span, err := req.Parse()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	if err = s.specialists.EnsureActive(ctx, req.SpecialistID); err != nil {
		if failure.IsKind(err, failure.KindNotFound) {
			return res, failure.BadRequestFromString("specialist does not exist")
		}

		return res, err
	}

	unlock, err := s.lock(ctx, lock.Key(conflict.Specialist(req.SpecialistID), date))
	if err != nil {
		return res, err
	}
	defer unlock()

	if err = s.validate(ctx, req.SpecialistID, date, span, constant.Empty); err != nil {
		return res, err
	}

	window := req.ToModel(date, span, actor.Name())

	if err = s.repo.Insert(ctx, window); err != nil {
		log.Error().Err(err).Msg("failed to insert availability window")

		return res, failure.Storage(err)
	}

	res.FromModel(window)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateWindowRequest) (res dto.WindowResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can manage availability")
	}

	date, span, err := req.Parse()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	sel := conflict.Specialist(current.SpecialistID)

	unlock, err := s.lock(ctx, lock.Key(sel, current.Date), lock.Key(sel, date))
	if err != nil {
		return res, err
	}
	defer unlock()

	if err = s.validate(ctx, current.SpecialistID, date, span, id); err != nil {
		return res, err
	}

	if _, err = s.repo.Update(ctx, req.Fields(date, span, actor.Name()), byID(id)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update availability window")

		return res, failure.Storage(err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

// Delete never touches bookings. Callers consult AffectedBookings first.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return failure.Forbidden("only administrators can manage availability")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, lock.Key(conflict.Specialist(current.SpecialistID), current.Date))
	if err != nil {
		return err
	}
	defer unlock()

	removed, err := s.repo.Delete(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete availability window")

		return failure.Storage(err)
	}

	if removed == 0 {
		return failure.NotFound("availability window not found")
	}

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.WindowResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	window, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(window)

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, specialistID string, date *calendar.Date) (res dto.ListWindowsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.And(gDto.Eq(model.TableName, model.FieldSpecialistID, specialistID))
	if date != nil {
		filter = onDate(specialistID, *date)
	}

	params := gDto.QueryParams{SortBy: model.FieldDate + ", " + model.FieldStartTime, SortDir: gDto.SortDirAsc}

	windows, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Str("specialist", specialistID).Msg("failed to list availability windows")

		return res, failure.Storage(err)
	}

	res.FromModels(windows)

	return res, nil
}

// AffectedBookings returns the confirmed bookings intersecting the window.
// It is advisory; nothing is cancelled.
func (s *serviceImpl) AffectedBookings(ctx context.Context, id string) (res dto.AffectedBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.AffectedBookings")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return res, failure.Forbidden("only administrators can inspect affected bookings")
	}

	window, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	bookings, err := s.repo.ConfirmedBookings(ctx, window.SpecialistID, window.Date)
	if err != nil {
		return res, failure.Storage(err)
	}

	res.WindowID = window.ID
	res.Bookings = []dto.AffectedBookingResponse{}

	span := window.Interval()
	for _, b := range bookings {
		if !span.Overlaps(b.Interval()) && !span.Contains(b.Interval()) {
			continue
		}

		var item dto.AffectedBookingResponse
		item.FromModel(b)
		res.Bookings = append(res.Bookings, item)
	}

	return res, nil
}

func (s *serviceImpl) WindowFor(ctx context.Context, specialistID string, date calendar.Date) (res dto.WindowResponse, ok bool, err error) {
	windows, err := s.sameDay(ctx, specialistID, date)
	if err != nil {
		return res, false, err
	}

	for _, w := range windows {
		if w.IsAvailable {
			res.FromModel(w)

			return res, true, nil
		}
	}

	return res, false, nil
}

func (s *serviceImpl) OpenWindows(ctx context.Context, specialistID string, date calendar.Date) ([]calendar.Interval, error) {
	windows, err := s.sameDay(ctx, specialistID, date)
	if err != nil {
		return nil, err
	}

	open := make([]calendar.Interval, 0, len(windows))
	for _, w := range windows {
		if w.IsAvailable {
			open = append(open, w.Interval())
		}
	}

	return open, nil
}

func (s *serviceImpl) lock(ctx context.Context, keys ...string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout())
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, keys...)
	if err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("failed to acquire availability lock")

		return nil, failure.Storage(err)
	}

	return unlock, nil
}
