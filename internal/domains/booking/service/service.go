package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/otel"
	"appointer/internal/domains/booking/event"
	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/domains/booking/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/shared"
	"appointer/shared/cache"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/lock"
	"appointer/shared/metrics"
	"appointer/shared/timezone"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

// Windows is the slice of the availability registry the engine reads.
type Windows interface {
	OpenWindows(ctx context.Context, specialistID string, date calendar.Date) ([]calendar.Interval, error)
}

// Hours is the calendar policy lookup.
type Hours interface {
	HoursFor(ctx context.Context, weekday calendar.Weekday) (calendar.Hours, bool, error)
}

type SpecialistChecker interface {
	EnsureActive(ctx context.Context, id string) error
}

type ResourceChecker interface {
	EnsureActive(ctx context.Context, id string) error
}

// Booking is the lifecycle manager. Every mutation that can move a booking in
// time runs under the (selector, date) lock and inside a serializable ledger
// transaction.
type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Complete(ctx context.Context, id string) (dto.BookingResponse, error)
	// Purge physically removes a booking. It is an administrative tool, not
	// part of the lifecycle.
	Purge(ctx context.Context, id string) error
	SetPaymentStatus(ctx context.Context, id, status string) (dto.BookingResponse, error)

	Slots(ctx context.Context, q dto.SlotQuery) (dto.SlotsResponse, error)
	ListAvailableSlots(ctx context.Context, date calendar.Date, duration int) (dto.SlotsResponse, error)
	ListSpecialistSlots(ctx context.Context, specialistID string, date calendar.Date, duration int) (dto.SlotsResponse, error)
	ListResourceSlots(ctx context.Context, resourceID string, date calendar.Date, duration int) (dto.SlotsResponse, error)
}

type serviceImpl struct {
	ledger      repository.Ledger
	windows     Windows
	hours       Hours
	specialists SpecialistChecker
	resources   ResourceChecker
	locker      lock.Locker
	metrics     *metrics.Metrics
	events      event.Publisher
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	ledger repository.Ledger,
	windows Windows,
	hours Hours,
	specialists SpecialistChecker,
	resources ResourceChecker,
	locker lock.Locker,
	metrics *metrics.Metrics,
	events event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		ledger:      ledger,
		windows:     windows,
		hours:       hours,
		specialists: specialists,
		resources:   resources,
		locker:      locker,
		metrics:     metrics,
		events:      events,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.ledger.Find(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return booking, failure.Storage(err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found")
	}

	return booking, nil
}

// reload returns the stored row with its joined customer fields, falling back
// to b when the read fails after a committed write.
func (s *serviceImpl) reload(ctx context.Context, b model.Booking) dto.BookingResponse {
	var res dto.BookingResponse

	stored, err := s.ledger.Find(ctx, b.ID)
	if err != nil || stored.ID == constant.Empty {
		log.Warn().Err(err).Str("id", b.ID).Msg("failed to reload booking after write")
		res.FromModel(b)

		return res
	}

	res.FromModel(stored)

	return res
}

// invalidate runs before the mutation returns so a follow-up read never
// sees the previous state. Failures are logged; the write already committed.
func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), constant.CacheInvalidateTimeout)
	defer cancel()

	if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete booking from cache")
	}

	_ = shared.InvalidateCaches(c, s.cache, cacheGetAllBooking, cacheCountBooking)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return res, failure.Unauthorized("sign in to view bookings")
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		booking, err := s.find(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(booking)

		go func() {
			if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
				log.Error().Err(err).Msg("failed to save booking to cache")
			}
		}()
	}

	if !actor.Owns(res.CustomerID) {
		return dto.BookingResponse{}, failure.Forbidden("you can only view your own bookings")
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return res, failure.Forbidden("only administrators can list all bookings")
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return res, failure.Unauthorized("sign in to view bookings")
	}

	return s.list(ctx, req, gDto.And(gDto.Eq(model.TableName, model.FieldCustomerID, actor.UserID)))
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.ledger.List(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, failure.Storage(err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	var total int
	if err := s.cache.Get(ctx, cacheKey, &total); err == nil {
		return total, nil
	}

	total, err := s.ledger.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return 0, failure.Storage(err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, total, s.cfg.CacheTTL()); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return total, nil
}

func (s *serviceImpl) Purge(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Purge")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.ActorFromContext(ctx).IsAdmin() {
		return failure.Forbidden("only administrators can purge bookings")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, lock.Key(current.Selector(), current.Date))
	if err != nil {
		return err
	}
	defer unlock()

	removed, err := s.ledger.Purge(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to purge booking")

		return failure.Storage(err)
	}

	if removed == 0 {
		return failure.NotFound("booking not found")
	}

	log.Info().Str("id", id).Str("customer", current.CustomerID).Msg("booking purged")

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) SetPaymentStatus(ctx context.Context, id, status string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.SetPaymentStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can change payment status")
	}

	if !model.ValidPaymentStatus(status) {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown payment status %q", status))
	}

	var saved model.Booking

	err = s.write(ctx, func(ctx context.Context, tx repository.Ledger) error {
		latest, err := tx.Find(ctx, id)
		if err != nil {
			return err
		}

		if latest.ID == constant.Empty {
			return failure.NotFound("booking not found")
		}

		latest.PaymentStatus = status
		latest.Touch(timezone.Now(), actor.Name())

		if _, err := tx.Save(ctx, latest); err != nil {
			return err
		}

		saved = latest

		return nil
	})
	if err != nil {
		return res, err
	}

	s.invalidate(ctx, id)

	return s.reload(ctx, saved), nil
}
