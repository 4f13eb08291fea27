package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appointer/internal/domains/booking/event"
	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/domains/booking/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared"
	"appointer/shared/constant"
	"appointer/shared/failure"
	"appointer/shared/lock"
	"appointer/shared/timezone"
)

// customerFor resolves who a new booking belongs to. Administrators may book
// on behalf of anyone; customers only for themselves.
func customerFor(actor shared.Actor, requested string) (string, error) {
	if requested == constant.Empty || requested == actor.UserID {
		return actor.UserID, nil
	}

	if actor.IsAdmin() {
		return requested, nil
	}

	return constant.Empty, failure.Forbidden("customers can only book for themselves")
}

func pastDate(date calendar.Date) error {
	if date.Before(today()) {
		return failure.BadRequestFromString(fmt.Sprintf("cannot book past date %s", date))
	}

	return nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return res, failure.Unauthorized("sign in to book an appointment")
	}

	date, span, sel, err := req.Parse()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	customerID, err := customerFor(actor, req.CustomerID)
	if err != nil {
		return res, err
	}

	if err = pastDate(date); err != nil {
		return res, err
	}

	if err = s.ensureActive(ctx, sel); err != nil {
		return res, err
	}

	booking := req.ToModel(customerID, date, span, sel, actor.Name())

	unlock, err := s.lock(ctx, lock.Key(sel, date))
	if err != nil {
		return res, err
	}
	defer unlock()

	windows, bounded, err := s.bounds(ctx, sel, date)
	if err != nil {
		return res, err
	}

	candidate := conflict.Candidate{Selector: sel, Span: span, Bounded: bounded}

	err = s.write(ctx, func(ctx context.Context, tx repository.Ledger) error {
		existing, err := tx.Confirmed(ctx, sel, date)
		if err != nil {
			return err
		}

		if err := s.check(candidate, windows, existing); err != nil {
			return err
		}

		return tx.Insert(ctx, booking)
	})
	if err != nil {
		return res, err
	}

	log.Info().Str("id", booking.ID).Str("selector", sel.Key()).Str("date", date.String()).Str("span", span.String()).Msg("booking confirmed")

	s.metrics.Created.WithLabelValues(sel.Kind().String()).Inc()
	s.events.Publish(ctx, event.New(event.TypeCreated, booking, actor.Name()))
	s.invalidate(ctx, booking.ID)

	return s.reload(ctx, booking), nil
}

// Update overwrites the fields present in req. A change of date, time,
// duration or resource is a reschedule and is validated like a new booking,
// ignoring the booking's own current slot.
func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return res, failure.Unauthorized("sign in to change a booking")
	}

	if req.IsEmpty() {
		return res, failure.BadRequest(dto.ErrEmptyUpdate)
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !actor.Owns(current.CustomerID) {
		return res, failure.Forbidden("you can only change your own bookings")
	}

	if err = mutable(current); err != nil {
		return res, err
	}

	next, err := req.Apply(current)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	moved := dto.Rescheduled(current, next)
	sel := next.Selector()

	if moved {
		if err = pastDate(next.Date); err != nil {
			return res, err
		}

		if err = s.ensureActive(ctx, sel); err != nil {
			return res, err
		}
	}

	unlock, err := s.lock(ctx, lock.Key(current.Selector(), current.Date), lock.Key(sel, next.Date))
	if err != nil {
		return res, err
	}
	defer unlock()

	var (
		windows []calendar.Interval
		bounded bool
	)

	if moved {
		if windows, bounded, err = s.bounds(ctx, sel, next.Date); err != nil {
			return res, err
		}
	}

	err = s.write(ctx, func(ctx context.Context, tx repository.Ledger) error {
		latest, err := tx.Find(ctx, id)
		if err != nil {
			return err
		}

		if err := stillCurrent(current, latest); err != nil {
			return err
		}

		next, err = req.Apply(latest)
		if err != nil {
			return failure.BadRequest(err)
		}

		next.Touch(timezone.Now(), actor.Name())

		if moved {
			existing, err := tx.Confirmed(ctx, sel, next.Date)
			if err != nil {
				return err
			}

			candidate := conflict.Candidate{Selector: sel, Span: next.Span(), Exclude: id, Bounded: bounded}
			if err := s.check(candidate, windows, existing); err != nil {
				return err
			}
		}

		_, err = tx.Save(ctx, next)

		return err
	})
	if err != nil {
		return res, err
	}

	if moved {
		log.Info().Str("id", id).Str("selector", sel.Key()).Str("date", next.Date.String()).Str("span", next.Span().String()).Msg("booking rescheduled")

		s.metrics.Rescheduled.Inc()
		s.events.Publish(ctx, event.New(event.TypeRescheduled, next, actor.Name()))
	}

	s.invalidate(ctx, id)

	return s.reload(ctx, next), nil
}

// Cancel frees the slot. The row stays in the ledger with status cancelled.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return res, failure.Unauthorized("sign in to cancel a booking")
	}

	booking, err := s.transition(ctx, id, model.StatusCancelled, func(b model.Booking) error {
		if !actor.Owns(b.CustomerID) {
			return failure.Forbidden("you can only cancel your own bookings")
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	s.metrics.Cancelled.Inc()
	s.events.Publish(ctx, event.New(event.TypeCancelled, booking, actor.Name()))

	return s.reload(ctx, booking), nil
}

func (s *serviceImpl) Complete(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Complete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can complete bookings")
	}

	booking, err := s.transition(ctx, id, model.StatusCompleted, func(model.Booking) error { return nil })
	if err != nil {
		return res, err
	}

	s.events.Publish(ctx, event.New(event.TypeCompleted, booking, actor.Name()))

	return s.reload(ctx, booking), nil
}

// transition moves a confirmed booking to a terminal status.
func (s *serviceImpl) transition(ctx context.Context, id, status string, authorize func(model.Booking) error) (model.Booking, error) {
	actor := shared.ActorFromContext(ctx)

	current, err := s.find(ctx, id)
	if err != nil {
		return current, err
	}

	if err = authorize(current); err != nil {
		return current, err
	}

	if err = mutable(current); err != nil {
		return current, err
	}

	unlock, err := s.lock(ctx, lock.Key(current.Selector(), current.Date))
	if err != nil {
		return current, err
	}
	defer unlock()

	var saved model.Booking

	err = s.write(ctx, func(ctx context.Context, tx repository.Ledger) error {
		latest, err := tx.Find(ctx, id)
		if err != nil {
			return err
		}

		if latest.ID == constant.Empty {
			return failure.NotFound("booking not found")
		}

		if err := mutable(latest); err != nil {
			return err
		}

		latest.Status = status
		latest.Touch(timezone.Now(), actor.Name())

		if _, err := tx.Save(ctx, latest); err != nil {
			return err
		}

		saved = latest

		return nil
	})
	if err != nil {
		return current, err
	}

	log.Info().Str("id", id).Str("status", status).Msg("booking status changed")

	s.invalidate(ctx, id)

	return saved, nil
}

// mutable rejects changes to bookings in a terminal status.
func mutable(b model.Booking) error {
	if b.IsConfirmed() {
		return nil
	}

	return failure.BadRequestFromString(fmt.Sprintf("booking is %s and can no longer change", b.Status))
}

// stillCurrent guards against a concurrent change between the unlocked read
// and the locked transaction.
func stillCurrent(read, latest model.Booking) error {
	if latest.ID == constant.Empty {
		return failure.NotFound("booking not found")
	}

	if err := mutable(latest); err != nil {
		return err
	}

	if dto.Rescheduled(read, latest) {
		return failure.Conflict("booking changed while updating, please retry")
	}

	return nil
}
