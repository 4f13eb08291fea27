package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared/failure"
	gRepo "appointer/shared/repository"
	"appointer/shared/timezone"
)

const retryInitialInterval = 50 * time.Millisecond

var errWriteFailed = errors.New("booking could not be saved")

type txFunc func(ctx context.Context, tx repository.Ledger) error

// write runs fn in one ledger transaction per attempt. Only storage failures
// are retried; every attempt gets its own storage timeout.
func (s *serviceImpl) write(ctx context.Context, fn txFunc) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout())
		defer cancel()

		err := s.classify(s.ledger.Atomic(attemptCtx, func(tx repository.Ledger) error {
			return fn(attemptCtx, tx)
		}))
		if err != nil && !failure.IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(s.cfg.WriteAttempts()),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.metrics.Retries.Inc()
			log.Warn().Err(errors.Unwrap(err)).Dur("next", next).Msg("retrying booking write")
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	var fail *failure.Failure
	if err != nil && !errors.As(err, &fail) {
		// the caller's deadline ran out between attempts
		return failure.Storage(err)
	}

	return err
}

// classify maps ledger errors to failure kinds. Failures raised inside the
// transaction pass through unchanged. Only transient errors become storage
// failures, so permanent ones are never retried.
func (s *serviceImpl) classify(err error) error {
	if err == nil {
		return nil
	}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	switch {
	case gRepo.IsUniqueViolation(err), gRepo.IsExclusionViolation(err):
		s.metrics.Rejected.WithLabelValues(conflict.ReasonOverlap.String()).Inc()
		log.Warn().Err(err).Str("constraint", gRepo.Constraint(err)).Msg("ledger constraint rejected booking")

		return failure.Overlap("the requested time was just taken by another booking")
	case gRepo.IsFkViolation(err):
		return failure.BadRequestFromString("booking references an unknown customer, specialist or resource")
	case gRepo.IsCheckViolation(err):
		log.Warn().Err(err).Str("constraint", gRepo.Constraint(err)).Msg("ledger check rejected booking")

		return failure.BadRequestFromString("booking violates a scheduling rule")
	case gRepo.IsTransient(err), errors.Is(err, context.Canceled):
		log.Warn().Err(err).Msg("booking write failed transiently")

		return failure.Storage(err)
	default:
		log.Error().Err(err).Msg("booking write failed")

		return failure.InternalError(errWriteFailed)
	}
}

// check runs the conflict detector and turns a rejection into a failure.
func (s *serviceImpl) check(c conflict.Candidate, windows []calendar.Interval, existing []model.Booking) error {
	booked := make([]conflict.Booked, len(existing))
	for i, b := range existing {
		booked[i] = b.Booked()
	}

	decision := conflict.Check(c, windows, booked)
	if decision.Accepted {
		return nil
	}

	s.metrics.Rejected.WithLabelValues(decision.Reason.String()).Inc()

	if decision.Reason == conflict.ReasonOutsideAvailability {
		return failure.OutsideAvailability(decision.Message(c.Selector))
	}

	return failure.Overlap(decision.Message(c.Selector))
}

// bounds returns the spans a booking for sel on date must fit in, and
// whether fitting is required at all. Specialists are bounded by their
// windows; other selectors by business hours when enforcement is on.
func (s *serviceImpl) bounds(ctx context.Context, sel conflict.Selector, date calendar.Date) ([]calendar.Interval, bool, error) {
	if sel.IsSpecialist() {
		windows, err := s.windows.OpenWindows(ctx, sel.ID(), date)

		return windows, true, err
	}

	if !s.cfg.Scheduling.EnforceBusinessHours {
		return nil, false, nil
	}

	windows, err := s.businessHours(ctx, date)

	return windows, true, err
}

func (s *serviceImpl) businessHours(ctx context.Context, date calendar.Date) ([]calendar.Interval, error) {
	hours, open, err := s.hours.HoursFor(ctx, date.Weekday())
	if err != nil {
		return nil, err
	}

	if !open {
		return []calendar.Interval{}, nil
	}

	return []calendar.Interval{hours.Interval()}, nil
}

func (s *serviceImpl) ensureActive(ctx context.Context, sel conflict.Selector) error {
	var err error

	switch {
	case sel.IsSpecialist():
		err = s.specialists.EnsureActive(ctx, sel.ID())
	case sel.IsResource():
		err = s.resources.EnsureActive(ctx, sel.ID())
	}

	if failure.IsKind(err, failure.KindNotFound) {
		return failure.BadRequestFromString(fmt.Sprintf("%s %s does not exist", sel.Kind(), sel.ID()))
	}

	return err
}

func (s *serviceImpl) lock(ctx context.Context, keys ...string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout())
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, keys...)
	if err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("failed to acquire booking lock")

		return nil, failure.Storage(err)
	}

	return unlock, nil
}

func today() calendar.Date {
	return calendar.DateOf(timezone.Now())
}
