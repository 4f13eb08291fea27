package service

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/internal/scheduling/slots"
	"appointer/shared/constant"
	"appointer/shared/failure"
)

func (s *serviceImpl) ListAvailableSlots(ctx context.Context, date calendar.Date, duration int) (dto.SlotsResponse, error) {
	return s.Slots(ctx, slotQuery(conflict.None(), date, duration))
}

func (s *serviceImpl) ListSpecialistSlots(ctx context.Context, specialistID string, date calendar.Date, duration int) (dto.SlotsResponse, error) {
	return s.Slots(ctx, slotQuery(conflict.Specialist(specialistID), date, duration))
}

func (s *serviceImpl) ListResourceSlots(ctx context.Context, resourceID string, date calendar.Date, duration int) (dto.SlotsResponse, error) {
	return s.Slots(ctx, slotQuery(conflict.Resource(resourceID), date, duration))
}

func slotQuery(sel conflict.Selector, date calendar.Date, duration int) dto.SlotQuery {
	return dto.SlotQuery{Selector: sel, Date: date, Duration: time.Duration(duration) * time.Minute}
}

// Slots derives free start times. Specialists are offered their open
// windows; resources and unbound bookings the business hours of the weekday.
// Nothing is cached, so every answer reflects the ledger at call time.
func (s *serviceImpl) Slots(ctx context.Context, q dto.SlotQuery) (res dto.SlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Slots")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer s.metrics.ObserveSlots(time.Now())

	if q.Duration < 0 {
		return res, failure.BadRequestFromString("duration must be positive")
	}

	if err = s.ensureActive(ctx, q.Selector); err != nil {
		return res, err
	}

	granularity := s.cfg.SlotGranularity()

	res = dto.SlotsResponse{
		Date:               q.Date,
		ResourceKind:       q.Selector.Kind().String(),
		ResourceID:         q.Selector.ID(),
		GranularityMinutes: int(granularity / time.Minute),
		DurationMinutes:    int(q.Duration / time.Minute),
		Slots:              []calendar.Clock{},
	}

	var windows []calendar.Interval
	if q.Selector.IsSpecialist() {
		windows, err = s.windows.OpenWindows(ctx, q.Selector.ID(), q.Date)
	} else {
		windows, err = s.businessHours(ctx, q.Date)
	}

	if err != nil {
		return res, err
	}

	if len(windows) == 0 {
		return res, nil
	}

	existing, err := s.ledger.Confirmed(ctx, q.Selector, q.Date)
	if err != nil {
		log.Error().Err(err).Str("selector", q.Selector.Key()).Str("date", q.Date.String()).Msg("failed to load bookings for slots")

		return res, failure.Storage(err)
	}

	starts := make([]calendar.Clock, len(existing))
	busy := make([]calendar.Interval, len(existing))

	for i, b := range existing {
		starts[i] = b.StartTime
		busy[i] = b.Span()
	}

	for _, w := range windows {
		if q.Duration > 0 {
			res.Slots = append(res.Slots, slots.Free(w, granularity, q.Duration, busy)...)
		} else {
			res.Slots = append(res.Slots, slots.Generate(w.Start, w.End, granularity, starts)...)
		}
	}

	slices.Sort(res.Slots)
	res.Slots = slices.Compact(res.Slots)

	return res, nil
}
