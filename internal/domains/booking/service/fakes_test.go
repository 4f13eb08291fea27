package service_test

import (
	"context"
	"slices"
	"sync"

	"github.com/lib/pq"

	"appointer/internal/domains/booking/event"
	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/repository"
	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
)

// memoryLedger is a Ledger whose Atomic holds one mutex for the whole
// callback and rolls back on error, which is what a serializable
// transaction guarantees.
type memoryLedger struct {
	mu    sync.Mutex
	rows  map[string]model.Booking
	names map[string]string

	// transient makes the next n inserts fail with a serialization error.
	transient int
	// unique makes every insert fail with a unique violation.
	unique bool
	// insertErr, when set, fails every insert with it.
	insertErr error
	inserts   int
}

func newLedger() *memoryLedger {
	return &memoryLedger{rows: map[string]model.Booking{}, names: map[string]string{}}
}

func (l *memoryLedger) view() *ledgerTx {
	return &ledgerTx{l: l}
}

func (l *memoryLedger) Find(ctx context.Context, id string) (model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Find(ctx, id)
}

func (l *memoryLedger) List(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().List(ctx, params, filter)
}

func (l *memoryLedger) Count(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Count(ctx, filter)
}

func (l *memoryLedger) Confirmed(ctx context.Context, sel conflict.Selector, date calendar.Date) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Confirmed(ctx, sel, date)
}

func (l *memoryLedger) Insert(ctx context.Context, booking model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Insert(ctx, booking)
}

func (l *memoryLedger) Save(ctx context.Context, booking model.Booking) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Save(ctx, booking)
}

func (l *memoryLedger) Purge(ctx context.Context, id string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.view().Purge(ctx, id)
}

func (l *memoryLedger) Atomic(_ context.Context, fn func(tx repository.Ledger) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make(map[string]model.Booking, len(l.rows))
	for id, b := range l.rows {
		snapshot[id] = b
	}

	if err := fn(l.view()); err != nil {
		l.rows = snapshot

		return err
	}

	return nil
}

// all returns every row; used by invariant checks.
func (l *memoryLedger) all() []model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Booking, 0, len(l.rows))
	for _, b := range l.rows {
		out = append(out, b)
	}

	return out
}

type ledgerTx struct {
	l *memoryLedger
}

func (t *ledgerTx) Find(_ context.Context, id string) (model.Booking, error) {
	b, ok := t.l.rows[id]
	if !ok {
		return model.Booking{}, nil
	}

	if name, ok := t.l.names[b.CustomerID]; ok {
		b.CustomerName = &name
	}

	return b, nil
}

func (t *ledgerTx) List(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup) ([]model.Booking, error) {
	out := make([]model.Booking, 0, len(t.l.rows))
	for _, b := range t.l.rows {
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b model.Booking) int { return int(a.StartTime - b.StartTime) })

	return out, nil
}

func (t *ledgerTx) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	return len(t.l.rows), nil
}

func (t *ledgerTx) Confirmed(_ context.Context, sel conflict.Selector, date calendar.Date) ([]model.Booking, error) {
	out := []model.Booking{}

	for _, b := range t.l.rows {
		if b.IsConfirmed() && b.Date.Equal(date) && b.Selector() == sel {
			out = append(out, b)
		}
	}

	slices.SortFunc(out, func(a, b model.Booking) int { return int(a.StartTime - b.StartTime) })

	return out, nil
}

func (t *ledgerTx) Insert(_ context.Context, booking model.Booking) error {
	t.l.inserts++

	if t.l.transient > 0 {
		t.l.transient--

		return &pq.Error{Code: constant.PqErrorCodeSerializationFailure}
	}

	if t.l.insertErr != nil {
		return t.l.insertErr
	}

	if t.l.unique {
		return &pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: "bookings_confirmed_slot_key"}
	}

	t.l.rows[booking.ID] = booking

	return nil
}

func (t *ledgerTx) Save(_ context.Context, booking model.Booking) (int64, error) {
	current, ok := t.l.rows[booking.ID]
	if !ok {
		return 0, nil
	}

	booking.Metadata.CreatedAt = current.CreatedAt
	booking.Metadata.CreatedBy = current.CreatedBy
	booking.CustomerName = nil
	booking.CustomerEmail = nil
	t.l.rows[booking.ID] = booking

	return 1, nil
}

func (t *ledgerTx) Purge(_ context.Context, id string) (int64, error) {
	if _, ok := t.l.rows[id]; !ok {
		return 0, nil
	}

	delete(t.l.rows, id)

	return 1, nil
}

func (t *ledgerTx) Atomic(_ context.Context, fn func(tx repository.Ledger) error) error {
	return fn(t)
}

type windowKey struct {
	specialist string
	date       string
}

type windows map[windowKey][]calendar.Interval

func (w windows) OpenWindows(_ context.Context, specialistID string, date calendar.Date) ([]calendar.Interval, error) {
	return w[windowKey{specialistID, date.String()}], nil
}

type hours calendar.WeeklyPolicy

func (h hours) HoursFor(_ context.Context, weekday calendar.Weekday) (calendar.Hours, bool, error) {
	open, ok := calendar.WeeklyPolicy(h).HoursFor(weekday)

	return open, ok, nil
}

type catalog map[string]error

func (c catalog) EnsureActive(_ context.Context, id string) error {
	if err, ok := c[id]; ok {
		return err
	}

	return failure.NotFound("not found")
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(_ context.Context, e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}

	return out
}
