package service_test

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/scheduling/conflict"
	"appointer/shared"
	"appointer/shared/constant"
	"appointer/shared/failure"
)

// assertNoOverlap checks that confirmed bookings sharing a selector and date
// are pairwise disjoint.
func assertNoOverlap(t *testing.T, rows []model.Booking) {
	t.Helper()

	type dimension struct {
		sel  conflict.Selector
		date string
	}

	groups := map[dimension][]model.Booking{}

	for _, b := range rows {
		if !b.IsConfirmed() {
			continue
		}

		key := dimension{b.Selector(), b.Date.String()}
		groups[key] = append(groups[key], b)
	}

	for key, group := range groups {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				assert.False(t, conflict.Collides(a.Span(), b.Span()),
					"%s on %s: %s %s collides with %s %s", key.sel, key.date, a.ID, a.Span(), b.ID, b.Span())
			}
		}
	}
}

func TestCreate_ConcurrentRequestsForOneSlot(t *testing.T) {
	e := newEnv(t)
	e.open("s1", monday, span(9, 0, 17, 0))

	const callers = 16

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		overlaps int
	)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			actor := shared.Actor{UserID: fmt.Sprintf("cust-%d", i), Role: constant.RoleCustomer}
			_, err := e.svc.Create(as(actor), withSpecialist("s1", monday, "10:00", 45))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				accepted++
			case failure.IsKind(err, failure.KindOverlap):
				overlaps++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, callers-1, overlaps)
	assert.Len(t, e.ledger.all(), 1)
}

func TestCreate_ConcurrentDistinctResourcesAllSucceed(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup

	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = e.svc.Create(as(customer), withResource("r1", monday, fmt.Sprintf("%02d:00", 9+i), 60))
		}()
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assertNoOverlap(t, e.ledger.all())
}

func TestLifecycle_RandomSequenceKeepsConfirmedBookingsDisjoint(t *testing.T) {
	e := newEnv(t)
	e.open("s1", monday, span(8, 0, 18, 0))
	e.open("s2", monday, span(9, 0, 13, 0), span(14, 0, 17, 0))
	e.open("s1", "2099-06-02", span(8, 0, 12, 0))

	rng := rand.New(rand.NewPCG(7, 11))

	dates := []string{monday, "2099-06-02"}
	selectors := []func(date, start string, minutes int) dto.CreateBookingRequest{
		func(date, start string, minutes int) dto.CreateBookingRequest { return withSpecialist("s1", date, start, minutes) },
		func(date, start string, minutes int) dto.CreateBookingRequest { return withSpecialist("s2", date, start, minutes) },
		func(date, start string, minutes int) dto.CreateBookingRequest { return withResource("r1", date, start, minutes) },
		unbound,
	}
	durations := []int{15, 30, 45, 60, 90, 120}

	randomStart := func() string {
		return fmt.Sprintf("%02d:%02d", 7+rng.IntN(11), 15*rng.IntN(4))
	}

	var ids []string

	for range 400 {
		switch op := rng.IntN(10); {
		case op < 5 || len(ids) == 0:
			build := selectors[rng.IntN(len(selectors))]
			req := build(dates[rng.IntN(len(dates))], randomStart(), durations[rng.IntN(len(durations))])

			res, err := e.svc.Create(as(customer), req)
			if err == nil {
				ids = append(ids, res.ID)

				continue
			}

			kind := failure.GetKind(err)
			assert.Contains(t, []failure.Kind{failure.KindOverlap, failure.KindOutsideAvailability}, kind, err.Error())
		case op < 8:
			id := ids[rng.IntN(len(ids))]
			req := dto.UpdateBookingRequest{StartTime: ptr(randomStart())}

			if rng.IntN(2) == 0 {
				req.DurationMinutes = ptr(durations[rng.IntN(len(durations))])
			}

			if rng.IntN(4) == 0 {
				req.Date = ptr(dates[rng.IntN(len(dates))])
			}

			_, err := e.svc.Update(as(customer), id, req)
			if err != nil {
				kind := failure.GetKind(err)
				assert.Contains(t, []failure.Kind{failure.KindOverlap, failure.KindOutsideAvailability, failure.KindValidation}, kind, err.Error())
			}
		default:
			id := ids[rng.IntN(len(ids))]

			_, err := e.svc.Cancel(as(customer), id)
			if err != nil {
				assert.Equal(t, failure.KindValidation, failure.GetKind(err), err.Error())
			}
		}

		assertNoOverlap(t, e.ledger.all())
	}
}
