package service_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/internal/scheduling/calendar"
	"appointer/shared/failure"
)

func clocks(hours ...int) []calendar.Clock {
	out := make([]calendar.Clock, len(hours))
	for i, h := range hours {
		out[i] = calendar.At(h, 0)
	}

	return out
}

func mustDate(t *testing.T, value string) calendar.Date {
	t.Helper()

	date, err := calendar.ParseDate(value)
	require.NoError(t, err)

	return date
}

func TestListAvailableSlots(t *testing.T) {
	t.Run("closed weekday", func(t *testing.T) {
		e := newEnv(t)

		res, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, sunday), 0)
		require.NoError(t, err)
		assert.Empty(t, res.Slots)
		assert.NotNil(t, res.Slots)
	})

	t.Run("open weekday skips the booked start", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Create(as(customer), unbound(monday, "09:00", 60))
		require.NoError(t, err)

		res, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, monday), 0)
		require.NoError(t, err)
		assert.Equal(t, clocks(10, 11, 12, 13, 14, 15, 16), res.Slots)
		assert.Equal(t, 60, res.GranularityMinutes)
		assert.Equal(t, "time slot", res.ResourceKind)
	})

	t.Run("exact-start matching keeps slots inside a long booking", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Create(as(customer), unbound(monday, "09:00", 120))
		require.NoError(t, err)

		res, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, monday), 0)
		require.NoError(t, err)
		assert.Contains(t, res.Slots, calendar.At(10, 0))
	})

	t.Run("duration switches to overlap-aware slots", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Create(as(customer), unbound(monday, "09:00", 120))
		require.NoError(t, err)

		res, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, monday), 90)
		require.NoError(t, err)
		assert.Equal(t, clocks(11, 12, 13, 14, 15), res.Slots)
		assert.Equal(t, 90, res.DurationMinutes)
	})

	t.Run("configured granularity", func(t *testing.T) {
		e := newEnv(t)
		e.cfg.Scheduling.SlotGranularityMinutes = 30

		res, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, monday), 0)
		require.NoError(t, err)
		assert.Len(t, res.Slots, 16)
		assert.Equal(t, calendar.At(16, 30), res.Slots[len(res.Slots)-1])
	})

	t.Run("negative duration", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.ListAvailableSlots(as(customer), mustDate(t, monday), -30)
		assert.Equal(t, failure.KindValidation, failure.GetKind(err))
	})
}

func TestListSpecialistSlots(t *testing.T) {
	e := newEnv(t)
	e.open("s1", monday, span(9, 0, 12, 0), span(14, 0, 16, 0))

	_, err := e.svc.Create(as(customer), withSpecialist("s1", monday, "10:00", 60))
	require.NoError(t, err)

	res, err := e.svc.ListSpecialistSlots(as(customer), "s1", mustDate(t, monday), 0)
	require.NoError(t, err)
	assert.Equal(t, clocks(9, 11, 14, 15), res.Slots)
	assert.Equal(t, "s1", res.ResourceID)

	res, err = e.svc.ListSpecialistSlots(as(customer), "s2", mustDate(t, monday), 0)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)

	_, err = e.svc.ListSpecialistSlots(as(customer), "inactive", mustDate(t, monday), 0)
	assert.Equal(t, failure.KindValidation, failure.GetKind(err))

	assert.Positive(t, testutil.CollectAndCount(e.metrics.SlotLatency))
}

func TestListResourceSlots(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Create(as(customer), withResource("r1", monday, "13:00", 60))
	require.NoError(t, err)

	_, err = e.svc.Create(as(customer), unbound(monday, "14:00", 60))
	require.NoError(t, err)

	res, err := e.svc.ListResourceSlots(as(customer), "r1", mustDate(t, monday), 0)
	require.NoError(t, err)
	assert.Equal(t, clocks(9, 10, 11, 12, 14, 15, 16), res.Slots)

	_, err = e.svc.ListResourceSlots(as(customer), "ghost", mustDate(t, monday), 0)
	assert.Equal(t, failure.KindValidation, failure.GetKind(err))
}
