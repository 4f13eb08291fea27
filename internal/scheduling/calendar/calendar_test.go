package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/internal/scheduling/calendar"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    calendar.Clock
		wantErr bool
	}{
		{name: "hour and minute", input: "09:30", want: calendar.At(9, 30)},
		{name: "single digit hour", input: "9:05", want: calendar.At(9, 5)},
		{name: "with seconds", input: "17:00:00", want: calendar.At(17, 0)},
		{name: "end of day", input: "24:00", want: calendar.EndOfDay},
		{name: "midnight", input: "00:00", want: calendar.Midnight},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "single digit minute", input: "10:5", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calendar.ParseClock(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, calendar.ErrInvalidClock)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_Arithmetic(t *testing.T) {
	start := calendar.At(11, 0)

	assert.Equal(t, calendar.At(12, 30), start.Add(90*time.Minute))
	assert.Equal(t, 90*time.Minute, calendar.At(12, 30).Sub(start))
	assert.Equal(t, "11:00", start.String())
	assert.True(t, start.Before(calendar.At(11, 1)))
	assert.True(t, calendar.EndOfDay.Valid())
	assert.False(t, calendar.EndOfDay.Add(time.Minute).Valid())
}

func TestClock_Scan(t *testing.T) {
	var c calendar.Clock

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 14, 45, 0, 0, time.UTC)))
	assert.Equal(t, calendar.At(14, 45), c)

	require.NoError(t, c.Scan([]byte("08:15:00")))
	assert.Equal(t, calendar.At(8, 15), c)

	require.NoError(t, c.Scan("0000-01-01T10:00:00Z"))
	assert.Equal(t, calendar.At(10, 0), c)

	assert.Error(t, c.Scan(3.5))

	value, err := calendar.At(9, 0).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:00", value)
}

func TestClock_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		At calendar.Clock `json:"at"`
	}{At: calendar.At(7, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:05"}`, string(raw))

	var decoded calendar.Clock
	require.NoError(t, json.Unmarshal([]byte(`"18:20"`), &decoded))
	assert.Equal(t, calendar.At(18, 20), decoded)
}

func TestDate(t *testing.T) {
	d, err := calendar.ParseDate("2024-06-03")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-03", d.String())
	assert.Equal(t, calendar.Monday, d.Weekday())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Equal(calendar.NewDate(2024, time.June, 3)))

	_, err = calendar.ParseDate("03/06/2024")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	jakarta := time.FixedZone("WIB", 7*60*60)
	late := time.Date(2024, time.June, 3, 23, 30, 0, 0, jakarta)
	assert.Equal(t, "2024-06-03", calendar.DateOf(late).String())

	var scanned calendar.Date
	require.NoError(t, scanned.Scan(time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, calendar.Sunday, scanned.Weekday())

	require.NoError(t, scanned.Scan([]byte("2024-06-10T00:00:00Z")))
	assert.Equal(t, "2024-06-10", scanned.String())
}

func TestWeekdayOf_SundayIsSeven(t *testing.T) {
	tests := []struct {
		date string
		want calendar.Weekday
	}{
		{date: "2024-06-03", want: calendar.Monday},
		{date: "2024-06-05", want: calendar.Wednesday},
		{date: "2024-06-08", want: calendar.Saturday},
		{date: "2024-06-09", want: calendar.Sunday},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := calendar.ParseDate(tt.date)
			require.NoError(t, err)

			assert.Equal(t, tt.want, d.Weekday())
			assert.Equal(t, tt.want, calendar.WeekdayOf(d.Time))
		})
	}

	assert.Equal(t, 7, int(calendar.Sunday))
	assert.Equal(t, "Sunday", calendar.Sunday.String())
	assert.False(t, calendar.Weekday(0).Valid())
}

func TestInterval_HalfOpen(t *testing.T) {
	nineToTen := calendar.Interval{Start: calendar.At(9, 0), End: calendar.At(10, 0)}
	tenToEleven := calendar.Interval{Start: calendar.At(10, 0), End: calendar.At(11, 0)}
	nineThirty := calendar.Span(calendar.At(9, 30), time.Hour)

	assert.False(t, nineToTen.Overlaps(tenToEleven), "back to back spans must not overlap")
	assert.False(t, tenToEleven.Overlaps(nineToTen))
	assert.True(t, nineToTen.Overlaps(nineThirty))
	assert.True(t, nineThirty.Overlaps(tenToEleven))
	assert.True(t, nineToTen.Overlaps(nineToTen))

	morning := calendar.Interval{Start: calendar.At(9, 0), End: calendar.At(12, 0)}
	assert.True(t, morning.Contains(nineToTen))
	assert.True(t, morning.Contains(morning))
	assert.False(t, morning.Contains(calendar.Span(calendar.At(11, 0), 90*time.Minute)))

	assert.True(t, calendar.Interval{Start: calendar.At(9, 0), End: calendar.At(9, 0)}.Empty())
	assert.Equal(t, "[09:00, 10:00)", nineToTen.String())

	assert.True(t, calendar.Span(calendar.At(23, 0), time.Hour).WithinDay())
	assert.False(t, calendar.Span(calendar.At(23, 30), 90*time.Minute).WithinDay())
}

func TestWeeklyPolicy(t *testing.T) {
	policy := calendar.NewWeeklyPolicy(map[calendar.Weekday]calendar.Hours{
		calendar.Monday:     {Open: calendar.At(9, 0), Close: calendar.At(17, 0)},
		calendar.Tuesday:    {Open: calendar.At(17, 0), Close: calendar.At(9, 0)},
		calendar.Weekday(0): {Open: calendar.At(9, 0), Close: calendar.At(17, 0)},
	})

	hours, ok := policy.HoursFor(calendar.Monday)
	assert.True(t, ok)
	assert.Equal(t, calendar.At(9, 0), hours.Open)

	_, ok = policy.HoursFor(calendar.Tuesday)
	assert.False(t, ok, "inverted hours are treated as closed")

	_, ok = policy.HoursFor(calendar.Sunday)
	assert.False(t, ok, "unconfigured days are closed")

	assert.Len(t, policy, 1)
}
