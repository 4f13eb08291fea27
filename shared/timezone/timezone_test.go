package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/shared/timezone"
)

func TestTimezoneInit(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
}

func TestUseLocation(t *testing.T) {
	original := timezone.GetLocation()
	t.Cleanup(func() { timezone.UseLocation(original) })

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	timezone.UseLocation(jakarta)

	assert.Equal(t, jakarta, timezone.GetLocation())
	assert.Equal(t, jakarta, timezone.Now().Location())
}

func TestParseDate(t *testing.T) {
	d, err := timezone.ParseDate("2024-06-03")
	require.NoError(t, err)

	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 3, d.Day())

	_, err = timezone.ParseDate("03/06/2024")
	assert.Error(t, err)
}

func TestDateOf(t *testing.T) {
	instant := time.Date(2024, 6, 3, 23, 30, 0, 0, time.UTC)
	day := timezone.DateOf(instant)

	assert.Equal(t, 3, day.Day())
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, 0, day.Minute())
}

func TestIsPastDate(t *testing.T) {
	today := timezone.Today()

	assert.False(t, timezone.IsPastDate(today))
	assert.False(t, timezone.IsPastDate(today.AddDate(0, 0, 1)))
	assert.True(t, timezone.IsPastDate(today.AddDate(0, 0, -1)))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC)
	c := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)

	assert.True(t, timezone.SameDay(a, b))
	assert.False(t, timezone.SameDay(a, c))
}

func TestFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.NotEmpty(t, timezone.Format(testTime, "2006-01-02 15:04:05 MST"))
}
