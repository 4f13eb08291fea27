// Package calendar holds the time primitives shared by the scheduling engine:
// wall-clock times of day, calendar dates, half-open intervals and the weekly
// business-hours policy.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	clockLayout   = "15:04"
	dateLayout    = time.DateOnly
	minutesPerDay = 24 * 60
)

var (
	ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrPastMidnight = errors.New("span must end by 24:00 on the same day")
)

// Clock is a time of day expressed in minutes since midnight. 24:00 is a
// valid Clock so a span may end exactly at the end of the day.
type Clock int

const (
	Midnight  Clock = 0
	EndOfDay  Clock = minutesPerDay
	clockHour Clock = 60
)

// At builds a Clock from hour and minute.
func At(hour, minute int) Clock {
	return Clock(hour)*clockHour + Clock(minute)
}

// ParseClock accepts "HH:MM" and "HH:MM:SS" (seconds are dropped) and "24:00".
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	if value == "24:00" || value == "24:00:00" {
		return EndOfDay, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidClock
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 || len(parts[0]) > 2 {
		return 0, ErrInvalidClock
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return 0, ErrInvalidClock
	}

	return At(hour, minute), nil
}

// ClockOf reads the wall clock of t in its own location.
func ClockOf(t time.Time) Clock {
	return At(t.Hour(), t.Minute())
}

// Add shifts c by d, truncated to whole minutes.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// Sub returns the duration from o to c.
func (c Clock) Sub(o Clock) time.Duration {
	return time.Duration(c-o) * time.Minute
}

func (c Clock) Before(o Clock) bool {
	return c < o
}

func (c Clock) After(o Clock) bool {
	return c > o
}

// Valid reports whether c lies within [00:00, 24:00].
func (c Clock) Valid() bool {
	return c >= Midnight && c <= EndOfDay
}

func (c Clock) Hour() int {
	return int(c / clockHour)
}

func (c Clock) Minute() int {
	return int(c % clockHour)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On anchors c on the given date in loc.
func (c Clock) On(d Date, loc *time.Location) time.Time {
	y, m, day := d.Time.Date()

	return time.Date(y, m, day, c.Hour(), c.Minute(), 0, 0, loc)
}

// Value stores the clock as a postgres TIME literal.
func (c Clock) Value() (driver.Value, error) {
	if c == EndOfDay {
		return "24:00", nil
	}

	return c.String(), nil
}

// Scan accepts the representations lib/pq hands back for TIME columns.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = ClockOf(v)
	case string:
		return c.parseInto(v)
	case []byte:
		return c.parseInto(string(v))
	case int64:
		*c = Clock(v)
	case nil:
		*c = Midnight
	default:
		return fmt.Errorf("cannot scan %T into Clock", src)
	}

	return nil
}

func (c *Clock) parseInto(value string) error {
	// lib/pq may return "0000-01-01T09:30:00Z" for TIME columns
	if idx := strings.IndexByte(value, 'T'); idx >= 0 {
		value = strings.TrimSuffix(value[idx+1:], "Z")
	}

	parsed, err := ParseClock(value)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("clock: %w", err)
	}

	return c.parseInto(raw)
}

// Date is a calendar day. The wall clock is always midnight UTC so the
// year/month/day triple survives DATE round trips unchanged.
type Date struct {
	time.Time
}

// DateOf keeps the calendar day of t as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, ErrInvalidDate
	}

	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

func (d Date) Weekday() Weekday {
	return WeekdayOf(d.Time)
}

func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
	case string:
		return d.parseInto(v)
	case []byte:
		return d.parseInto(string(v))
	case nil:
		*d = Date{}
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}

	return nil
}

func (d *Date) parseInto(value string) error {
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}

	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date: %w", err)
	}

	return d.parseInto(raw)
}

// Weekday numbers days 1=Monday through 7=Sunday. time.Sunday (0) maps to 7
// so business-hours rows never collide on zero.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}

	return Weekday(wd)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "Weekday(" + strconv.Itoa(int(w)) + ")"
	}

	return time.Weekday(int(w) % 7).String()
}

// Interval is the half-open span [Start, End).
type Interval struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Span is the interval of length d starting at start.
func Span(start Clock, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Empty is true for zero or negative length intervals.
func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// WithinDay is true when the span ends no later than 24:00.
func (i Interval) WithinDay() bool {
	return i.Start >= Midnight && i.End <= EndOfDay
}

// Overlaps uses half-open semantics: [9,10) and [10,11) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Contains reports whether o lies entirely within i.
func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

func (i Interval) String() string {
	return "[" + i.Start.String() + ", " + i.End.String() + ")"
}

// Hours is one day's opening span.
type Hours struct {
	Open  Clock `json:"open"`
	Close Clock `json:"close"`
}

func (h Hours) Interval() Interval {
	return Interval{Start: h.Open, End: h.Close}
}

// Policy answers the recurring weekly business hours. A false second result
// means the day is closed or not configured.
type Policy interface {
	HoursFor(weekday Weekday) (Hours, bool)
}

// WeeklyPolicy is a Policy backed by one entry per open weekday.
type WeeklyPolicy map[Weekday]Hours

func NewWeeklyPolicy(days map[Weekday]Hours) WeeklyPolicy {
	policy := make(WeeklyPolicy, len(days))

	for wd, hours := range days {
		if !wd.Valid() || hours.Interval().Empty() {
			continue
		}

		policy[wd] = hours
	}

	return policy
}

func (p WeeklyPolicy) HoursFor(weekday Weekday) (Hours, bool) {
	hours, ok := p[weekday]

	return hours, ok
}
