// Package timezone pins every clock reading of the service to one location.
//
// Bookings and availability windows are stored as a calendar date plus a
// wall-clock time with no offset, so "today" and "in the past" only make
// sense relative to the configured APP_TIMEZONE:
//
//	today := timezone.Today()              // midnight of the current day
//	day := timezone.DateOf(booking.Date)   // midnight of any instant's day
//	past := timezone.IsPastDate(day)       // strictly before today
//
// Use standard IANA names ("UTC", "Asia/Jakarta", "Europe/London").
package timezone
