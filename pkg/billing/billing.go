// Package billing implements the credit-card billing cycle arithmetic:
// converting a card's configured closing/due day into concrete dates for a
// reference month, clamping day-of-month overflow.
package billing

import "time"

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SafeDate builds a date with the day clamped to the month length, so day 31
// in February yields Feb 28 (or 29).
func SafeDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances t by n calendar months, clamping the day instead of
// letting it overflow (Jan 31 + 1 month = Feb 28, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	m += time.Month(n)
	// normalize month into 1..12 so SafeDate sees a real month
	norm := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return SafeDate(norm.Year(), norm.Month(), d)
}

// InvoiceDates returns the open, close and due dates of the invoice cycle a
// card accumulates for the given reference month.
//
// The close date is the configured closing day in the reference month,
// clamped. The cycle opens the day after the previous month's close. When the
// due day is on or before the closing day the due date wraps into the month
// after the reference month; otherwise it falls inside it.
func InvoiceDates(closingDay, dueDay int, year int, month time.Month) (open, close, due time.Time) {
	close = SafeDate(year, month, closingDay)
	prevClose := AddMonths(close, -1)
	open = prevClose.AddDate(0, 0, 1)

	if dueDay <= closingDay {
		next := AddMonths(close, 1)
		due = SafeDate(next.Year(), next.Month(), dueDay)
	} else {
		due = SafeDate(year, month, dueDay)
	}
	return open, close, due
}

// PeriodStart returns the first day of the given month.
func PeriodStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// PeriodIndex maps a (year, month) pair to an absolute month count, used to
// order entries generated from the same template.
func PeriodIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}
