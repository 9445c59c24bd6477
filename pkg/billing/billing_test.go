package billing

import (
	"testing"
	"time"
)

func TestSafeDateClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  int
	}{
		{2024, time.February, 31, 29}, // leap year
		{2025, time.February, 31, 28},
		{2025, time.April, 31, 30},
		{2025, time.January, 31, 31},
		{2025, time.June, 15, 15},
	}
	for _, c := range cases {
		got := SafeDate(c.year, c.month, c.day)
		if got.Day() != c.want || got.Month() != c.month || got.Year() != c.year {
			t.Fatalf("SafeDate(%d,%v,%d) = %v, want day %d", c.year, c.month, c.day, got, c.want)
		}
	}
}

func TestAddMonthsClamps(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	got := AddMonths(jan31, 1)
	want := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Jan 31 + 1 month = %v, want %v", got, want)
	}
	// year rollover backwards
	got = AddMonths(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), -1)
	want = time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Jan 15 - 1 month = %v, want %v", got, want)
	}
}

func TestInvoiceDatesFebruaryClamp(t *testing.T) {
	// closing day 31, due day 10: February cycle closes on Feb 28, opens the
	// day after January's clamped close, due wraps into March.
	open, close, due := InvoiceDates(31, 10, 2025, time.February)

	if want := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC); !close.Equal(want) {
		t.Fatalf("close = %v, want %v", close, want)
	}
	// previous close is one clamped month before Feb 28, i.e. Jan 28
	if want := time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("open = %v, want %v", open, want)
	}
	if due.Month() != time.March || due.Day() != 10 {
		t.Fatalf("due = %v, want March 10", due)
	}
}

func TestInvoiceDatesDueInsideMonth(t *testing.T) {
	// due day after closing day stays within the reference month
	_, close, due := InvoiceDates(5, 15, 2025, time.June)
	if close.Day() != 5 || close.Month() != time.June {
		t.Fatalf("close = %v, want June 5", close)
	}
	if due.Day() != 15 || due.Month() != time.June {
		t.Fatalf("due = %v, want June 15", due)
	}
}

func TestInvoiceDatesOrdering(t *testing.T) {
	for _, closing := range []int{1, 5, 15, 28, 31} {
		for _, due := range []int{1, 5, 10, 20, 31} {
			for m := time.January; m <= time.December; m++ {
				open, close, dueDate := InvoiceDates(closing, due, 2025, m)
				if !open.Before(close) {
					t.Fatalf("closing=%d due=%d month=%v: open %v not before close %v", closing, due, m, open, close)
				}
				if !close.Before(dueDate) {
					t.Fatalf("closing=%d due=%d month=%v: close %v not before due %v", closing, due, m, close, dueDate)
				}
				wantDay := closing
				if last := DaysIn(2025, m); wantDay > last {
					wantDay = last
				}
				if close.Day() != wantDay {
					t.Fatalf("closing=%d month=%v: close day %d, want %d", closing, m, close.Day(), wantDay)
				}
			}
		}
	}
}

func TestInvoiceDatesOpenFollowsPreviousClose(t *testing.T) {
	// March with closing day 31: previous close is Feb 28, so open is Mar 1.
	open, _, _ := InvoiceDates(31, 10, 2025, time.March)
	if want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("open = %v, want %v", open, want)
	}
	// closing day 15: open is the 16th of the previous month.
	open, _, _ = InvoiceDates(15, 20, 2025, time.March)
	if want := time.Date(2025, time.February, 16, 0, 0, 0, 0, time.UTC); !open.Equal(want) {
		t.Fatalf("open = %v, want %v", open, want)
	}
}

func TestPeriodIndex(t *testing.T) {
	if PeriodIndex(2025, time.January)+1 != PeriodIndex(2025, time.February) {
		t.Fatal("adjacent months must have adjacent indexes")
	}
	if PeriodIndex(2024, time.December)+1 != PeriodIndex(2025, time.January) {
		t.Fatal("index must be continuous across year boundary")
	}
}
