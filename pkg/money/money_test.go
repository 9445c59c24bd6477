package money

import "testing"

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		err  bool
	}{
		{"150.00", 15000, false},
		{"150", 15000, false},
		{"0.07", 7, false},
		{"150,00", 15000, false},
		{"1.234,56", 123456, false},
		{"1,234.56", 123456, false},
		{"-42.10", -4210, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.005", 0, true}, // more than two decimal places
	}
	for _, c := range cases {
		got, err := ParseCents(c.in)
		if c.err {
			if err == nil {
				t.Fatalf("ParseCents(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCents(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseCents(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(15000); got != "150.00" {
		t.Fatalf("FormatCents(15000) = %q", got)
	}
	if got := FormatCents(7); got != "0.07" {
		t.Fatalf("FormatCents(7) = %q", got)
	}
	if got := FormatCents(-4210); got != "-42.10" {
		t.Fatalf("FormatCents(-4210) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(5000, 10000); got != 50 {
		t.Fatalf("Percent(5000,10000) = %v", got)
	}
	if got := Percent(20000, 10000); got != 100 {
		t.Fatalf("percent must cap at 100, got %v", got)
	}
	if got := Percent(100, 0); got != 0 {
		t.Fatalf("zero limit must yield 0, got %v", got)
	}
}
