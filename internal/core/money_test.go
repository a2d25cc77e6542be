package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1500.00", 150000, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1,500.00", 0, false},
		{"1,500", 0, false},
		{"1,23", 0, false},
		{"1.٣", 0, false},
		{"٣", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	cases := []struct {
		in   int64
		pct  int64
		want int64
	}{
		{10000, 40, 4000},
		{0, 40, 0},
		{12345, 40, 4938},
		{1, 40, 0},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.in}).Percent(tc.pct).Cents; got != tc.want {
			t.Fatalf("%d*%d%% expected %d, got %d", tc.in, tc.pct, tc.want, got)
		}
	}
}
