package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestFloatDefault(t *testing.T) {
	if got := FloatDefault("", 30); got != 30 {
		t.Fatalf("empty = %v", got)
	}
	if got := FloatDefault("12.5", 0); got != 12.5 {
		t.Fatalf("parsed = %v", got)
	}
	if got := FloatDefault("abc", 1); got != 1 {
		t.Fatalf("invalid = %v", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{5, 1, 10, 5},
		{-3, 1, 10, 1},
		{500, 1, 100, 100},
	}
	for _, tc := range cases {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("Clamp(%d, %d, %d) = %d", tc.v, tc.lo, tc.hi, got)
		}
	}
	if got := Clamp(1.5, 0.0, 1.0); got != 1.0 {
		t.Fatalf("float clamp = %v", got)
	}
}
