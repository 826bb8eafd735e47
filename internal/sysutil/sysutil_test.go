package sysutil

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	trues := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	falses := []string{"", "0", "false", "no", "off", "n", "  ", "random"}

	for _, v := range trues {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false; want true", v)
		}
	}
	for _, v := range falses {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true; want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// no args -> ""
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// only empties -> ""
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  hello  ", "world"); got != "  hello  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  hello  ")
	}
	// first already non-empty
	if got := FirstNonEmpty("alpha", "beta"); got != "alpha" {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "alpha")
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{0.12345, 4, 0.1235},
		{2.5, 0, 3},
		{1.005001, 2, 1.01},
		{0.4, 0, 0},
	}
	for _, c := range cases {
		if got := Round(c.in, c.places); got != c.want {
			t.Fatalf("Round(%v, %d) = %v; want %v", c.in, c.places, got, c.want)
		}
	}
}

func TestShortHash(t *testing.T) {
	// md5("abc") = 900150983cd24fb0d6963f7d28e17f72
	if got := ShortHash("abc", 8); got != "90015098" {
		t.Fatalf("ShortHash = %q", got)
	}
	if got := ShortHash("abc", 0); len(got) != 32 {
		t.Fatalf("n<=0 should return full digest, got %q", got)
	}
	if ShortHash("abc", 12) != ShortHash("abc", 12) {
		t.Fatalf("ShortHash must be deterministic")
	}
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:                              "0:00:00",
		0:                                         "0:00:00",
		59*time.Second + 900*time.Millisecond:     "0:00:59",
		time.Hour + 2*time.Minute + 3*time.Second: "1:02:03",
		24 * time.Hour:                             "1 day, 0:00:00",
		50*time.Hour + 30*time.Second:              "2 days, 2:00:30",
	}
	for in, want := range cases {
		if got := HumanDuration(in); got != want {
			t.Fatalf("HumanDuration(%v) = %q; want %q", in, got, want)
		}
	}
}
