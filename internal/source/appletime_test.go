package source

import (
	"testing"
	"time"
)

func TestFromAppleNano(t *testing.T) {
	// 700,000,000 seconds past the 2001 epoch.
	want := time.Date(2023, 3, 8, 20, 26, 40, 0, time.UTC)

	cases := []struct {
		name string
		in   int64
		want time.Time
	}{
		{"nanosecond resolution", 700_000_000_000_000_000, want},
		{"second resolution legacy rows", 700_000_000, want},
		{"zero means unset", 0, time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromAppleNano(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("FromAppleNano(%d) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestAppleNanoRoundTrip(t *testing.T) {
	orig := time.Date(2024, 11, 2, 9, 15, 30, 123_456_789, time.UTC)

	n := ToAppleNano(orig)
	back := FromAppleNano(n)
	if !back.Equal(orig) {
		t.Errorf("round trip: got %s, want %s", back, orig)
	}

	if ToAppleNano(time.Time{}) != 0 {
		t.Error("zero time must encode as 0")
	}
}
