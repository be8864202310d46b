package source

import "time"

// The message store's epoch is 2001-01-01T00:00:00Z, offset from the Unix
// epoch by this many seconds. An off-by-offset error here silently corrupts
// every derived recency calculation, so the conversion is isolated and tested
// on its own.
const appleEpochOffset int64 = 978307200

// FromAppleNano converts a message-store timestamp (nanoseconds since the
// 2001 epoch) to a time.Time. Older stores recorded whole seconds; values
// that small are treated as seconds.
func FromAppleNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	// Second-resolution values from pre-2011 schema versions are far below
	// the nanosecond range.
	if n < 1_000_000_000_000 {
		return time.Unix(n+appleEpochOffset, 0).UTC()
	}
	return time.Unix(n/1_000_000_000+appleEpochOffset, n%1_000_000_000).UTC()
}

// ToAppleNano converts a time.Time to message-store nanoseconds.
func ToAppleNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix()-appleEpochOffset)*1_000_000_000 + int64(t.Nanosecond())
}
