package tier

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		sentAt time.Time
		want   Tier
	}{
		{"yesterday", now.AddDate(0, 0, -1), Full},
		{"exactly six months", now.AddDate(0, -6, 0), Full},
		{"six months and a day", now.AddDate(0, -6, -1), Summary},
		{"one year", now.AddDate(-1, 0, 0), Summary},
		{"exactly eighteen months", now.AddDate(0, -18, 0), Summary},
		{"eighteen months and a day", now.AddDate(0, -18, -1), Metadata},
		{"five years", now.AddDate(-5, 0, 0), Metadata},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.sentAt, now); got != tc.want {
				t.Errorf("Classify(%s) = %s, want %s", tc.sentAt.Format(time.DateOnly), got, tc.want)
			}
		})
	}
}
