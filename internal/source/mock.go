package source

import (
	"context"
	"time"
)

// MockSource is a test double serving records from a fixed slice, windowed
// the same way a real transport would. Err, when set, is returned for every
// window; WindowErrs returns an error only for windows containing the given
// start time.
type MockSource struct {
	Channel    string
	Records    []Record
	Err        error
	WindowErrs map[int64]error // keyed by windowStart unixmilli
	Calls      int
	WindowLog  []time.Time // windowEnd of each call, in order
}

func (m *MockSource) Name() string {
	if m.Channel == "" {
		return "email"
	}
	return m.Channel
}

func (m *MockSource) ListOutbound(ctx context.Context, windowStart, windowEnd time.Time, pageToken string) (*Page, error) {
	m.Calls++
	m.WindowLog = append(m.WindowLog, windowEnd)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := m.WindowErrs[windowStart.UnixMilli()]; err != nil {
		return nil, err
	}

	page := &Page{}
	for _, r := range m.Records {
		if !r.SentAt.Before(windowStart) && r.SentAt.Before(windowEnd) {
			page.Records = append(page.Records, r)
		}
	}
	return page, nil
}
