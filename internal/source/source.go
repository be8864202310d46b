// Package source defines the transport collaborator interface the ingestion
// pipeline pulls outbound records from. Concrete mail or message transports
// live outside this module; the pipeline only ever sees record pages.
package source

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthenticated marks the fatal error class: no credentials or an
// unauthenticated collaborator. The pipeline aborts the run on it instead of
// skipping the window.
var ErrUnauthenticated = errors.New("source not authenticated")

// Record is one raw outbound communication event from a transport.
type Record struct {
	ID       string // idempotency key, stable across re-fetches
	To       []string
	Subject  string
	Body     string
	SentAt   time.Time
	ThreadID string
}

// Page is one page of outbound records for a window.
type Page struct {
	Records       []Record
	NextPageToken string
}

// Source lists a person's outbound records within a time window, one page at
// a time. Implementations wrap the mail transport API or the local message
// store query surface.
type Source interface {
	// Name identifies the channel, e.g. "email" or "message". It doubles as
	// the checkpoint run type.
	Name() string

	// ListOutbound returns outbound records with windowStart <= sentAt < windowEnd.
	ListOutbound(ctx context.Context, windowStart, windowEnd time.Time, pageToken string) (*Page, error)
}
