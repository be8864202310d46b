package scoring

import (
	"fmt"
	"time"

	"github.com/emberworks/rekindle/internal/store"
)

// RankOpts filters and caps the dormant candidate list. Zero values fall back
// to conservative defaults.
type RankOpts struct {
	MinDaysSince int
	MinTotalSent int
	Limit        int
}

// RankDormant returns reconnection candidates: relationships quiet past the
// threshold, ranked by prior closeness (avgPerMonth descending) and then by
// how long they've been silent. Read-only over the store.
func RankDormant(db *store.DB, now time.Time, opts RankOpts) ([]store.DormantRelationship, error) {
	if opts.MinDaysSince <= 0 {
		opts.MinDaysSince = 30
	}
	if opts.MinTotalSent <= 0 {
		opts.MinTotalSent = 3
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	out, err := db.QueryDormant(now.UnixMilli(), opts.MinDaysSince, opts.MinTotalSent, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("rank dormant: %w", err)
	}
	return out, nil
}
