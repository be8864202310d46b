// Package scoring recomputes derived relationship statistics and the
// composite health score. It runs as a full batch pass over the store, not
// per record, because the derived fields are aggregates over a relationship's
// whole record set.
package scoring

import (
	"fmt"
	"log"
	"time"

	"github.com/emberworks/rekindle/internal/store"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Floor policy for the derived ratios. One floor per metric, applied
// everywhere: avgPerMonth floors the lifespan at 30 days so a brand-new
// relationship doesn't spike to an absurd monthly rate; frequency is a raw
// per-day rate and only guards against a zero lifespan.
const (
	avgPerMonthFloorDays = 30
	frequencyFloorDays   = 1
)

// Derived holds the recomputed fields for one relationship.
type Derived struct {
	DaysSinceLast int
	AvgPerMonth   float64
	Frequency     float64
	HealthScore   int
}

// Derive computes the derived statistics for one relationship at the given
// instant. Pure: all inputs come from the target row.
func Derive(t store.ScoringTarget, now time.Time) Derived {
	nowMs := now.UnixMilli()
	daysSinceLast := int((nowMs - t.LastContactAt) / millisPerDay)
	daysSinceFirst := int((nowMs - t.FirstContactAt) / millisPerDay)

	avgSpan := daysSinceFirst
	if avgSpan < avgPerMonthFloorDays {
		avgSpan = avgPerMonthFloorDays
	}
	avgPerMonth := float64(t.RecordCount) * 30 / float64(avgSpan)

	freqSpan := daysSinceFirst
	if freqSpan < frequencyFloorDays {
		freqSpan = frequencyFloorDays
	}
	frequency := float64(t.RecordCount) / float64(freqSpan)

	return Derived{
		DaysSinceLast: daysSinceLast,
		AvgPerMonth:   avgPerMonth,
		Frequency:     frequency,
		HealthScore:   recencyPoints(daysSinceLast) + frequencyPoints(t.TotalSent) + consistencyPoints(avgPerMonth),
	}
}

// recencyPoints rewards recent contact, capped at 50.
func recencyPoints(daysSinceLast int) int {
	switch {
	case daysSinceLast <= 7:
		return 50
	case daysSinceLast <= 30:
		return 35
	case daysSinceLast <= 90:
		return 20
	case daysSinceLast <= 180:
		return 10
	default:
		return 0
	}
}

// frequencyPoints rewards lifetime volume, capped at 30. The minimum of 5
// keeps every persisted relationship above zero: the score range is [5, 100].
func frequencyPoints(totalSent int) int {
	switch {
	case totalSent >= 50:
		return 30
	case totalSent >= 20:
		return 25
	case totalSent >= 10:
		return 20
	case totalSent >= 5:
		return 15
	case totalSent >= 2:
		return 10
	default:
		return 5
	}
}

// consistencyPoints rewards regular cadence, capped at 20. Recency alone
// over-penalizes long infrequent-but-deep relationships and frequency alone
// over-rewards high-volume low-depth ones; this bonus balances both.
func consistencyPoints(avgPerMonth float64) int {
	switch {
	case avgPerMonth >= 4:
		return 20
	case avgPerMonth >= 2:
		return 15
	case avgPerMonth >= 1:
		return 10
	case avgPerMonth >= 0.5:
		return 5
	default:
		return 0
	}
}

// Recompute refreshes the derived fields for every relationship. Idempotent
// and read-mostly-then-write: it only recomputes from source-of-truth rows,
// so it may run at any time after ingestion without coordination. A write
// failure on one row is logged and skipped, never aborting the pass.
func Recompute(db *store.DB, now time.Time) (int, error) {
	targets, err := db.ScoringTargets()
	if err != nil {
		return 0, fmt.Errorf("load scoring targets: %w", err)
	}

	updated := 0
	for _, t := range targets {
		d := Derive(t, now)
		if err := db.UpdateDerived(t.ID, d.DaysSinceLast, d.AvgPerMonth, d.Frequency, d.HealthScore); err != nil {
			log.Printf("scoring: relationship %d: %v", t.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
