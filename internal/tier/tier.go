// Package tier maps a record's age to a retention policy. Tiering bounds
// storage and summarization cost on multi-year histories while keeping enough
// signal at every age for both recent recall and long-range trend stats.
package tier

import "time"

// Tier is a retention policy applied to a record at ingestion time.
type Tier string

const (
	// Full keeps exact content, enabling verbatim quoting in reconnection drafts.
	Full Tier = "full"
	// Summary keeps a short synopsis instead of raw content.
	Summary Tier = "summary"
	// Metadata keeps timestamp, subject, and counts only.
	Metadata Tier = "metadata"
)

// Boundaries in whole months of elapsed age.
const (
	fullMonths    = 6
	summaryMonths = 18
)

// MinSummarizeLen is the minimum raw content length worth a summarization
// call. Shorter bodies are stored as their own summary — near-empty content
// is not worth the cost.
const MinSummarizeLen = 280

// Classify returns the retention tier for a record sent at sentAt, judged at
// now. A record exactly six months old is still Full; a record exactly
// eighteen months old is still Summary.
func Classify(sentAt, now time.Time) Tier {
	switch {
	case !sentAt.Before(now.AddDate(0, -fullMonths, 0)):
		return Full
	case !sentAt.Before(now.AddDate(0, -summaryMonths, 0)):
		return Summary
	default:
		return Metadata
	}
}
