// Package pipeline walks years of outbound communication history in bounded
// monthly windows, writing records through the store and checkpointing after
// every window so a crash or forced stop loses at most one in-flight page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emberworks/rekindle/internal/identity"
	"github.com/emberworks/rekindle/internal/llm"
	"github.com/emberworks/rekindle/internal/scoring"
	"github.com/emberworks/rekindle/internal/source"
	"github.com/emberworks/rekindle/internal/store"
	"github.com/emberworks/rekindle/internal/tier"
)

// Runner ingests one source's history into the store.
type Runner struct {
	DB       *store.DB
	Source   source.Source
	Resolver identity.Resolver
	LLM      llm.Client // optional; summary-tier records degrade without it

	// LookbackMonths bounds the backward walk. Zero means 36.
	LookbackMonths int
	// WindowDelay is the fixed pause between window requests. This is the
	// run's only intentional suspension point.
	WindowDelay time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes one full ingestion pass. It refuses to overlap a run of the
// same type (store.ErrRunActive), resumes from a stopped run's cursor, and
// finishes by refreshing scores. Returns the number of new records ingested.
func (r *Runner) Run(ctx context.Context) (int, error) {
	ck, err := r.DB.StartRun(r.Source.Name())
	if err != nil {
		return 0, err
	}

	now := r.now()
	lookback := r.LookbackMonths
	if lookback <= 0 {
		lookback = 36
	}
	floor := now.AddDate(0, -lookback, 0)

	// A resumed run picks up at the stopped run's cursor; a fresh run walks
	// back from now.
	cursor := now
	if ck.WindowCursor > 0 {
		if resumed := time.UnixMilli(ck.WindowCursor); resumed.Before(cursor) {
			cursor = resumed
		}
	}

	processed := 0
	for cursor.After(floor) {
		if ctx.Err() != nil {
			r.DB.FinishRun(ck.RunID, store.RunError, "canceled")
			return processed, ctx.Err()
		}

		windowStart := cursor.AddDate(0, -1, 0)
		if windowStart.Before(floor) {
			windowStart = floor
		}

		page, err := r.Source.ListOutbound(ctx, windowStart, cursor, "")
		switch {
		case errors.Is(err, source.ErrUnauthenticated):
			// Fatal class: no credentials. Preserve the partial count and stop.
			r.DB.FinishRun(ck.RunID, store.RunError, err.Error())
			return processed, fmt.Errorf("list window %s: %w", windowStart.Format("2006-01"), err)
		case err != nil:
			// One unreachable or malformed month must not block the rest of
			// the walk. Skip to the next window.
			log.Printf("pipeline %s: window %s: %v (skipping)", r.Source.Name(), windowStart.Format("2006-01"), err)
		default:
			for i := range page.Records {
				if r.ingestOne(ctx, &page.Records[i], now) {
					processed++
				}
			}
		}

		cursor = windowStart
		if err := r.DB.UpdateRunProgress(ck.RunID, cursor.UnixMilli(), processed); err != nil {
			log.Printf("pipeline %s: checkpoint: %v", r.Source.Name(), err)
		}

		if cursor.After(floor) && r.WindowDelay > 0 {
			select {
			case <-ctx.Done():
				r.DB.FinishRun(ck.RunID, store.RunError, "canceled")
				return processed, ctx.Err()
			case <-time.After(r.WindowDelay):
			}
		}
	}

	if n, err := scoring.Recompute(r.DB, now); err != nil {
		log.Printf("pipeline %s: scoring: %v", r.Source.Name(), err)
	} else {
		log.Printf("pipeline %s: rescored %d relationships", r.Source.Name(), n)
	}

	if err := r.DB.FinishRun(ck.RunID, store.RunCompleted, ""); err != nil {
		return processed, err
	}
	log.Printf("pipeline %s: completed, %d new records", r.Source.Name(), processed)
	return processed, nil
}

// ingestOne normalizes, classifies, and writes a single record. Returns true
// when the record was new. Per-record failures are logged and skipped — a bad
// row never aborts the batch.
func (r *Runner) ingestOne(ctx context.Context, raw *source.Record, now time.Time) bool {
	counterpart := primaryRecipient(raw.To)
	if counterpart == "" {
		log.Printf("pipeline %s: record %s has no recipient, skipping", r.Source.Name(), raw.ID)
		return false
	}
	key := identity.Normalize(counterpart)

	name := ""
	if r.Resolver != nil {
		resolved, err := r.Resolver.ResolveDisplayName(ctx, counterpart)
		if err != nil {
			log.Printf("pipeline %s: resolve %s: %v", r.Source.Name(), key, err)
		} else {
			name = resolved
		}
	}
	if name == "" {
		name = identity.FallbackDisplayName(counterpart)
	}

	rec := &store.Record{
		ExternalID:  raw.ID,
		ThreadID:    raw.ThreadID,
		Subject:     raw.Subject,
		Channel:     r.Source.Name(),
		SentAt:      raw.SentAt.UnixMilli(),
		StorageTier: string(tier.Classify(raw.SentAt, now)),
		WordCount:   len(strings.Fields(raw.Body)),
	}

	switch tier.Classify(raw.SentAt, now) {
	case tier.Full:
		rec.Content = raw.Body
	case tier.Summary:
		rec.Summary = r.summarize(ctx, raw.Subject, raw.Body)
	case tier.Metadata:
		// timestamp, subject, and counts only
	}

	inserted, err := r.DB.IngestRecord(key, name, rec)
	if err != nil {
		log.Printf("pipeline %s: ingest %s: %v (skipping)", r.Source.Name(), raw.ID, err)
		return false
	}
	return inserted
}

// summarize produces the synopsis for a summary-tier record. Short bodies are
// kept as-is rather than summarized; a missing client or a failed call
// degrades to a clipped body instead of aborting the record, so the synopsis
// never exceeds the length a summary tier is supposed to bound.
func (r *Runner) summarize(ctx context.Context, subject, body string) string {
	if body == "" {
		return subject
	}
	if len(body) <= tier.MinSummarizeLen {
		return body
	}
	if r.LLM == nil {
		return clip(body, tier.MinSummarizeLen)
	}

	summary, err := llm.Summarize(ctx, r.LLM, subject, body)
	if err != nil || summary == "" {
		if err != nil {
			log.Printf("pipeline %s: summarize: %v", r.Source.Name(), err)
		}
		return clip(body, tier.MinSummarizeLen)
	}
	return summary
}

// clip truncates to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func primaryRecipient(to []string) string {
	for _, t := range to {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}
