package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/emberworks/rekindle/internal/scoring"
	"github.com/emberworks/rekindle/internal/store"
)

// handleStatus reports the latest checkpoint per run type (or one type when
// ?run_type= is given) so the caller can always tell whether results are
// partial.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type checkpointJSON struct {
		RunID            string `json:"run_id"`
		RunType          string `json:"run_type"`
		Status           string `json:"status"`
		RecordsProcessed int    `json:"records_processed"`
		WindowCursor     int64  `json:"window_cursor"`
		Message          string `json:"message,omitempty"`
		StartedAt        int64  `json:"started_at"`
		EndedAt          *int64 `json:"ended_at,omitempty"`
	}

	var checkpoints []store.Checkpoint
	if runType := r.URL.Query().Get("run_type"); runType != "" {
		ck, err := s.db.LatestCheckpoint(runType)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
			return
		}
		if ck != nil {
			checkpoints = append(checkpoints, *ck)
		}
	} else {
		var err error
		checkpoints, err = s.db.LatestCheckpoints()
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
			return
		}
	}

	out := make([]checkpointJSON, len(checkpoints))
	for i, c := range checkpoints {
		out[i] = checkpointJSON{
			RunID:            c.RunID,
			RunType:          c.RunType,
			Status:           c.Status,
			RecordsProcessed: c.RecordsProcessed,
			WindowCursor:     c.WindowCursor,
			Message:          c.Message,
			StartedAt:        c.StartedAt,
			EndedAt:          c.EndedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"runs": out})
}

// handleDormant returns the ranked reconnection candidate list.
func (s *Server) handleDormant(w http.ResponseWriter, r *http.Request) {
	opts := scoring.RankOpts{}
	if v := r.URL.Query().Get("min_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MinDaysSince = n
		}
	}
	if v := r.URL.Query().Get("min_sent"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MinTotalSent = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	results, err := scoring.RankDormant(s.db, time.Now(), opts)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}

	type dormantJSON struct {
		Name           string  `json:"name"`
		CounterpartKey string  `json:"counterpart_key"`
		DaysSinceLast  int     `json:"days_since_last_contact"`
		TotalSent      int     `json:"total_sent"`
		AvgPerMonth    float64 `json:"avg_per_month"`
		HealthScore    int     `json:"health_score"`
		LastSubject    string  `json:"last_subject,omitempty"`
	}

	out := make([]dormantJSON, len(results))
	for i, d := range results {
		name := d.DisplayName
		if name == "" {
			name = d.CounterpartKey
		}
		out[i] = dormantJSON{
			Name:           name,
			CounterpartKey: d.CounterpartKey,
			DaysSinceLast:  d.DaysSinceLast,
			TotalSent:      d.TotalSent,
			AvgPerMonth:    d.AvgPerMonth,
			HealthScore:    d.HealthScore,
			LastSubject:    d.LastSubject,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(out),
		"results": out,
	})
}

// handleIngest kicks off one ingestion run per configured source. Async —
// returns 202 immediately; overlapping requests are shed by the run guard.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if len(s.runners) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "no sources configured"})
		return
	}

	for _, runner := range s.runners {
		runner := runner
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
			defer cancel()
			if _, err := runner.Run(ctx); err != nil {
				if errors.Is(err, store.ErrRunActive) {
					log.Printf("ingest %s: already running", runner.Source.Name())
					return
				}
				log.Printf("ingest %s: %v", runner.Source.Name(), err)
			}
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "ingesting"})
}

// handleScore triggers a scoring pass without ingestion.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	go func() {
		if n, err := scoring.Recompute(s.db, time.Now()); err != nil {
			log.Printf("rescore: %v", err)
		} else {
			log.Printf("rescore: updated %d relationships", n)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "scoring"})
}
