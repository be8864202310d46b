package store

import (
	"errors"
	"testing"
	"time"
)

func TestStartRunSingleFlight(t *testing.T) {
	db := testDB(t)

	ck, err := db.StartRun("email")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if ck.Status != RunRunning {
		t.Errorf("status = %q, want running", ck.Status)
	}
	if ck.RunID == "" {
		t.Error("expected non-empty run_id")
	}

	// A second run of the same type must be refused while one is in flight.
	if _, err := db.StartRun("email"); !errors.Is(err, ErrRunActive) {
		t.Errorf("second StartRun err = %v, want ErrRunActive", err)
	}

	// A different run type is independent.
	if _, err := db.StartRun("message"); err != nil {
		t.Errorf("StartRun message: %v", err)
	}
}

func TestFinishRunReleasesGuard(t *testing.T) {
	db := testDB(t)

	ck, _ := db.StartRun("email")
	if err := db.FinishRun(ck.RunID, RunCompleted, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	latest, err := db.LatestCheckpoint("email")
	if err != nil {
		t.Fatalf("LatestCheckpoint: %v", err)
	}
	if latest.Status != RunCompleted {
		t.Errorf("status = %q, want completed", latest.Status)
	}
	if latest.EndedAt == nil {
		t.Error("expected ended_at set")
	}

	// Guard released: a new run may start.
	if _, err := db.StartRun("email"); err != nil {
		t.Errorf("StartRun after completion: %v", err)
	}
}

func TestStartRunTakesOverStaleRun(t *testing.T) {
	db := testDB(t)

	// A crashed process leaves a running row behind with no FinishRun. Once
	// it is old enough it must stop blocking the run type.
	staleStart := time.Now().Add(-7 * time.Hour).UnixMilli()
	_, err := db.Exec(`
		INSERT INTO checkpoints (run_id, run_type, window_cursor, records_processed, status, started_at)
		VALUES ('dead-run', 'email', 1700000000000, 9, 'running', ?)
	`, staleStart)
	if err != nil {
		t.Fatalf("seed stale run: %v", err)
	}

	ck, err := db.StartRun("email")
	if err != nil {
		t.Fatalf("StartRun over stale run: %v", err)
	}
	// The abandoned run's progress carries into the takeover.
	if ck.WindowCursor != 1700000000000 {
		t.Errorf("cursor = %d, want inherited 1700000000000", ck.WindowCursor)
	}

	var status, message string
	if err := db.QueryRow(
		"SELECT status, message FROM checkpoints WHERE run_id = 'dead-run'",
	).Scan(&status, &message); err != nil {
		t.Fatalf("read dead run: %v", err)
	}
	if status != RunError || message != "stale" {
		t.Errorf("dead run = %q/%q, want error/stale", status, message)
	}
}

func TestStartRunKeepsFreshRunningRow(t *testing.T) {
	db := testDB(t)

	// Just under the staleness threshold: still trusted, still blocking.
	recentStart := time.Now().Add(-time.Hour).UnixMilli()
	_, err := db.Exec(`
		INSERT INTO checkpoints (run_id, run_type, status, started_at)
		VALUES ('live-run', 'email', 'running', ?)
	`, recentStart)
	if err != nil {
		t.Fatalf("seed live run: %v", err)
	}

	if _, err := db.StartRun("email"); !errors.Is(err, ErrRunActive) {
		t.Errorf("StartRun err = %v, want ErrRunActive for a fresh running row", err)
	}
}

func TestResumeCursorFromErroredRun(t *testing.T) {
	db := testDB(t)

	ck, _ := db.StartRun("email")
	if err := db.UpdateRunProgress(ck.RunID, 1700000000000, 42); err != nil {
		t.Fatalf("UpdateRunProgress: %v", err)
	}
	db.FinishRun(ck.RunID, RunError, "canceled")

	// Partial count and cursor are preserved on the errored row.
	latest, _ := db.LatestCheckpoint("email")
	if latest.RecordsProcessed != 42 {
		t.Errorf("records_processed = %d, want 42 preserved", latest.RecordsProcessed)
	}
	if latest.Message != "canceled" {
		t.Errorf("message = %q, want canceled", latest.Message)
	}

	// The next run inherits the cursor.
	next, err := db.StartRun("email")
	if err != nil {
		t.Fatalf("StartRun after error: %v", err)
	}
	if next.WindowCursor != 1700000000000 {
		t.Errorf("resumed cursor = %d, want 1700000000000", next.WindowCursor)
	}
}

func TestResumeCursorFreshAfterCompletion(t *testing.T) {
	db := testDB(t)

	ck, _ := db.StartRun("email")
	db.UpdateRunProgress(ck.RunID, 1700000000000, 10)
	db.FinishRun(ck.RunID, RunCompleted, "")

	// A completed run covered the whole range; the next starts fresh.
	next, _ := db.StartRun("email")
	if next.WindowCursor != 0 {
		t.Errorf("cursor = %d after completed run, want 0", next.WindowCursor)
	}
}

func TestLatestCheckpoints(t *testing.T) {
	db := testDB(t)

	a, _ := db.StartRun("email")
	db.FinishRun(a.RunID, RunCompleted, "")
	b, _ := db.StartRun("message")
	db.FinishRun(b.RunID, RunError, "transport down")

	all, err := db.LatestCheckpoints()
	if err != nil {
		t.Fatalf("LatestCheckpoints: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(all))
	}
	// Sorted by run_type: email first.
	if all[0].RunType != "email" || all[1].RunType != "message" {
		t.Errorf("run types = %s, %s; want email, message", all[0].RunType, all[1].RunType)
	}
	if all[1].Message != "transport down" {
		t.Errorf("message = %q, want %q", all[1].Message, "transport down")
	}
}

func TestLatestCheckpointMissing(t *testing.T) {
	db := testDB(t)

	ck, err := db.LatestCheckpoint("email")
	if err != nil {
		t.Fatalf("LatestCheckpoint: %v", err)
	}
	if ck != nil {
		t.Error("expected nil for unknown run type")
	}
}
