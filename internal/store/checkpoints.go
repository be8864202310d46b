package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunError     = "error"
)

// ErrRunActive is returned by StartRun when a run of the same type is already
// in flight. The single running row per run type is the pipeline's only
// concurrency control.
var ErrRunActive = errors.New("a run of this type is already running")

// staleRunAfter bounds how long a running checkpoint is trusted. Live runs
// finish well inside this (the server and scheduler cap a run at two hours);
// a running row this old was left by a process that died without finishing
// and must not block its run type forever.
const staleRunAfter = 6 * time.Hour

// Checkpoint is a persisted progress marker for one pipeline run.
type Checkpoint struct {
	ID               int64
	RunID            string
	RunType          string
	WindowCursor     int64 // earliest boundary already processed, unixmilli
	RecordsProcessed int
	Status           string
	Message          string
	StartedAt        int64
	EndedAt          *int64
}

// StartRun creates a running checkpoint for the given run type. It refuses
// with ErrRunActive when one is already running, and seeds the window cursor
// from the newest incomplete run of the same type so a restarted run picks up
// exactly where the stopped one left off. A running row abandoned by a crashed
// process is converted to an errored one first, preserving its cursor for the
// resume path.
func (db *DB) StartRun(runType string) (*Checkpoint, error) {
	now := time.Now().UnixMilli()

	if _, err := db.Exec(`
		UPDATE checkpoints SET status = 'error', message = 'stale', ended_at = ?
		WHERE run_type = ? AND status = 'running' AND started_at < ?
	`, now, runType, now-staleRunAfter.Milliseconds()); err != nil {
		return nil, fmt.Errorf("sweep stale runs: %w", err)
	}

	var active int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM checkpoints WHERE run_type = ? AND status = 'running'", runType,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check active runs: %w", err)
	}
	if active > 0 {
		return nil, ErrRunActive
	}

	cursor, err := db.ResumeCursor(runType)
	if err != nil {
		return nil, err
	}

	runID := newRunID()
	result, err := db.Exec(`
		INSERT INTO checkpoints (run_id, run_type, window_cursor, records_processed, status, started_at)
		VALUES (?, ?, ?, 0, 'running', ?)
	`, runID, runType, cursor, now)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	id, _ := result.LastInsertId()
	return &Checkpoint{
		ID:           id,
		RunID:        runID,
		RunType:      runType,
		WindowCursor: cursor,
		Status:       RunRunning,
		StartedAt:    now,
	}, nil
}

// ResumeCursor returns the window cursor of the newest non-completed run for
// the run type, or 0 when there is nothing to resume (a completed run means
// the whole date range was covered; the next run starts fresh from now).
func (db *DB) ResumeCursor(runType string) (int64, error) {
	var cursor int64
	err := db.QueryRow(`
		SELECT window_cursor FROM checkpoints
		WHERE run_type = ? AND status = 'error' AND window_cursor > 0
			AND started_at > COALESCE(
				(SELECT MAX(started_at) FROM checkpoints WHERE run_type = ? AND status = 'completed'), 0)
		ORDER BY started_at DESC LIMIT 1
	`, runType, runType).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resume cursor: %w", err)
	}
	return cursor, nil
}

// UpdateRunProgress persists the cursor and running total after a window.
func (db *DB) UpdateRunProgress(runID string, windowCursor int64, recordsProcessed int) error {
	_, err := db.Exec(`
		UPDATE checkpoints SET window_cursor = ?, records_processed = ?
		WHERE run_id = ?
	`, windowCursor, recordsProcessed, runID)
	if err != nil {
		return fmt.Errorf("update run progress: %w", err)
	}
	return nil
}

// FinishRun marks a run completed or errored. The partial record count and
// cursor are preserved either way so partial results stay queryable.
func (db *DB) FinishRun(runID, status, message string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE checkpoints SET status = ?, message = NULLIF(?, ''), ended_at = ?
		WHERE run_id = ?
	`, status, message, now, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LatestCheckpoint returns the most recent checkpoint for a run type, or nil.
func (db *DB) LatestCheckpoint(runType string) (*Checkpoint, error) {
	row := db.QueryRow(checkpointColumns+`
		WHERE run_type = ? ORDER BY started_at DESC LIMIT 1
	`, runType)
	c, err := scanCheckpoint(row)
	if err != nil {
		return nil, fmt.Errorf("latest checkpoint %s: %w", runType, err)
	}
	return c, nil
}

// LatestCheckpoints returns the most recent checkpoint per run type.
func (db *DB) LatestCheckpoints() ([]Checkpoint, error) {
	rows, err := db.Query(`
		SELECT id, run_id, run_type, window_cursor, records_processed, status, message, started_at, ended_at
		FROM checkpoints c
		WHERE started_at = (SELECT MAX(started_at) FROM checkpoints WHERE run_type = c.run_type)
		ORDER BY run_type
	`)
	if err != nil {
		return nil, fmt.Errorf("latest checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var c Checkpoint
		var message sql.NullString
		var endedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.RunID, &c.RunType, &c.WindowCursor, &c.RecordsProcessed,
			&c.Status, &message, &c.StartedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		c.Message = message.String
		if endedAt.Valid {
			c.EndedAt = &endedAt.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const checkpointColumns = `
	SELECT id, run_id, run_type, window_cursor, records_processed, status, message, started_at, ended_at
	FROM checkpoints`

func scanCheckpoint(row *sql.Row) (*Checkpoint, error) {
	var c Checkpoint
	var message sql.NullString
	var endedAt sql.NullInt64
	err := row.Scan(&c.ID, &c.RunID, &c.RunType, &c.WindowCursor, &c.RecordsProcessed,
		&c.Status, &message, &c.StartedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Message = message.String
	if endedAt.Valid {
		c.EndedAt = &endedAt.Int64
	}
	return &c, nil
}

func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// crypto/rand failure is not recoverable; fall back to a timestamp id.
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}
