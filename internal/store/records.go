package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Record is one ingested outbound communication event. Records are append-only:
// the storage tier and content are fixed at ingestion time and never re-derived.
type Record struct {
	ID             int64
	RelationshipID int64
	ExternalID     string
	ThreadID       string
	Subject        string
	Channel        string // "email" or "message"
	SentAt         int64
	StorageTier    string // "full", "summary", "metadata"
	Content        string // populated only for tier "full"
	Summary        string // populated only for tier "summary"
	WordCount      int
	CreatedAt      int64
}

// InsertRecordIfAbsent inserts a record keyed by its external ID. Returns
// false without error when the external ID was already ingested — duplicate
// ingestion is a no-op, not a failure.
func (db *DB) InsertRecordIfAbsent(rec *Record) (bool, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT OR IGNORE INTO records (relationship_id, external_id, thread_id, subject, channel, sent_at,
			storage_tier, content, summary, word_count, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`, rec.RelationshipID, rec.ExternalID, rec.ThreadID, rec.Subject, rec.Channel, rec.SentAt,
		rec.StorageTier, rec.Content, rec.Summary, rec.WordCount, now)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return false, nil
	}
	id, _ := result.LastInsertId()
	rec.ID = id
	rec.CreatedAt = now
	return true, nil
}

// IngestRecord is the pipeline write path: one transaction that creates the
// relationship if needed, inserts the record if its external ID is new, and
// bumps the relationship counters only when the record actually landed. A
// duplicate record therefore never moves total_sent or last_contact_at.
func (db *DB) IngestRecord(key, displayNameHint string, rec *Record) (bool, error) {
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback()

	// Placeholder counters; bumped below only if the record is new. A duplicate
	// record implies the relationship already exists, so the zero-sent branch
	// never survives a commit.
	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO relationships (counterpart_key, display_name, first_contact_at, last_contact_at, total_sent, created_at, updated_at)
		VALUES (?, NULLIF(?, ''), ?, ?, 0, ?, ?)
	`, key, displayNameHint, rec.SentAt, rec.SentAt, now, now); err != nil {
		return false, fmt.Errorf("ensure relationship: %w", err)
	}

	var relID int64
	if err := tx.QueryRow("SELECT id FROM relationships WHERE counterpart_key = ?", key).Scan(&relID); err != nil {
		return false, fmt.Errorf("lookup relationship: %w", err)
	}
	rec.RelationshipID = relID

	result, err := tx.Exec(`
		INSERT OR IGNORE INTO records (relationship_id, external_id, thread_id, subject, channel, sent_at,
			storage_tier, content, summary, word_count, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`, relID, rec.ExternalID, rec.ThreadID, rec.Subject, rec.Channel, rec.SentAt,
		rec.StorageTier, rec.Content, rec.Summary, rec.WordCount, now)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return false, tx.Commit()
	}
	id, _ := result.LastInsertId()
	rec.ID = id
	rec.CreatedAt = now

	if _, err := tx.Exec(`
		UPDATE relationships
		SET total_sent       = total_sent + 1,
			first_contact_at = MIN(first_contact_at, ?),
			last_contact_at  = MAX(last_contact_at, ?),
			display_name     = COALESCE(NULLIF(?, ''), display_name),
			updated_at       = ?
		WHERE id = ?
	`, rec.SentAt, rec.SentAt, displayNameHint, now, relID); err != nil {
		return false, fmt.Errorf("bump relationship: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit ingest: %w", err)
	}
	return true, nil
}

// GetRecordByExternalID returns a record by its idempotency key, or nil.
func (db *DB) GetRecordByExternalID(externalID string) (*Record, error) {
	var r Record
	var threadID, content, summary sql.NullString
	err := db.QueryRow(`
		SELECT id, relationship_id, external_id, thread_id, subject, channel, sent_at,
			storage_tier, content, summary, word_count, created_at
		FROM records WHERE external_id = ?
	`, externalID).Scan(&r.ID, &r.RelationshipID, &r.ExternalID, &threadID, &r.Subject, &r.Channel, &r.SentAt,
		&r.StorageTier, &content, &summary, &r.WordCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", externalID, err)
	}
	r.ThreadID = threadID.String
	r.Content = content.String
	r.Summary = summary.String
	return &r, nil
}

// CountRecords returns the number of record rows, optionally scoped to one
// relationship (pass 0 for all).
func (db *DB) CountRecords(relationshipID int64) (int, error) {
	var n int
	var err error
	if relationshipID == 0 {
		err = db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)
	} else {
		err = db.QueryRow("SELECT COUNT(*) FROM records WHERE relationship_id = ?", relationshipID).Scan(&n)
	}
	return n, err
}
