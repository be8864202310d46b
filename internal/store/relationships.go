package store

import (
	"database/sql"
	"fmt"
	"time"
)

const millisPerDay = 24 * 60 * 60 * 1000

// healthScoreFloor excludes relationships that are numerically dormant only
// because they barely existed. 10 is the score of a two-message relationship
// that went silent long ago.
const healthScoreFloor = 10

// Relationship aggregates outbound communication with one counterpart identity.
type Relationship struct {
	ID             int64
	CounterpartKey string
	DisplayName    string
	FirstContactAt int64
	LastContactAt  int64
	TotalSent      int

	// Derived fields, owned by the scoring pass.
	DaysSinceLast int
	AvgPerMonth   float64
	Frequency     float64
	HealthScore   int

	CreatedAt int64
	UpdatedAt int64
}

// UpsertRelationship creates a relationship on first sight of a counterpart,
// otherwise advances last_contact_at (only forward), pulls first_contact_at
// back (only earlier), and increments total_sent. A single statement, so
// concurrent or retried ingestion never races across the store boundary.
func (db *DB) UpsertRelationship(key, displayNameHint string, observedAt int64) (*Relationship, error) {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO relationships (counterpart_key, display_name, first_contact_at, last_contact_at, total_sent, created_at, updated_at)
		VALUES (?, NULLIF(?, ''), ?, ?, 1, ?, ?)
		ON CONFLICT(counterpart_key) DO UPDATE SET
			first_contact_at = MIN(first_contact_at, excluded.first_contact_at),
			last_contact_at  = MAX(last_contact_at, excluded.last_contact_at),
			total_sent       = total_sent + 1,
			display_name     = COALESCE(NULLIF(excluded.display_name, ''), display_name),
			updated_at       = excluded.updated_at
	`, key, displayNameHint, observedAt, observedAt, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert relationship: %w", err)
	}
	return db.GetRelationship(key)
}

// GetRelationship returns a relationship by counterpart key, or nil if not found.
func (db *DB) GetRelationship(key string) (*Relationship, error) {
	r, err := scanRelationship(db.QueryRow(relationshipColumns+" WHERE counterpart_key = ?", key))
	if err != nil {
		return nil, fmt.Errorf("get relationship %s: %w", key, err)
	}
	return r, nil
}

// GetRelationshipByID returns a relationship by row ID, or nil if not found.
func (db *DB) GetRelationshipByID(id int64) (*Relationship, error) {
	r, err := scanRelationship(db.QueryRow(relationshipColumns+" WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get relationship %d: %w", id, err)
	}
	return r, nil
}

const relationshipColumns = `
	SELECT id, counterpart_key, display_name, first_contact_at, last_contact_at, total_sent,
		days_since_last, avg_per_month, frequency, health_score, created_at, updated_at
	FROM relationships`

func scanRelationship(row *sql.Row) (*Relationship, error) {
	var r Relationship
	var name sql.NullString
	err := row.Scan(&r.ID, &r.CounterpartKey, &name, &r.FirstContactAt, &r.LastContactAt, &r.TotalSent,
		&r.DaysSinceLast, &r.AvgPerMonth, &r.Frequency, &r.HealthScore, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.DisplayName = name.String
	return &r, nil
}

// ScoringTarget is the per-relationship input to the scoring pass.
type ScoringTarget struct {
	ID             int64
	FirstContactAt int64
	LastContactAt  int64
	TotalSent      int
	RecordCount    int
}

// ScoringTargets returns every relationship with its record count, the
// source-of-truth inputs the scoring pass derives everything else from.
func (db *DB) ScoringTargets() ([]ScoringTarget, error) {
	rows, err := db.Query(`
		SELECT r.id, r.first_contact_at, r.last_contact_at, r.total_sent, COUNT(rec.id)
		FROM relationships r
		LEFT JOIN records rec ON rec.relationship_id = r.id
		GROUP BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("scoring targets: %w", err)
	}
	defer rows.Close()

	var targets []ScoringTarget
	for rows.Next() {
		var t ScoringTarget
		if err := rows.Scan(&t.ID, &t.FirstContactAt, &t.LastContactAt, &t.TotalSent, &t.RecordCount); err != nil {
			return nil, fmt.Errorf("scan scoring target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// UpdateDerived writes the recomputed derived fields for one relationship.
func (db *DB) UpdateDerived(id int64, daysSinceLast int, avgPerMonth, frequency float64, healthScore int) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE relationships
		SET days_since_last = ?, avg_per_month = ?, frequency = ?, health_score = ?, updated_at = ?
		WHERE id = ?
	`, daysSinceLast, avgPerMonth, frequency, healthScore, now, id)
	if err != nil {
		return fmt.Errorf("update derived %d: %w", id, err)
	}
	return nil
}

// DormantRelationship is one row of ranked dormant output.
type DormantRelationship struct {
	CounterpartKey string
	DisplayName    string
	DaysSinceLast  int
	TotalSent      int
	AvgPerMonth    float64
	HealthScore    int
	LastSubject    string
}

// QueryDormant returns relationships quiet for at least minDaysSince days with
// at least minTotalSent lifetime records, ranked by prior closeness
// (avg_per_month DESC) then by silence length. Days are computed against the
// caller's now so thresholds behave the same whether or not a scoring pass
// ran since the last contact.
func (db *DB) QueryDormant(now int64, minDaysSince, minTotalSent, limit int) ([]DormantRelationship, error) {
	rows, err := db.Query(`
		SELECT r.counterpart_key, r.display_name,
			(? - r.last_contact_at) / ?,
			r.total_sent, r.avg_per_month, r.health_score,
			(SELECT rec.subject FROM records rec WHERE rec.relationship_id = r.id ORDER BY rec.sent_at DESC LIMIT 1)
		FROM relationships r
		WHERE (? - r.last_contact_at) / ? >= ?
			AND r.total_sent >= ?
			AND r.health_score > ?
		ORDER BY r.avg_per_month DESC, (? - r.last_contact_at) DESC
		LIMIT ?
	`, now, millisPerDay, now, millisPerDay, minDaysSince, minTotalSent, healthScoreFloor, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query dormant: %w", err)
	}
	defer rows.Close()

	var out []DormantRelationship
	for rows.Next() {
		var d DormantRelationship
		var name, subject sql.NullString
		if err := rows.Scan(&d.CounterpartKey, &name, &d.DaysSinceLast, &d.TotalSent, &d.AvgPerMonth, &d.HealthScore, &subject); err != nil {
			return nil, fmt.Errorf("scan dormant: %w", err)
		}
		d.DisplayName = name.String
		d.LastSubject = subject.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountRelationships returns the number of relationship rows.
func (db *DB) CountRelationships() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM relationships").Scan(&n)
	return n, err
}
