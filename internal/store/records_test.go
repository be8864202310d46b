package store

import (
	"testing"
	"time"
)

func TestInsertRecordIfAbsent(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	rel, _ := db.UpsertRelationship("jane@example.com", "", ms(now))
	rec := &Record{
		RelationshipID: rel.ID,
		ExternalID:     "gmail-123",
		Subject:        "catching up",
		Channel:        "email",
		SentAt:         ms(now),
		StorageTier:    "full",
		Content:        "long time no talk",
		WordCount:      4,
	}

	inserted, err := db.InsertRecordIfAbsent(rec)
	if err != nil {
		t.Fatalf("InsertRecordIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert on first sight")
	}
	if rec.ID == 0 {
		t.Error("expected non-zero record ID")
	}

	// Same external ID again: silent no-op, not an error.
	dup := &Record{RelationshipID: rel.ID, ExternalID: "gmail-123", Channel: "email",
		SentAt: ms(now), StorageTier: "full", Content: "different body"}
	inserted, err = db.InsertRecordIfAbsent(dup)
	if err != nil {
		t.Fatalf("duplicate InsertRecordIfAbsent: %v", err)
	}
	if inserted {
		t.Error("expected duplicate insert to no-op")
	}

	n, _ := db.CountRecords(0)
	if n != 1 {
		t.Errorf("record count = %d, want 1", n)
	}
}

func TestRecordTierFields(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	rel, _ := db.UpsertRelationship("jane@example.com", "", ms(now))

	cases := []struct {
		name        string
		rec         Record
		wantContent string
		wantSummary string
	}{
		{"full keeps content", Record{ExternalID: "f1", StorageTier: "full", Content: "the full body"}, "the full body", ""},
		{"summary keeps synopsis", Record{ExternalID: "s1", StorageTier: "summary", Summary: "discussed dinner"}, "", "discussed dinner"},
		{"metadata keeps neither", Record{ExternalID: "m1", StorageTier: "metadata"}, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.rec
			rec.RelationshipID = rel.ID
			rec.Channel = "email"
			rec.SentAt = ms(now)
			if _, err := db.InsertRecordIfAbsent(&rec); err != nil {
				t.Fatalf("insert: %v", err)
			}

			got, err := db.GetRecordByExternalID(rec.ExternalID)
			if err != nil {
				t.Fatalf("GetRecordByExternalID: %v", err)
			}
			if got == nil {
				t.Fatal("expected record, got nil")
			}
			if got.Content != tc.wantContent {
				t.Errorf("content = %q, want %q", got.Content, tc.wantContent)
			}
			if got.Summary != tc.wantSummary {
				t.Errorf("summary = %q, want %q", got.Summary, tc.wantSummary)
			}
		})
	}
}

func TestIngestRecordCreatesRelationship(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	rec := &Record{ExternalID: "e1", Subject: "hello", Channel: "email",
		SentAt: ms(now.AddDate(0, 0, -5)), StorageTier: "full", Content: "hi", WordCount: 1}
	inserted, err := db.IngestRecord("jane@example.com", "Jane Doe", rec)
	if err != nil {
		t.Fatalf("IngestRecord: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert")
	}

	rel, _ := db.GetRelationship("jane@example.com")
	if rel == nil {
		t.Fatal("expected relationship created lazily")
	}
	if rel.TotalSent != 1 {
		t.Errorf("total_sent = %d, want 1", rel.TotalSent)
	}
	if rel.DisplayName != "Jane Doe" {
		t.Errorf("display_name = %q, want %q", rel.DisplayName, "Jane Doe")
	}
	if rec.RelationshipID != rel.ID {
		t.Errorf("record relationship_id = %d, want %d", rec.RelationshipID, rel.ID)
	}
}

func TestIngestRecordIdempotent(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	rec := &Record{ExternalID: "e1", Channel: "email",
		SentAt: ms(now.AddDate(0, 0, -5)), StorageTier: "full", Content: "hi"}
	if _, err := db.IngestRecord("jane@example.com", "", rec); err != nil {
		t.Fatalf("first IngestRecord: %v", err)
	}

	again := &Record{ExternalID: "e1", Channel: "email",
		SentAt: ms(now.AddDate(0, 0, -5)), StorageTier: "full", Content: "hi"}
	inserted, err := db.IngestRecord("jane@example.com", "", again)
	if err != nil {
		t.Fatalf("second IngestRecord: %v", err)
	}
	if inserted {
		t.Error("expected duplicate ingestion to no-op")
	}

	rel, _ := db.GetRelationship("jane@example.com")
	if rel.TotalSent != 1 {
		t.Errorf("total_sent = %d after duplicate, want 1", rel.TotalSent)
	}
	n, _ := db.CountRecords(0)
	if n != 1 {
		t.Errorf("record count = %d after duplicate, want 1", n)
	}
}

func TestIngestRecordAdvancesContactRange(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	older := ms(now.AddDate(0, 0, -50))
	newer := ms(now.AddDate(0, 0, -5))

	db.IngestRecord("jane@example.com", "", &Record{ExternalID: "e1", Channel: "email",
		SentAt: newer, StorageTier: "full", Content: "a"})
	db.IngestRecord("jane@example.com", "", &Record{ExternalID: "e2", Channel: "email",
		SentAt: older, StorageTier: "metadata"})

	rel, _ := db.GetRelationship("jane@example.com")
	if rel.FirstContactAt != older {
		t.Errorf("first_contact_at = %d, want %d", rel.FirstContactAt, older)
	}
	if rel.LastContactAt != newer {
		t.Errorf("last_contact_at = %d, want %d", rel.LastContactAt, newer)
	}
	if rel.TotalSent != 2 {
		t.Errorf("total_sent = %d, want 2", rel.TotalSent)
	}
}
