package history_test

import (
	"context"
	"testing"
	"time"

	"pcbwatch/internal/history"
	"pcbwatch/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		id, err := store.Record(ctx, history.PassRecord{
			StartedAt:        started,
			FinishedAt:       started.Add(200 * time.Millisecond),
			Outcome:          history.OutcomeProcessed,
			Encoding:         "utf-8",
			Matches:          5 + i,
			NewIdentifiers:   i,
			TotalIdentifiers: 10 + i,
			DiagnosticLines:  5 + i,
			Digest:           "abc123",
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if id == "" {
			t.Fatal("expected assigned record id")
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].StartedAt.After(records[1].StartedAt) {
		t.Fatalf("expected newest first: %v then %v", records[0].StartedAt, records[1].StartedAt)
	}
	if records[0].TotalIdentifiers != 12 {
		t.Fatalf("unexpected total: %d", records[0].TotalIdentifiers)
	}
}

func TestLastOnEmptyLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	last, err := store.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last != nil {
		t.Fatalf("expected nil record, got %+v", last)
	}
}

func TestRecordRoundTripsFlags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := store.Record(ctx, history.PassRecord{
		StartedAt:    now,
		FinishedAt:   now,
		Outcome:      history.OutcomeProcessed,
		Encoding:     "utf-8-lossy",
		Lossy:        true,
		UsedFallback: true,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	last, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil {
		t.Fatal("expected a record")
	}
	if !last.Lossy || !last.UsedFallback {
		t.Fatalf("flags not preserved: %+v", last)
	}
}
