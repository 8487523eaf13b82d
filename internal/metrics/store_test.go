package metrics

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"diet-wizard/internal/database"
	"diet-wizard/internal/diet"
	"diet-wizard/internal/nutrition"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	store := newTestStore(t)

	store.ObserveFetch("s1", nutrition.Succeeded(&diet.Plan{Name: "Dieta"}), 200*time.Millisecond)
	store.ObserveFetch("s2", nutrition.Failed(&diet.TransportError{Op: "create", Err: errors.New("refused")}), 400*time.Millisecond)
	if err := store.Record(FetchMetric{
		SessionID: "old",
		Status:    "succeeded",
		LatencyMS: 100,
		Timestamp: time.Now().UTC().AddDate(0, 0, -40),
	}); err != nil {
		t.Fatalf("Failed to record old metric: %v", err)
	}

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("Failed to get daily usage: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		if usage[0].Succeeded != 1 || usage[0].Failed != 1 || usage[0].Total() != 2 {
			t.Errorf("Unexpected totals: %+v", usage[0])
		}
		if usage[0].AvgLatencyMS != 300 {
			t.Errorf("Expected average latency 300ms, got %d", usage[0].AvgLatencyMS)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		affected, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if affected != 1 {
			t.Errorf("Expected 1 removed record, got %d", affected)
		}
	})
}

func TestMapOutcome(t *testing.T) {
	m := MapOutcome("s", nutrition.Failed(&diet.MalformedResponseError{Reason: "x"}), 1500*time.Millisecond)
	if m.Status != "failed" || m.ErrorKind != "malformed" || m.LatencyMS != 1500 {
		t.Errorf("Unexpected metric: %+v", m)
	}
}
