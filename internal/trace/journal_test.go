package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	j, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	if _, err := os.Stat(filepath.Join(dir, "synaptic.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	events := []Event{
		{Kind: KindPrune, EdgeID: "e1", Detail: map[string]any{"weight": 0.05}},
		{Kind: KindRewire, NodeID: "b", EdgeID: "e2"},
		{Kind: KindFailover, NodeID: "b"},
	}
	for _, ev := range events {
		if err := j.Record(ctx, ev); err != nil {
			t.Fatalf("Record(%s): %v", ev.Kind, err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent returned %d events, want 3", len(got))
	}

	// Most recent first.
	if got[0].Kind != KindFailover {
		t.Errorf("newest kind = %s, want failover", got[0].Kind)
	}
	if got[2].Kind != KindPrune {
		t.Errorf("oldest kind = %s, want prune", got[2].Kind)
	}
	if got[2].EdgeID != "e1" {
		t.Errorf("EdgeID = %q, want e1", got[2].EdgeID)
	}
	if got[2].Detail == nil || got[2].Detail["weight"] != 0.05 {
		t.Errorf("Detail = %v, want weight 0.05 round-tripped", got[2].Detail)
	}
	if got[0].Time.IsZero() {
		t.Error("a zero event time should be stamped on record")
	}
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, Event{Kind: KindTransmit}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d events", len(got))
	}

	// Non-positive limits fall back to a sane default.
	got, err = j.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("Recent(0) returned %d events, want all 5", len(got))
	}
}

func TestRecordRequiresKind(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Record(context.Background(), Event{}); err == nil {
		t.Error("recording an event without a kind should fail")
	}
}

func TestRecordKeepsExplicitTime(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	when := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := j.Record(ctx, Event{Kind: KindNodeFailed, Time: when}); err != nil {
		t.Fatal(err)
	}

	got, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].Time.Equal(when) {
		t.Errorf("Time = %v, want %v", got[0].Time, when)
	}
}

func TestCountByKind(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	for i := 0; i < 3; i++ {
		if err := j.Record(ctx, Event{Kind: KindPrune}); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Record(ctx, Event{Kind: KindRewire}); err != nil {
		t.Fatal(err)
	}

	counts, err := j.CountByKind(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindPrune] != 3 {
		t.Errorf("prune count = %d, want 3", counts[KindPrune])
	}
	if counts[KindRewire] != 1 {
		t.Errorf("rewire count = %d, want 1", counts[KindRewire])
	}
	if counts[KindFailover] != 0 {
		t.Errorf("failover count = %d, want 0", counts[KindFailover])
	}
}

func TestJournalReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	j, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, Event{Kind: KindCompensate, NodeID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	// Events survive across opens; the journal is the one durable surface.
	j2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer j2.Close()

	counts, err := j2.CountByKind(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[KindCompensate] != 1 {
		t.Errorf("compensate count after reopen = %d, want 1", counts[KindCompensate])
	}
}

func TestCloseNil(t *testing.T) {
	var j *Journal
	if err := j.Close(); err != nil {
		t.Errorf("closing a nil journal should be a no-op, got %v", err)
	}
}
