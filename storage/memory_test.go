package storage

import (
	"context"
	"testing"
	"time"
)

func testRun(id string) RunRecord {
	return RunRecord{
		ID:        id,
		Seed:      42,
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Ticks:     50000,
		Config:    "world:\n  width: 1600\n",
	}
}

func testLineage() []LineageRecord {
	return []LineageRecord{
		{CreatureID: 1, Origin: "seed", BirthTick: 0, DeathTick: 900, Lifespan: 900,
			Genome: "(sucker,5,0.5,-1)(solar,6,0.7,-1)"},
		{CreatureID: 2, ParentA: 1, Origin: "division", BirthTick: 400,
			Genome: "(sucker,5,0.52,-1)(solar,6,0.7,-1)"},
	}
}

func TestMemoryStore_RunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, found, err := store.GetRun(ctx, "missing"); err != nil || found {
		t.Fatalf("missing run: found=%v err=%v, want false, nil", found, err)
	}

	run := testRun("run-a")
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("saving run: %v", err)
	}
	got, found, err := store.GetRun(ctx, "run-a")
	if err != nil || !found {
		t.Fatalf("loading run: found=%v err=%v", found, err)
	}
	if got != run {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, run)
	}
}

func TestMemoryStore_ListRunsSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []string{"run-c", "run-a", "run-b"} {
		if err := store.SaveRun(ctx, testRun(id)); err != nil {
			t.Fatalf("saving %s: %v", id, err)
		}
	}

	ids, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	want := []string{"run-a", "run-b", "run-c"}
	if len(ids) != len(want) {
		t.Fatalf("listed %d runs, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestMemoryStore_LineageIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	lineage := testLineage()
	if err := store.SaveLineage(ctx, "run-a", lineage); err != nil {
		t.Fatalf("saving lineage: %v", err)
	}

	// Mutating the caller's slice must not reach the store.
	lineage[0].Lifespan = 1

	got, found, err := store.GetLineage(ctx, "run-a")
	if err != nil || !found {
		t.Fatalf("loading lineage: found=%v err=%v", found, err)
	}
	if got[0].Lifespan != 900 {
		t.Errorf("stored lineage shares memory with caller: lifespan = %d", got[0].Lifespan)
	}

	// Mutating the returned slice must not reach the store either.
	got[1].Origin = "mating"
	again, _, _ := store.GetLineage(ctx, "run-a")
	if again[1].Origin != "division" {
		t.Errorf("returned lineage shares memory with store: origin = %s", again[1].Origin)
	}
}

func TestMemoryStore_EnergyHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, found, err := store.GetEnergyHistory(ctx, "run-a"); err != nil || found {
		t.Fatalf("missing history: found=%v err=%v, want false, nil", found, err)
	}

	history := []float64{52.1, 48.9, 61.3}
	if err := store.SaveEnergyHistory(ctx, "run-a", history); err != nil {
		t.Fatalf("saving history: %v", err)
	}
	got, found, err := store.GetEnergyHistory(ctx, "run-a")
	if err != nil || !found {
		t.Fatalf("loading history: found=%v err=%v", found, err)
	}
	if len(got) != 3 || got[2] != 61.3 {
		t.Errorf("history round trip mismatch: %v", got)
	}
}
