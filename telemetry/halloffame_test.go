package telemetry

import (
	"math/rand"
	"path/filepath"
	"testing"
)

func hallRecord(id uint32, lifespan int32, children int) LifetimeRecord {
	return LifetimeRecord{
		CreatureID: id,
		Origin:     "seed",
		Lifespan:   lifespan,
		Children:   children,
		Genes:      "(sucker,5,0.5,-1)(solar,6,0.7,-1)",
	}
}

func TestHallOfFame_EntryCriteria(t *testing.T) {
	hof := NewHallOfFame(8, rand.New(rand.NewSource(1)))

	if hof.Consider(hallRecord(1, 100, 0)) {
		t.Error("short-lived childless creature admitted")
	}
	if !hof.Consider(hallRecord(2, 100, 1)) {
		t.Error("reproducing creature rejected")
	}
	if !hof.Consider(hallRecord(3, 5000, 0)) {
		t.Error("long-lived creature rejected")
	}
	if hof.Len() != 2 {
		t.Errorf("hall size = %d, want 2", hof.Len())
	}
}

func TestHallOfFame_SortedAndBounded(t *testing.T) {
	hof := NewHallOfFame(3, rand.New(rand.NewSource(1)))

	hof.Consider(hallRecord(1, 3000, 0))
	hof.Consider(hallRecord(2, 2500, 2))
	hof.Consider(hallRecord(3, 2200, 1))
	hof.Consider(hallRecord(4, 4000, 3))

	entries := hof.Entries()
	if len(entries) != 3 {
		t.Fatalf("hall size = %d, want capacity 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Fitness < entries[i].Fitness {
			t.Errorf("entries not sorted descending: %f before %f", entries[i-1].Fitness, entries[i].Fitness)
		}
	}
	// Creature 3 has the lowest fitness (2700 vs 3000, 3500, 5500) and must
	// have been evicted.
	for _, e := range entries {
		if e.CreatureID == 3 {
			t.Error("lowest-fitness entry survived over-capacity insert")
		}
	}

	// A weaker record than every resident is rejected outright.
	if hof.Consider(hallRecord(5, 2100, 0)) {
		t.Error("record below the full hall's floor was admitted")
	}
}

func TestHallOfFame_SampleGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	hof := NewHallOfFame(4, rng)

	if _, ok := hof.SampleGenome(); ok {
		t.Fatal("empty hall produced a genome")
	}

	hof.Consider(hallRecord(1, 3000, 2))
	g, ok := hof.SampleGenome()
	if !ok {
		t.Fatal("populated hall returned no genome")
	}
	if len(g) != 2 {
		t.Errorf("sampled genome has %d genes, want 2", len(g))
	}
}

func TestHallOfFame_SaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	hof := NewHallOfFame(4, rng)
	hof.Consider(hallRecord(1, 3000, 2))
	hof.Consider(hallRecord(2, 2500, 1))

	path := filepath.Join(t.TempDir(), "hall.json")
	if err := hof.SaveToFile(path); err != nil {
		t.Fatalf("saving hall: %v", err)
	}

	loaded, err := LoadHallOfFame(path, 4, rng)
	if err != nil {
		t.Fatalf("loading hall: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded size = %d, want 2", loaded.Len())
	}
	if loaded.Entries()[0].CreatureID != hof.Entries()[0].CreatureID {
		t.Errorf("loaded order differs: %+v", loaded.Entries())
	}

	// Loading with a smaller capacity keeps the fittest entries.
	trimmed, err := LoadHallOfFame(path, 1, rng)
	if err != nil {
		t.Fatalf("loading trimmed hall: %v", err)
	}
	if trimmed.Len() != 1 || trimmed.Entries()[0].CreatureID != 1 {
		t.Errorf("trimmed hall = %+v, want only creature 1", trimmed.Entries())
	}
}
