package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/sim"
)

func testGenes() genome.Genome {
	return genome.Parse("(sucker,5,0.5,-1)(solar,6,0.7,-1)")
}

func TestLifetimeTracker_BirthToDeath(t *testing.T) {
	events := NewEventLog()
	lt := NewLifetimeTracker(events, nil)

	lt.RecordBirth(1, 0, 0, sim.OriginSeed, 10, testGenes())
	if lt.LiveCount() != 1 {
		t.Fatalf("live count = %d, want 1", lt.LiveCount())
	}

	lt.RecordDeath(1, 250)
	if lt.LiveCount() != 0 {
		t.Fatalf("live count = %d after death, want 0", lt.LiveCount())
	}

	completed := lt.DrainCompleted()
	if len(completed) != 1 {
		t.Fatalf("completed records = %d, want 1", len(completed))
	}
	rec := completed[0]
	if rec.CreatureID != 1 || rec.BirthTick != 10 || rec.DeathTick != 250 {
		t.Errorf("record = %+v, want id 1 born 10 died 250", rec)
	}
	if rec.Lifespan != 240 {
		t.Errorf("lifespan = %d, want 240", rec.Lifespan)
	}
	if rec.Origin != "seed" {
		t.Errorf("origin = %s, want seed", rec.Origin)
	}
	if rec.Genes != genome.Serialize(testGenes()) {
		t.Errorf("genome text = %s, want serialized input", rec.Genes)
	}

	if lt.DrainCompleted() != nil {
		t.Error("second drain should be empty")
	}

	got := events.Drain()
	if len(got) != 2 || got[0].Type != EventBirth || got[1].Type != EventDeath {
		t.Errorf("event stream = %+v, want birth then death", got)
	}
	if got[1].Lifespan != 240 {
		t.Errorf("death event lifespan = %d, want 240", got[1].Lifespan)
	}
}

func TestLifetimeTracker_CreditsBothParents(t *testing.T) {
	lt := NewLifetimeTracker(nil, nil)

	lt.RecordBirth(1, 0, 0, sim.OriginSeed, 0, testGenes())
	lt.RecordBirth(2, 0, 0, sim.OriginSeed, 0, testGenes())
	lt.RecordBirth(3, 1, 2, sim.OriginMating, 100, testGenes())
	lt.RecordBirth(4, 1, 0, sim.OriginDivision, 200, testGenes())

	lt.RecordDeath(1, 300)
	lt.RecordDeath(2, 300)

	completed := lt.DrainCompleted()
	byID := map[uint32]LifetimeRecord{}
	for _, rec := range completed {
		byID[rec.CreatureID] = rec
	}
	if byID[1].Children != 2 {
		t.Errorf("parent 1 children = %d, want 2 (one mating, one division)", byID[1].Children)
	}
	if byID[2].Children != 1 {
		t.Errorf("parent 2 children = %d, want 1", byID[2].Children)
	}
}

func TestLifetimeTracker_UnknownDeathIgnored(t *testing.T) {
	lt := NewLifetimeTracker(nil, nil)
	lt.RecordDeath(99, 100)
	if got := lt.DrainCompleted(); got != nil {
		t.Errorf("unknown death produced records: %+v", got)
	}
}

func TestLifetimeTracker_ObserveEnergiesTracksPeak(t *testing.T) {
	lt := NewLifetimeTracker(nil, nil)
	lt.RecordBirth(1, 0, 0, sim.OriginSeed, 0, testGenes())

	lt.ObserveEnergies(sim.Snapshot{Creatures: []sim.CreatureState{{ID: 1, Energy: 80}}})
	lt.ObserveEnergies(sim.Snapshot{Creatures: []sim.CreatureState{{ID: 1, Energy: 120}}})
	lt.ObserveEnergies(sim.Snapshot{Creatures: []sim.CreatureState{{ID: 1, Energy: 50}}})

	lt.RecordDeath(1, 500)
	rec := lt.DrainCompleted()[0]
	if rec.PeakEnergy != 120 {
		t.Errorf("peak energy = %f, want 120", rec.PeakEnergy)
	}
}

func TestLifetimeTracker_FeedsHallOfFame(t *testing.T) {
	hall := NewHallOfFame(4, rand.New(rand.NewSource(1)))
	lt := NewLifetimeTracker(nil, hall)

	lt.RecordBirth(1, 0, 0, sim.OriginSeed, 0, testGenes())
	lt.RecordBirth(2, 1, 0, sim.OriginDivision, 100, testGenes())
	lt.RecordDeath(1, 400)

	if hall.Len() != 1 {
		t.Fatalf("hall size = %d, want 1 (creature 1 reproduced)", hall.Len())
	}
	if hall.Entries()[0].CreatureID != 1 {
		t.Errorf("hall entry = %+v, want creature 1", hall.Entries()[0])
	}
}
