package telemetry

import (
	"sort"

	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/sim"
)

// LifetimeRecord summarises one creature's life for the lifetimes CSV and
// the hall of fame.
type LifetimeRecord struct {
	CreatureID uint32  `csv:"creature_id"`
	Origin     string  `csv:"origin"`
	ParentA    uint32  `csv:"parent_a"`
	ParentB    uint32  `csv:"parent_b"`
	BirthTick  int32   `csv:"birth_tick"`
	DeathTick  int32   `csv:"death_tick"`
	Lifespan   int32   `csv:"lifespan"`
	Children   int     `csv:"children"`
	PeakEnergy float32 `csv:"peak_energy"`
	Genes      string  `csv:"genome"`
}

// LifetimeTracker follows every creature from birth to death. It implements
// sim.Recorder; the world calls it synchronously inside Step, so no locking
// is needed. Completed records accumulate until drained by the output pass.
type LifetimeTracker struct {
	live      map[uint32]*LifetimeRecord
	completed []LifetimeRecord
	events    *EventLog
	hall      *HallOfFame
}

// NewLifetimeTracker creates a tracker. Events and hall are optional: a nil
// event log drops the event stream, a nil hall skips fame consideration.
func NewLifetimeTracker(events *EventLog, hall *HallOfFame) *LifetimeTracker {
	return &LifetimeTracker{
		live:   make(map[uint32]*LifetimeRecord),
		events: events,
		hall:   hall,
	}
}

// RecordBirth registers a newborn creature and credits its living parents.
func (lt *LifetimeTracker) RecordBirth(id, parentA, parentB uint32, origin sim.Origin, tick int32, genes genome.Genome) {
	lt.live[id] = &LifetimeRecord{
		CreatureID: id,
		Origin:     origin.String(),
		ParentA:    parentA,
		ParentB:    parentB,
		BirthTick:  tick,
		Genes:      genome.Serialize(genes),
	}
	if rec, ok := lt.live[parentA]; ok && parentA != 0 {
		rec.Children++
	}
	if rec, ok := lt.live[parentB]; ok && parentB != 0 {
		rec.Children++
	}
	if lt.events != nil {
		lt.events.Append(NewBirthEvent(tick, id, parentA, parentB, origin.String()))
	}
}

// RecordDeath finalizes a creature's record and offers it to the hall of
// fame. Unknown IDs are ignored, so a tracker attached mid-run stays safe.
func (lt *LifetimeTracker) RecordDeath(id uint32, tick int32) {
	rec, ok := lt.live[id]
	if !ok {
		return
	}
	delete(lt.live, id)

	rec.DeathTick = tick
	rec.Lifespan = tick - rec.BirthTick
	lt.completed = append(lt.completed, *rec)

	if lt.hall != nil {
		lt.hall.Consider(*rec)
	}
	if lt.events != nil {
		lt.events.Append(NewDeathEvent(tick, id, rec.Lifespan))
	}
}

// ObserveEnergies folds a snapshot's per-creature energies into the live
// records' peaks. Called once per stats window, so peaks are sampled at
// window resolution rather than per tick.
func (lt *LifetimeTracker) ObserveEnergies(snap sim.Snapshot) {
	for i := range snap.Creatures {
		creature := &snap.Creatures[i]
		if rec, ok := lt.live[creature.ID]; ok && creature.Energy > rec.PeakEnergy {
			rec.PeakEnergy = creature.Energy
		}
	}
}

// LiveCount returns the number of creatures currently tracked.
func (lt *LifetimeTracker) LiveCount() int {
	return len(lt.live)
}

// DrainCompleted returns the records of creatures that died since the last
// drain and resets the buffer.
func (lt *LifetimeTracker) DrainCompleted() []LifetimeRecord {
	out := lt.completed
	lt.completed = nil
	return out
}

// LiveRecords returns copies of the records of creatures still alive,
// ordered by ID. Their DeathTick is zero; the final archive includes them so
// a run's lineage is complete even when the soup outlives the run.
func (lt *LifetimeTracker) LiveRecords() []LifetimeRecord {
	out := make([]LifetimeRecord, 0, len(lt.live))
	for _, rec := range lt.live {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatureID < out[j].CreatureID })
	return out
}
