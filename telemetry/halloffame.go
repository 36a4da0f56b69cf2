package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/brine/genome"
)

// HallEntry is one proven genome with the record that earned its place.
type HallEntry struct {
	CreatureID uint32  `json:"creature_id"`
	Fitness    float32 `json:"fitness"`
	Lifespan   int32   `json:"lifespan"`
	Children   int     `json:"children"`
	PeakEnergy float32 `json:"peak_energy"`
	Origin     string  `json:"origin"`
	Genome     string  `json:"genome"`
}

// Fitness component weights. Reproduction dominates; lifespan breaks ties
// between lineages that never bred.
const (
	fitnessChildWeight    = 500.0
	fitnessLifespanWeight = 1.0

	// Entry criteria: reproduced at least once, or survived this long.
	entryMinChildren = 1
	entryMinLifespan = 2000
)

// HallOfFame keeps the genomes of the most successful dead creatures,
// sorted by descending fitness. Saved halls can reseed a later run.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a hall with the given capacity.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Consider evaluates a dead creature for hall entry. Returns true if the
// creature was admitted.
func (hof *HallOfFame) Consider(rec LifetimeRecord) bool {
	if rec.Children < entryMinChildren && rec.Lifespan < entryMinLifespan {
		return false
	}

	entry := HallEntry{
		CreatureID: rec.CreatureID,
		Fitness:    float32(rec.Children)*fitnessChildWeight + float32(rec.Lifespan)*fitnessLifespanWeight,
		Lifespan:   rec.Lifespan,
		Children:   rec.Children,
		PeakEnergy: rec.PeakEnergy,
		Origin:     rec.Origin,
		Genome:     rec.Genes,
	}

	// Insertion point in descending fitness order.
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < entry.Fitness
	})
	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry
	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Len returns the number of entries.
func (hof *HallOfFame) Len() int {
	return len(hof.entries)
}

// Entries returns the entries in descending fitness order. The slice is
// shared; callers must not modify it.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// SampleGenome picks an entry by tournament selection (k=3) and parses its
// genome. Returns false when the hall is empty.
func (hof *HallOfFame) SampleGenome() (genome.Genome, bool) {
	if len(hof.entries) == 0 {
		return nil, false
	}

	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.Intn(len(hof.entries))
		if best == -1 || hof.entries[idx].Fitness > hof.entries[best].Fitness {
			best = idx
		}
	}

	g := genome.Parse(hof.entries[best].Genome)
	if len(g) == 0 {
		return nil, false
	}
	return g, true
}

// hallFile is the on-disk JSON form.
type hallFile struct {
	Entries []HallEntry `json:"entries"`
}

// SaveToFile writes the hall as JSON.
func (hof *HallOfFame) SaveToFile(path string) error {
	data, err := json.MarshalIndent(hallFile{Entries: hof.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write hall of fame: %w", err)
	}
	return nil
}

// LoadHallOfFame reads a saved hall. Entries beyond maxSize are dropped
// from the low-fitness end.
func LoadHallOfFame(path string, maxSize int, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hall of fame: %w", err)
	}
	var file hallFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal hall of fame: %w", err)
	}

	hof := NewHallOfFame(maxSize, rng)
	sort.SliceStable(file.Entries, func(i, j int) bool {
		return file.Entries[i].Fitness > file.Entries[j].Fitness
	})
	if len(file.Entries) > maxSize {
		file.Entries = file.Entries[:maxSize]
	}
	hof.entries = append(hof.entries, file.Entries...)
	return hof, nil
}
