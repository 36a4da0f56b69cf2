package sim

import (
	"errors"
	"testing"

	"github.com/pthm-cable/brine/components"
	"github.com/pthm-cable/brine/config"
	"github.com/pthm-cable/brine/genome"
)

// ---------- helpers ----------

// quietConfig returns defaults with every spontaneous energy flow switched
// off, so tests control exactly what happens each tick.
func quietConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Population.Initial = 0
	cfg.Population.MinFloor = 0
	cfg.Food.SpawnChance = 0
	cfg.Energy.InsolationPool = 0
	cfg.Energy.MaintenanceCost = 0
	cfg.Body.ActuationChance = 0
	cfg.Genome.MutationRate = 0
	return cfg
}

func newQuietWorld(t *testing.T, cfg *config.Config) *World {
	t.Helper()
	w, err := New(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("creating world: %v", err)
	}
	return w
}

// mustParse parses a genome literal or fails the test.
func mustParse(t *testing.T, s string) genome.Genome {
	t.Helper()
	g := genome.Parse(s)
	if len(g) == 0 {
		t.Fatalf("genome literal %q parsed to zero genes", s)
	}
	return g
}

// mustSpawn adds a creature or fails the test.
func mustSpawn(t *testing.T, w *World, s string, x, y, energy float32) uint32 {
	t.Helper()
	id, err := w.SpawnCreature(mustParse(t, s), x, y, energy)
	if err != nil {
		t.Fatalf("spawning creature: %v", err)
	}
	return id
}

// ---------- construction ----------

func TestNew_SeedsInitialPopulation(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Population.Initial = 12

	w, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatalf("creating world: %v", err)
	}
	if got := w.CreatureCount(); got != 12 {
		t.Errorf("creature count = %d, want 12", got)
	}

	snap := w.Snapshot()
	seed := float32(cfg.Population.SeedEnergy)
	for _, c := range snap.Creatures {
		if c.Energy != seed {
			t.Errorf("creature %d energy = %f, want seed energy %f", c.ID, c.Energy, seed)
		}
		if len(c.Nodes) == 0 {
			t.Errorf("creature %d has no nodes", c.ID)
		}
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := quietConfig(t)
	cfg.World.DT = 0
	if _, err := New(cfg, Options{Seed: 1}); err == nil {
		t.Fatal("expected error for zero time step")
	}
}

// ---------- spawning ----------

func TestSpawnCreature_RejectsEmptyGenome(t *testing.T) {
	w := newQuietWorld(t, quietConfig(t))
	if _, err := w.SpawnCreature(genome.Genome{}, 100, 100, 50); !errors.Is(err, genome.ErrEmpty) {
		t.Fatalf("error = %v, want genome.ErrEmpty", err)
	}
}

func TestSpawnCreature_AssignsDistinctIDs(t *testing.T) {
	w := newQuietWorld(t, quietConfig(t))
	first := mustSpawn(t, w, "(neutral,4,0.5)", 100, 100, 30)
	second := mustSpawn(t, w, "(neutral,4,0.5)", 200, 100, 60)

	if first == second {
		t.Fatalf("both creatures got ID %d", first)
	}
	if e, ok := w.CreatureEnergy(first); !ok || e != 30 {
		t.Errorf("first creature energy = %f, %v; want 30, true", e, ok)
	}
	if e, ok := w.CreatureEnergy(second); !ok || e != 60 {
		t.Errorf("second creature energy = %f, %v; want 60, true", e, ok)
	}
	if _, ok := w.CreatureEnergy(9999); ok {
		t.Error("lookup of unknown ID should report absence")
	}
}

func TestSpawnCreature_ClampsPositionIntoWorld(t *testing.T) {
	w := newQuietWorld(t, quietConfig(t))
	mustSpawn(t, w, "(neutral,4,0.5)", -50, 1e6, 30)

	snap := w.Snapshot()
	if len(snap.Creatures) != 1 {
		t.Fatalf("creature count = %d, want 1", len(snap.Creatures))
	}
	root := snap.Creatures[0].Nodes[0]
	if root.X != 0 {
		t.Errorf("root X = %f, want clamped to 0", root.X)
	}
	if root.Y != float32(w.cfg.World.Height) {
		t.Errorf("root Y = %f, want clamped to %f", root.Y, float32(w.cfg.World.Height))
	}
}

func TestInjectCreature_BypassesBuilder(t *testing.T) {
	w := newQuietWorld(t, quietConfig(t))

	// A hand-made two-node body with a link no genome would produce: both
	// nodes share one gene and the spring is pre-stretched.
	body := components.Body{
		Nodes: []components.Node{
			{X: 100, Y: 100, Type: genome.Solar, Size: 6, Efficiency: 0.8},
			{X: 130, Y: 100, Type: genome.Solar, Size: 6, Efficiency: 0.8},
		},
		Links: []components.Link{{A: 0, B: 1, Rest: 20, Stiffness: 0.5}},
	}
	id := w.InjectCreature(body, mustParse(t, "(solar,6,0.8)"), 75)

	if e, ok := w.CreatureEnergy(id); !ok || e != 75 {
		t.Fatalf("injected creature energy = %f, %v; want 75, true", e, ok)
	}
	snap := w.Snapshot()
	if len(snap.Creatures) != 1 || len(snap.Creatures[0].Nodes) != 2 {
		t.Fatalf("snapshot = %+v, want one creature with two nodes", snap.Creatures)
	}

	// The stretched spring must contract under Step like any built body.
	w.Step()
	snap = w.Snapshot()
	nodes := snap.Creatures[0].Nodes
	if gap := nodes[1].X - nodes[0].X; gap >= 30 {
		t.Errorf("node gap = %f after a step, want the spring pulling below 30", gap)
	}
}

func TestAddFood_PlacesParticle(t *testing.T) {
	w := newQuietWorld(t, quietConfig(t))
	id := w.AddFood(300, 200, 25)

	if id == 0 {
		t.Error("food IDs start at 1")
	}
	if w.FoodCount() != 1 {
		t.Fatalf("food count = %d, want 1", w.FoodCount())
	}
	snap := w.Snapshot()
	f := snap.Food[0]
	if f.X != 300 || f.Y != 200 || f.Energy != 25 {
		t.Errorf("food = %+v, want position (300, 200) energy 25", f)
	}
	if f.Radius != float32(w.cfg.Food.Radius) {
		t.Errorf("food radius = %f, want configured %f", f.Radius, float32(w.cfg.Food.Radius))
	}
}

// ---------- ledger ----------

func TestLedger_AccumulatesAndResets(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Energy.MaintenanceCost = 0.25
	w := newQuietWorld(t, cfg)
	mustSpawn(t, w, "(neutral,4,0.5)", 100, 100, 50)

	for i := 0; i < 4; i++ {
		w.Step()
	}
	ledger := w.Ledger()
	if ledger.MaintenanceOut != 1.0 {
		t.Errorf("maintenance out = %f, want 1.0", ledger.MaintenanceOut)
	}
	if ledger.Births != 1 {
		t.Errorf("births = %d, want 1", ledger.Births)
	}

	w.ResetLedger()
	if w.Ledger() != (Ledger{}) {
		t.Errorf("ledger after reset = %+v, want zero", w.Ledger())
	}
}

// ---------- solar income ----------

// injectSolar inserts a single solar node of the given size, so income tests
// control area exactly without the builder's placement in the way.
func injectSolar(t *testing.T, w *World, x, y, size, energy float32) uint32 {
	t.Helper()
	body := components.Body{
		Nodes: []components.Node{
			{X: x, Y: y, Type: genome.Solar, Size: size, Efficiency: 0.8},
		},
	}
	return w.InjectCreature(body, mustParse(t, "(solar,6,0.8)"), energy)
}

func TestStep_SolarIncomeAccumulatesAboveMaintenance(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Energy.InsolationPool = 2.0
	cfg.Energy.MaintenanceCost = 0.1
	w := newQuietWorld(t, cfg)
	id := injectSolar(t, w, 300, 300, 10, 50)

	prev, _ := w.CreatureEnergy(id)
	for i := 0; i < 10; i++ {
		w.Step()
		e, ok := w.CreatureEnergy(id)
		if !ok {
			t.Fatalf("creature died at tick %d", w.Tick())
		}
		if e <= prev {
			t.Fatalf("tick %d: energy %f did not rise above %f", w.Tick(), e, prev)
		}
		prev = e
	}
	// Sole solar area gets the whole pool; net per tick is pool minus upkeep.
	want := 50 + 10*(2.0-0.1)
	if diff := float64(prev) - want; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("energy after 10 ticks = %f, want %g", prev, want)
	}
}

func TestStep_SolarPoolSplitsByArea(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Energy.InsolationPool = 3.0
	w := newQuietWorld(t, cfg)
	// Areas 100 and 25: the pool splits 4:1 and nothing is left over.
	big := injectSolar(t, w, 200, 200, 10, 50)
	small := injectSolar(t, w, 600, 400, 5, 50)

	w.Step()

	bigE, _ := w.CreatureEnergy(big)
	smallE, _ := w.CreatureEnergy(small)
	if diff := float64(bigE) - (50 + 2.4); diff > 1e-3 || diff < -1e-3 {
		t.Errorf("large creature energy = %f, want 52.4", bigE)
	}
	if diff := float64(smallE) - (50 + 0.6); diff > 1e-3 || diff < -1e-3 {
		t.Errorf("small creature energy = %f, want 50.6", smallE)
	}
	if diff := w.Ledger().SolarIn - 3.0; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("solar in = %f, want the full pool 3.0", w.Ledger().SolarIn)
	}
}
