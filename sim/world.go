// Package sim owns the world: creature entities, the food pool, the tick
// pipeline, and the lifecycle rules that connect them.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/brine/components"
	"github.com/pthm-cable/brine/config"
	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/systems"
)

// Origin labels how a creature came to exist.
type Origin uint8

const (
	// OriginSeed covers initial seeding and population-floor respawns.
	OriginSeed Origin = iota
	// OriginMating is sexual reproduction from two parents.
	OriginMating
	// OriginDivision is asexual splitting from one parent.
	OriginDivision
)

func (o Origin) String() string {
	switch o {
	case OriginMating:
		return "mating"
	case OriginDivision:
		return "division"
	default:
		return "seed"
	}
}

// Recorder receives lifecycle events, for lineage archives. Implementations
// must not call back into the world.
type Recorder interface {
	RecordBirth(id, parentA, parentB uint32, origin Origin, tick int32, genes genome.Genome)
	RecordDeath(id uint32, tick int32)
}

// PhaseTimer marks tick-phase transitions, for perf tracking.
type PhaseTimer interface {
	StartPhase(name string)
}

// Tick phase names reported to the PhaseTimer.
const (
	PhaseFoodSpawn   = "food_spawn"
	PhaseSolar       = "solar"
	PhasePhysics     = "physics"
	PhaseCollision   = "collision"
	PhaseInteraction = "interaction"
	PhaseMating      = "mating"
	PhaseUpkeep      = "upkeep"
	PhaseDivision    = "division"
	PhaseDeath       = "death"
)

// Options configures world creation.
type Options struct {
	Seed     int64
	Recorder Recorder   // optional
	Perf     PhaseTimer // optional
}

// World is the complete simulation state. It is single-threaded: Step and
// every accessor must run from one goroutine. All randomness flows through
// the world's own generator, so equal configs and seeds replay identically.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	world  *ecs.World
	mapper *ecs.Map4[components.Creature, components.Energy, components.Body, components.Genotype]
	filter *ecs.Filter4[components.Creature, components.Energy, components.Body, components.Genotype]

	creatures *ecs.Map1[components.Creature]
	energies  *ecs.Map1[components.Energy]
	bodies    *ecs.Map1[components.Body]
	genotypes *ecs.Map1[components.Genotype]

	byID map[uint32]ecs.Entity

	food  *systems.FoodPool
	index *systems.CircleIndex
	pairs []systems.Pair

	consumed map[int]struct{}
	matings  []matingPair
	queued   map[uint32]struct{}

	physics    systems.PhysicsParams
	bodyParams systems.BodyParams
	genParams  genome.GenParams

	tick   int32
	nextID uint32
	ledger Ledger

	recorder Recorder
	perf     PhaseTimer
}

type matingPair struct {
	a, b ecs.Entity
}

// New validates the configuration, builds the world, and seeds the initial
// population.
func New(cfg *config.Config, opts Options) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	world := ecs.NewWorld()
	w := &World{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		world: world,
		mapper: ecs.NewMap4[
			components.Creature,
			components.Energy,
			components.Body,
			components.Genotype,
		](world),
		filter: ecs.NewFilter4[
			components.Creature,
			components.Energy,
			components.Body,
			components.Genotype,
		](world),
		creatures: ecs.NewMap1[components.Creature](world),
		energies:  ecs.NewMap1[components.Energy](world),
		bodies:    ecs.NewMap1[components.Body](world),
		genotypes: ecs.NewMap1[components.Genotype](world),
		byID:      make(map[uint32]ecs.Entity),
		food:      systems.NewFoodPool(),
		consumed:  make(map[int]struct{}),
		queued:    make(map[uint32]struct{}),
		nextID:    1,
		recorder:  opts.Recorder,
		perf:      opts.Perf,
	}

	w.physics = systems.PhysicsParams{
		DT:           cfg.Derived.DT32,
		Viscosity:    float32(cfg.World.Viscosity),
		WorldW:       cfg.Derived.WorldW32,
		WorldH:       cfg.Derived.WorldH32,
		BoundaryPush: float32(cfg.World.BoundaryPush),
		ReferenceMax: float32(cfg.Energy.ReferenceMax),
	}
	w.bodyParams = systems.BodyParams{
		SpringStiffness: float32(cfg.Body.SpringStiffness),
		PlacementMargin: float32(cfg.Body.PlacementMargin),
		ActuationChance: float32(cfg.Body.ActuationChance),
		AmpMax:          float32(cfg.Body.AmpMax),
		FreqMax:         float32(cfg.Body.FreqMax),
	}
	w.genParams = genome.GenParams{
		MinGenes:        cfg.Genome.MinGenes,
		MaxGenes:        cfg.Genome.MaxGenes,
		SizeMin:         float32(cfg.Genome.SizeMin),
		SizeMax:         float32(cfg.Genome.SizeMax),
		EffMin:          float32(cfg.Genome.EfficiencyMin),
		EffMax:          float32(cfg.Genome.EfficiencyMax),
		ExtraLinkChance: float32(cfg.Genome.ExtraLinkChance),
	}
	w.index = systems.NewCircleIndex(w.physics.WorldW, w.physics.WorldH, float32(cfg.Collision.GridCellSize), cfg.Collision.MaxNeighbors)

	for i := 0; i < cfg.Population.Initial; i++ {
		g := genome.Generate(w.genParams, w.rng)
		x := w.rng.Float32() * w.physics.WorldW
		y := w.rng.Float32() * w.physics.WorldH
		if _, err := w.spawn(g, x, y, float32(cfg.Population.SeedEnergy), OriginSeed, 0, 0); err != nil {
			return nil, fmt.Errorf("seeding population: %w", err)
		}
	}

	return w, nil
}

// spawn builds a body from the genome and registers the creature. The world
// takes ownership of the genome.
func (w *World) spawn(g genome.Genome, x, y, energy float32, origin Origin, parentA, parentB uint32) (uint32, error) {
	x = clamp32(x, 0, w.physics.WorldW)
	y = clamp32(y, 0, w.physics.WorldH)

	body, err := systems.BuildBody(g, x, y, w.bodyParams, w.rng)
	if err != nil {
		return 0, err
	}

	id := w.nextID
	w.nextID++

	creature := components.Creature{ID: id, Alive: true}
	en := components.Energy{Value: energy}
	genotype := components.Genotype{Genes: g}
	entity := w.mapper.NewEntity(&creature, &en, &body, &genotype)
	w.byID[id] = entity

	w.ledger.Births++
	switch origin {
	case OriginMating:
		w.ledger.BirthsMating++
	case OriginDivision:
		w.ledger.BirthsDivision++
	}
	if w.recorder != nil {
		w.recorder.RecordBirth(id, parentA, parentB, origin, w.tick, g)
	}
	return id, nil
}

// SpawnCreature adds a creature with the given genome and energy. It fails
// only on an empty genome.
func (w *World) SpawnCreature(g genome.Genome, x, y, energy float32) (uint32, error) {
	return w.spawn(g, x, y, energy, OriginSeed, 0, 0)
}

// InjectCreature inserts a fully formed creature, bypassing body
// construction. The world takes ownership of the body and genome. Intended
// for scripted scenarios and tests; Step treats injected creatures exactly
// like built ones.
func (w *World) InjectCreature(body components.Body, genes genome.Genome, energy float32) uint32 {
	id := w.nextID
	w.nextID++

	creature := components.Creature{ID: id, Alive: true}
	en := components.Energy{Value: energy}
	genotype := components.Genotype{Genes: genes}
	entity := w.mapper.NewEntity(&creature, &en, &body, &genotype)
	w.byID[id] = entity

	w.ledger.Births++
	if w.recorder != nil {
		w.recorder.RecordBirth(id, 0, 0, OriginSeed, w.tick, genes)
	}
	return id
}

// AddFood places a food particle and returns its ID.
func (w *World) AddFood(x, y, energy float32) uint32 {
	return w.food.Spawn(
		clamp32(x, 0, w.physics.WorldW),
		clamp32(y, 0, w.physics.WorldH),
		energy,
		float32(w.cfg.Food.Radius),
	)
}

// Tick returns the number of completed steps.
func (w *World) Tick() int32 {
	return w.tick
}

// CreatureCount returns the number of living creatures.
func (w *World) CreatureCount() int {
	count := 0
	query := w.filter.Query()
	for query.Next() {
		creature, _, _, _ := query.Get()
		if creature.Alive {
			count++
		}
	}
	return count
}

// FoodCount returns the number of live food particles.
func (w *World) FoodCount() int {
	return w.food.Len()
}

// CreatureEnergy reports a living creature's energy by ID.
func (w *World) CreatureEnergy(id uint32) (float32, bool) {
	entity, ok := w.byID[id]
	if !ok || !w.world.Alive(entity) {
		return 0, false
	}
	return w.energies.Get(entity).Value, true
}

// Ledger returns a copy of the energy and event counters accumulated since
// the last ResetLedger.
func (w *World) Ledger() Ledger {
	return w.ledger
}

// ResetLedger zeroes the window counters.
func (w *World) ResetLedger() {
	w.ledger = Ledger{}
}

func (w *World) startPhase(name string) {
	if w.perf != nil {
		w.perf.StartPhase(name)
	}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
