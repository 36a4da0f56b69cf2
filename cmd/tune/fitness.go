package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/brine/config"
	"github.com/pthm-cable/brine/sim"
	"github.com/pthm-cable/brine/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if the soup stays below this for
// extinctionGraceTicks consecutive ticks, it counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceTicks = 2000
	warmupTicks          = 500
	tuneHallSize         = 16
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32 // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel; each run builds its own world from a fresh
	// config copy, so nothing is shared beyond the parameter vector.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness:    -(float64(result.survivalTicks) * (1.0 + 0.2*quality)),
				quality:    quality,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	var bestSeedFitness = math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	hall := telemetry.NewHallOfFame(tuneHallSize, rand.New(rand.NewSource(seed)))
	tracker := telemetry.NewLifetimeTracker(nil, hall)

	world, err := sim.New(cfg, sim.Options{Seed: seed, Recorder: tracker})
	if err != nil {
		// A parameter set the config rejects scores as instant extinction.
		result.hallOfFame = hall
		return result
	}

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	var belowTicks int32

	for world.Tick() < fe.maxTicks {
		world.Step()
		tick := world.Tick()

		if collector.ShouldFlush(tick) {
			snap := world.Snapshot()
			result.windowStats = append(result.windowStats, collector.Flush(snap, world.Ledger()))
			world.ResetLedger()
			tracker.ObserveEnergies(snap)
		}

		// Let the population establish before checking viability.
		if tick < warmupTicks {
			continue
		}

		count := world.CreatureCount()
		if count == 0 {
			result.survivalTicks = tick
			result.hallOfFame = hall
			return result
		}
		if count < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= extinctionGraceTicks {
			result.survivalTicks = tick
			result.hallOfFame = hall
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	result.hallOfFame = hall
	return result
}

// copyConfig creates a fresh config carrying the base run's non-tuned fields.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg, _ := config.Load("")

	cfg.World = fe.baseConfig.World
	cfg.Derived = fe.baseConfig.Derived
	cfg.Energy = fe.baseConfig.Energy
	cfg.Food = fe.baseConfig.Food
	cfg.Genome = fe.baseConfig.Genome
	cfg.Body = fe.baseConfig.Body
	cfg.Reproduction = fe.baseConfig.Reproduction
	cfg.Collision = fe.baseConfig.Collision
	cfg.Population = fe.baseConfig.Population
	cfg.Telemetry = fe.baseConfig.Telemetry

	return cfg
}

// Quality component weights.
const (
	qualityWeightStability = 0.35
	qualityWeightEnergy    = 0.25
	qualityWeightFeeding   = 0.20
	qualityWeightTurnover  = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows with fewer creatures
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
// Stability rewards a steady head count, energy rewards a population whose
// median sits in a healthy band, feeding and turnover reward a soup where
// creatures actually eat and reproduce rather than coast on reserves.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var energySum, feedSum, turnoverSum float64
	var energyCount, feedCount, turnoverCount int
	counts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Creatures < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.Creatures))

		// Energy health: median sitting near half the division threshold
		// means creatures bank energy without stalling at the cap. The band
		// is wide on purpose; this only breaks ties between survivors.
		norm := w.EnergyP50 / 300.0
		energySum += math.Exp(-math.Pow((norm-0.5)/0.35, 2))
		energyCount++

		// Feeding activity per creature.
		perCreature := float64(w.Feedings) / float64(w.Creatures)
		feedSum += 1.0 - math.Exp(-perCreature/0.5)
		feedCount++

		// Turnover: both births and deaths in the window mean the population
		// is cycling, not frozen.
		if w.Births > 0 && w.Deaths > 0 {
			turnoverSum += 1.0
		}
		turnoverCount++
	}

	if len(counts) == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stabilityScore = math.Exp(-c * c)
	}
	energyScore := energySum / float64(energyCount)
	feedScore := feedSum / float64(feedCount)
	turnoverScore := turnoverSum / float64(turnoverCount)

	quality := qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energyScore +
		qualityWeightFeeding*feedScore +
		qualityWeightTurnover*turnoverScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
