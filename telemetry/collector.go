// Package telemetry aggregates world state into windowed statistics and
// persists run artifacts: stats CSV, perf CSV, and JSON state snapshots.
package telemetry

import (
	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/sim"
)

// Collector folds world snapshots and ledger flows into per-window stats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32
}

// NewCollector creates a collector that closes a window every windowTicks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}

// Flush builds stats for the closing window from the world's snapshot and
// ledger, then starts the next window. The caller is expected to reset the
// world's ledger right after.
func (c *Collector) Flush(snap sim.Snapshot, ledger sim.Ledger) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,

		Creatures: len(snap.Creatures),
		FoodCount: len(snap.Food),

		Births:         ledger.Births,
		BirthsMating:   ledger.BirthsMating,
		BirthsDivision: ledger.BirthsDivision,
		Deaths:         ledger.Deaths,
		Feedings:       ledger.Feedings,
		Drains:         ledger.Drains,
		Matings:        ledger.Matings,

		SolarIn:        ledger.SolarIn,
		FoodSpawned:    ledger.FoodSpawned,
		FoodEaten:      ledger.FoodEaten,
		DigestionLoss:  ledger.DigestionLoss,
		DrainGained:    ledger.DrainGained,
		DrainLost:      ledger.DrainLost,
		MaintenanceOut: ledger.MaintenanceOut,
		ActuationOut:   ledger.ActuationOut,
		DivisionLost:   ledger.DivisionLost,
		MatingCostPaid: ledger.MatingCostPaid,
		MatingMinted:   ledger.MatingMinted,
		DeathToFood:    ledger.DeathToFood,
	}

	energies := make([]float64, 0, len(snap.Creatures))
	for i := range snap.Creatures {
		creature := &snap.Creatures[i]
		energy := float64(creature.Energy)
		energies = append(energies, energy)
		stats.TotalOrganisms += energy
		stats.TotalNodes += len(creature.Nodes)

		for j := range creature.Nodes {
			switch genome.ParseNodeType(creature.Nodes[j].Type) {
			case genome.Sucker:
				stats.SuckerNodes++
			case genome.Solar:
				stats.SolarNodes++
			case genome.Mating:
				stats.MatingNodes++
			default:
				stats.NeutralNodes++
			}
		}
	}
	if len(snap.Creatures) > 0 {
		stats.MeanNodes = float64(stats.TotalNodes) / float64(len(snap.Creatures))
	}
	stats.EnergyMean, stats.EnergyP10, stats.EnergyP50, stats.EnergyP90 = computeDistribution(energies)

	for i := range snap.Food {
		stats.TotalFood += float64(snap.Food[i].Energy)
	}

	c.windowStartTick = snap.Tick
	return stats
}
