package sim

import (
	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/systems"
)

// Step advances the world by one tick. Phases run in a fixed order; within a
// phase, creatures are visited in entity storage order and food in pool
// order, so a run is fully determined by config and seed.
func (w *World) Step() {
	w.tick++

	w.startPhase(PhaseFoodSpawn)
	w.spawnFood()

	w.startPhase(PhaseSolar)
	w.solarIncome()

	w.startPhase(PhasePhysics)
	w.stepPhysics()

	w.startPhase(PhaseCollision)
	w.rebuildIndex()

	w.startPhase(PhaseInteraction)
	w.resolveInteractions()

	w.startPhase(PhaseMating)
	w.reproduceMatings()

	w.startPhase(PhaseUpkeep)
	w.ageAndMaintain()

	w.startPhase(PhaseDivision)
	w.divideCreatures()

	w.startPhase(PhaseDeath)
	w.reapDead()
	w.maintainFloor()
}

// spawnFood rolls the ambient food chance, subject to the particle cap.
func (w *World) spawnFood() {
	if w.food.Len() >= w.cfg.Food.MaxCount {
		return
	}
	if w.rng.Float32() >= float32(w.cfg.Food.SpawnChance) {
		return
	}
	energy := float32(w.cfg.Food.Energy)
	x := w.rng.Float32() * w.physics.WorldW
	y := w.rng.Float32() * w.physics.WorldH
	w.food.Spawn(x, y, energy, float32(w.cfg.Food.Radius))
	w.ledger.FoodSpawned += float64(energy)
}

// solarIncome splits the per-tick insolation pool across all solar nodes in
// proportion to their area, so solar yield is zero-sum across the population.
func (w *World) solarIncome() {
	pool := float32(w.cfg.Energy.InsolationPool)
	if pool <= 0 {
		return
	}

	var totalArea float32
	query := w.filter.Query()
	for query.Next() {
		creature, _, body, _ := query.Get()
		if !creature.Alive {
			continue
		}
		for i := range body.Nodes {
			node := &body.Nodes[i]
			if node.Type == genome.Solar {
				totalArea += node.Size * node.Size
			}
		}
	}
	if totalArea <= 0 {
		return
	}

	perArea := pool / totalArea
	query = w.filter.Query()
	for query.Next() {
		creature, energy, body, _ := query.Get()
		if !creature.Alive {
			continue
		}
		var gain float32
		for i := range body.Nodes {
			node := &body.Nodes[i]
			if node.Type == genome.Solar {
				gain += node.Size * node.Size * perArea
			}
		}
		if gain > 0 {
			energy.Value += gain
			w.ledger.SolarIn += float64(gain)
		}
	}
}

// stepPhysics advances every body and charges actuation costs.
func (w *World) stepPhysics() {
	query := w.filter.Query()
	for query.Next() {
		creature, energy, body, _ := query.Get()
		if !creature.Alive {
			continue
		}
		cost := systems.StepBody(body, energy.Value, w.tick, w.physics)
		if cost > 0 {
			energy.Value -= cost
			w.ledger.ActuationOut += float64(cost)
		}
	}
}

// rebuildIndex repopulates the broad-phase index with every living node and
// food particle, then collects this tick's overlap pairs.
func (w *World) rebuildIndex() {
	w.index.Clear()

	query := w.filter.Query()
	for query.Next() {
		entity := query.Entity()
		creature, _, body, _ := query.Get()
		if !creature.Alive {
			continue
		}
		for i := range body.Nodes {
			node := &body.Nodes[i]
			w.index.Insert(systems.Ref{
				Kind:     systems.RefNode,
				Entity:   entity,
				Creature: creature.ID,
				Node:     i,
			}, node.X, node.Y, node.Size)
		}
	}

	for i := 0; i < w.food.Len(); i++ {
		f := w.food.At(i)
		w.index.Insert(systems.Ref{
			Kind:    systems.RefFood,
			Food:    f.ID,
			FoodIdx: i,
		}, f.X, f.Y, f.Radius)
	}

	w.pairs = w.index.Pairs(w.pairs[:0])
}
