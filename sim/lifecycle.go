package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/brine/components"
	"github.com/pthm-cable/brine/genome"
)

// carcassMassYield converts a dead creature's mass into food energy.
const carcassMassYield = 0.1

// carcassMassPerFood sets how much body mass backs one carcass particle.
const carcassMassPerFood = 50.0

// birth is a spawn deferred until no query is open.
type birth struct {
	genes    genome.Genome
	x, y     float32
	energy   float32
	origin   Origin
	parentA  uint32
	parentB  uint32
}

// reproduceMatings turns this tick's queued pairings into offspring. Energy
// may have moved since the queue was built, so the threshold is checked
// again; both parents pay half the mating cost and the child starts at the
// threshold.
func (w *World) reproduceMatings() {
	if len(w.matings) == 0 {
		return
	}
	threshold := float32(w.cfg.Reproduction.MatingThreshold)
	cost := float32(w.cfg.Reproduction.MatingCost)
	jitter := float32(w.cfg.Reproduction.SpawnJitter)

	var births []birth
	for _, pair := range w.matings {
		energyA := w.energies.Get(pair.a)
		energyB := w.energies.Get(pair.b)
		if energyA.Value < threshold || energyB.Value < threshold {
			continue
		}
		energyA.Value -= cost / 2
		energyB.Value -= cost / 2
		w.ledger.MatingCostPaid += float64(cost)
		w.ledger.MatingMinted += float64(threshold)

		genesA := w.genotypes.Get(pair.a).Genes
		genesB := w.genotypes.Get(pair.b).Genes
		child := genome.Mutate(genome.Crossover(genesA, genesB, w.rng), w.mutationRate(), w.mutationStrength(), w.rng)
		if len(child) == 0 {
			if w.rng.Intn(2) == 0 {
				child = genesA.Clone()
			} else {
				child = genesB.Clone()
			}
		}

		ax, ay := w.bodies.Get(pair.a).Centroid()
		bx, by := w.bodies.Get(pair.b).Centroid()
		x := (ax+bx)/2 + (w.rng.Float32()*2-1)*jitter
		y := (ay+by)/2 + (w.rng.Float32()*2-1)*jitter

		births = append(births, birth{
			genes:   child,
			x:       x,
			y:       y,
			energy:  threshold,
			origin:  OriginMating,
			parentA: w.creatures.Get(pair.a).ID,
			parentB: w.creatures.Get(pair.b).ID,
		})
	}
	w.applyBirths(births)
}

// ageAndMaintain advances age and charges the flat upkeep cost.
func (w *World) ageAndMaintain() {
	maintenance := float32(w.cfg.Energy.MaintenanceCost)
	query := w.filter.Query()
	for query.Next() {
		creature, energy, _, _ := query.Get()
		if !creature.Alive {
			continue
		}
		creature.Age++
		energy.Value -= maintenance
		w.ledger.MaintenanceOut += float64(maintenance)
	}
}

// divideCreatures splits every creature at or above the division threshold.
// Parent and child each keep 40% of the parent's energy; the rest is the
// price of splitting.
func (w *World) divideCreatures() {
	threshold := float32(w.cfg.Reproduction.DivisionThreshold)
	jitter := float32(w.cfg.Reproduction.SpawnJitter)

	var births []birth
	query := w.filter.Query()
	for query.Next() {
		creature, energy, body, genotype := query.Get()
		if !creature.Alive || energy.Value < threshold {
			continue
		}
		total := energy.Value

		child := genome.Mutate(genotype.Genes, w.mutationRate(), w.mutationStrength(), w.rng)
		if len(child) == 0 {
			child = genotype.Genes.Clone()
		}

		cx, cy := body.Centroid()
		angle := w.rng.Float64() * 2 * math.Pi
		dist := bodyRadius(body, cx, cy) + jitter
		x := cx + float32(math.Cos(angle))*dist
		y := cy + float32(math.Sin(angle))*dist

		births = append(births, birth{
			genes:   child,
			x:       x,
			y:       y,
			energy:  total * 0.4,
			origin:  OriginDivision,
			parentA: creature.ID,
		})
		energy.Value = total * 0.4
		w.ledger.DivisionLost += float64(total * 0.2)
	}
	w.applyBirths(births)
}

// reapDead converts creatures with no energy left into carcass food and
// removes them. Food particles are spread round-robin over the body's node
// positions; a carcass whose debt exceeds its mass yield leaves nothing.
func (w *World) reapDead() {
	type grave struct {
		entity ecs.Entity
		id     uint32
	}
	var dead []grave

	foodRadius := float32(w.cfg.Food.Radius)
	query := w.filter.Query()
	for query.Next() {
		creature, energy, body, _ := query.Get()
		if !creature.Alive || energy.Value > 0 {
			continue
		}
		creature.Alive = false

		mass := body.Mass()
		payload := energy.Value + carcassMassYield*mass
		if payload > 0 && len(body.Nodes) > 0 {
			count := int(mass / carcassMassPerFood)
			if count < 1 {
				count = 1
			}
			share := payload / float32(count)
			for i := 0; i < count; i++ {
				node := &body.Nodes[i%len(body.Nodes)]
				w.food.Spawn(node.X, node.Y, share, foodRadius)
			}
			w.ledger.DeathToFood += float64(payload)
		}

		w.ledger.Deaths++
		dead = append(dead, grave{entity: query.Entity(), id: creature.ID})
	}

	for _, d := range dead {
		if w.recorder != nil {
			w.recorder.RecordDeath(d.id, w.tick)
		}
		delete(w.byID, d.id)
		w.mapper.Remove(d.entity)
	}
}

// maintainFloor tops the population back up to the configured minimum with
// fresh random genomes, so a crashed ecosystem can restart.
func (w *World) maintainFloor() {
	floor := w.cfg.Population.MinFloor
	if floor <= 0 {
		return
	}
	alive := w.CreatureCount()
	for alive < floor {
		g := genome.Generate(w.genParams, w.rng)
		x := w.rng.Float32() * w.physics.WorldW
		y := w.rng.Float32() * w.physics.WorldH
		if _, err := w.spawn(g, x, y, float32(w.cfg.Population.SeedEnergy), OriginSeed, 0, 0); err != nil {
			return
		}
		alive++
	}
}

func (w *World) applyBirths(births []birth) {
	for i := range births {
		b := &births[i]
		w.spawn(b.genes, b.x, b.y, b.energy, b.origin, b.parentA, b.parentB)
	}
}

func (w *World) mutationRate() float32 {
	return float32(w.cfg.Genome.MutationRate)
}

func (w *World) mutationStrength() float32 {
	return float32(w.cfg.Genome.MutationStrength)
}

// bodyRadius is the reach of the farthest node edge from the centroid.
func bodyRadius(body *components.Body, cx, cy float32) float32 {
	var radius float32
	for i := range body.Nodes {
		node := &body.Nodes[i]
		dx := node.X - cx
		dy := node.Y - cy
		reach := float32(math.Sqrt(float64(dx*dx+dy*dy))) + node.Size
		if reach > radius {
			radius = reach
		}
	}
	return radius
}
