package sim

import (
	"github.com/pthm-cable/brine/components"
	"github.com/pthm-cable/brine/genome"
	"github.com/pthm-cable/brine/systems"
)

// drainDissipation is the share of drained energy lost in transfer; the
// attacker keeps the rest.
const drainDissipation = 0.5

// resolveInteractions walks this tick's overlap pairs in detection order and
// applies feeding, draining, mating candidacy, and contact separation. Food
// consumption is first-come: later pairs referencing an already-eaten
// particle are skipped, and the pool is compacted once at the end.
func (w *World) resolveInteractions() {
	clear(w.consumed)
	clear(w.queued)
	w.matings = w.matings[:0]

	for i := range w.pairs {
		pair := &w.pairs[i]
		switch {
		case pair.A.Kind == systems.RefNode && pair.B.Kind == systems.RefNode:
			w.resolveContact(pair)
		case pair.A.Kind == systems.RefNode && pair.B.Kind == systems.RefFood:
			w.resolveFeeding(pair.A, pair.B)
		case pair.A.Kind == systems.RefFood && pair.B.Kind == systems.RefNode:
			w.resolveFeeding(pair.B, pair.A)
		}
	}

	w.food.Remove(w.consumed)
}

// resolveFeeding lets a sucker node consume a food particle. The particle
// disappears whole; the eater keeps the efficiency-weighted share.
func (w *World) resolveFeeding(nodeRef, foodRef systems.Ref) {
	if _, eaten := w.consumed[foodRef.FoodIdx]; eaten {
		return
	}
	body := w.bodies.Get(nodeRef.Entity)
	node := &body.Nodes[nodeRef.Node]
	if node.Type != genome.Sucker {
		return
	}

	f := w.food.At(foodRef.FoodIdx)
	gain := f.Energy * node.Efficiency
	w.energies.Get(nodeRef.Entity).Value += gain
	w.consumed[foodRef.FoodIdx] = struct{}{}

	w.ledger.FoodEaten += float64(gain)
	w.ledger.DigestionLoss += float64(f.Energy - gain)
	w.ledger.Feedings++
}

// resolveContact handles a touching node pair from two different creatures:
// suckers drain, mutual mating nodes queue a pairing, and both nodes receive
// a separating velocity impulse proportional to their overlap.
func (w *World) resolveContact(pair *systems.Pair) {
	a, b := pair.A, pair.B
	if a.Creature == b.Creature {
		return
	}

	bodyA := w.bodies.Get(a.Entity)
	bodyB := w.bodies.Get(b.Entity)
	nodeA := &bodyA.Nodes[a.Node]
	nodeB := &bodyB.Nodes[b.Node]
	energyA := w.energies.Get(a.Entity)
	energyB := w.energies.Get(b.Entity)

	if nodeA.Type == genome.Sucker {
		w.drain(nodeA, energyA, energyB)
	}
	if nodeB.Type == genome.Sucker {
		w.drain(nodeB, energyB, energyA)
	}

	if nodeA.Type == genome.Mating && nodeB.Type == genome.Mating {
		w.queueMating(pair)
	}

	push := float32(w.cfg.Collision.PushForce) * pair.Overlap
	nodeA.VX -= pair.NX * push
	nodeA.VY -= pair.NY * push
	nodeB.VX += pair.NX * push
	nodeB.VY += pair.NY * push
}

// drain moves energy from victim to attacker through a sucker node. The
// amount is capped by what the victim still has, and half dissipates.
func (w *World) drain(sucker *components.Node, attacker, victim *components.Energy) {
	amount := sucker.Efficiency * 0.5
	if amount > victim.Value {
		amount = victim.Value
	}
	if amount <= 0 {
		return
	}
	victim.Value -= amount
	kept := amount * (1 - drainDissipation)
	attacker.Value += kept

	w.ledger.DrainGained += float64(kept)
	w.ledger.DrainLost += float64(amount - kept)
	w.ledger.Drains++
}

// queueMating records a mating candidate pair when both creatures clear the
// energy threshold. A creature joins at most one pairing per tick.
func (w *World) queueMating(pair *systems.Pair) {
	threshold := float32(w.cfg.Reproduction.MatingThreshold)
	if w.energies.Get(pair.A.Entity).Value < threshold {
		return
	}
	if w.energies.Get(pair.B.Entity).Value < threshold {
		return
	}
	if _, busy := w.queued[pair.A.Creature]; busy {
		return
	}
	if _, busy := w.queued[pair.B.Creature]; busy {
		return
	}
	w.queued[pair.A.Creature] = struct{}{}
	w.queued[pair.B.Creature] = struct{}{}
	w.matings = append(w.matings, matingPair{a: pair.A.Entity, b: pair.B.Entity})
	w.ledger.Matings++
}
