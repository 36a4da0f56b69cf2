package sim

import (
	"github.com/pthm-cable/brine/genome"
)

// NodeState is one body node in a snapshot.
type NodeState struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	VX         float32 `json:"vx"`
	VY         float32 `json:"vy"`
	Type       string  `json:"type"`
	Size       float32 `json:"size"`
	Efficiency float32 `json:"efficiency"`
}

// LinkState is one spring in a snapshot.
type LinkState struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Rest  float32 `json:"rest"`
	Amp   float32 `json:"amp"`
	Freq  float32 `json:"freq"`
	Phase float32 `json:"phase"`
}

// CreatureState is one living creature in a snapshot.
type CreatureState struct {
	ID     uint32      `json:"id"`
	Age    int32       `json:"age"`
	Energy float32     `json:"energy"`
	Genome string      `json:"genome"`
	Nodes  []NodeState `json:"nodes"`
	Links  []LinkState `json:"links"`
}

// FoodState is one food particle in a snapshot.
type FoodState struct {
	ID     uint32  `json:"id"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Energy float32 `json:"energy"`
	Radius float32 `json:"radius"`
}

// Snapshot is a complete observable copy of the world at one tick. Two runs
// with the same config and seed produce identical snapshots at every tick.
type Snapshot struct {
	Tick      int32           `json:"tick"`
	Creatures []CreatureState `json:"creatures"`
	Food      []FoodState     `json:"food"`
}

// Snapshot captures the current world state. Creatures appear in entity
// storage order and food in pool order.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Tick: w.tick}

	query := w.filter.Query()
	for query.Next() {
		creature, energy, body, genotype := query.Get()
		if !creature.Alive {
			continue
		}
		state := CreatureState{
			ID:     creature.ID,
			Age:    creature.Age,
			Energy: energy.Value,
			Genome: genome.Serialize(genotype.Genes),
			Nodes:  make([]NodeState, len(body.Nodes)),
			Links:  make([]LinkState, len(body.Links)),
		}
		for i := range body.Nodes {
			node := &body.Nodes[i]
			state.Nodes[i] = NodeState{
				X:          node.X,
				Y:          node.Y,
				VX:         node.VX,
				VY:         node.VY,
				Type:       node.Type.String(),
				Size:       node.Size,
				Efficiency: node.Efficiency,
			}
		}
		for i := range body.Links {
			link := &body.Links[i]
			state.Links[i] = LinkState{
				A:     link.A,
				B:     link.B,
				Rest:  link.Rest,
				Amp:   link.Amp,
				Freq:  link.Freq,
				Phase: link.Phase,
			}
		}
		snap.Creatures = append(snap.Creatures, state)
	}

	for i := 0; i < w.food.Len(); i++ {
		f := w.food.At(i)
		snap.Food = append(snap.Food, FoodState{
			ID:     f.ID,
			X:      f.X,
			Y:      f.Y,
			Energy: f.Energy,
			Radius: f.Radius,
		})
	}

	return snap
}
