// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/brine/genome"
)

// Creature holds identity and lifecycle state. IDs are world-scoped and
// monotonic; they never recycle within a run.
type Creature struct {
	ID    uint32
	Age   int32 // ticks since birth
	Alive bool
}

// Energy is the creature's single energy store. All income (solar, feeding,
// draining) and all costs (maintenance, actuation, reproduction) flow
// through Value; the creature dies when it reaches zero.
type Energy struct {
	Value float32
}

// Node is one mass point of a creature body. Gene scalars are flattened in
// at build time so physics and interaction never chase the genome.
type Node struct {
	X, Y       float32
	VX, VY     float32
	FX, FY     float32 // force accumulator, cleared each integration
	Type       genome.NodeType
	Size       float32 // radius
	Efficiency float32
}

// Mass derives from size; area scaling keeps big nodes heavy.
func (n *Node) Mass() float32 {
	m := n.Size * n.Size
	if m < 1e-6 {
		return 1e-6
	}
	return m
}

// Link is a spring between two nodes of the same body, addressed by index
// into the body's node arena. Amp > 0 makes the link actuate: its target
// length oscillates around Rest.
type Link struct {
	A, B      int
	Rest      float32
	Stiffness float32
	Amp       float32 // fraction of rest length
	Freq      float32
	Phase     float32
}

// Actuates reports whether the link drives itself.
func (l *Link) Actuates() bool {
	return l.Amp > 0 && l.Freq > 0
}

// Body holds a creature's node and link arenas. Links reference nodes by
// index, so bodies copy and serialize without pointer fixups.
type Body struct {
	Nodes []Node
	Links []Link
}

// Mass sums node masses.
func (b *Body) Mass() float32 {
	var total float32
	for i := range b.Nodes {
		total += b.Nodes[i].Mass()
	}
	return total
}

// Centroid returns the unweighted mean node position.
func (b *Body) Centroid() (float32, float32) {
	if len(b.Nodes) == 0 {
		return 0, 0
	}
	var cx, cy float32
	for i := range b.Nodes {
		cx += b.Nodes[i].X
		cy += b.Nodes[i].Y
	}
	inv := 1 / float32(len(b.Nodes))
	return cx * inv, cy * inv
}

// Genotype carries the creature's genome for reproduction and lineage.
type Genotype struct {
	Genes genome.Genome
}
