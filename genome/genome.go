// Package genome defines the variable-length gene encoding for creature
// bodies and the evolutionary operators over it.
package genome

import "errors"

// ErrEmpty is returned when a body is constructed from a genome with no genes.
var ErrEmpty = errors.New("genome has no genes")

// NodeType determines how a body node interacts with the world.
type NodeType uint8

const (
	// Neutral nodes are structural only.
	Neutral NodeType = iota
	// Sucker nodes consume food on contact and drain other creatures.
	Sucker
	// Solar nodes receive a share of the insolation pool.
	Solar
	// Mating nodes trigger sexual reproduction on contact with each other.
	Mating

	numNodeTypes = 4
)

var nodeTypeNames = [numNodeTypes]string{"neutral", "sucker", "solar", "mating"}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "neutral"
}

// ParseNodeType maps a type name to its NodeType. Unknown names fall back
// to Neutral so a damaged record still yields a usable gene.
func ParseNodeType(s string) NodeType {
	for i, name := range nodeTypeNames {
		if s == name {
			return NodeType(i)
		}
	}
	return Neutral
}

// Gene describes one body node: its interaction type, physical size, working
// efficiency, and the links it forms to earlier genes. Links are signed
// non-zero offsets relative to the gene's own position; resolution wraps
// modulo genome length at build time.
type Gene struct {
	Type       NodeType
	Size       float32 // node radius; mass is Size squared
	Efficiency float32 // in (0, 1]
	Links      []int
}

// Clone returns a deep copy of the gene.
func (g Gene) Clone() Gene {
	out := g
	if g.Links != nil {
		out.Links = make([]int, len(g.Links))
		copy(out.Links, g.Links)
	}
	return out
}

// Genome is an ordered list of genes. Order matters: link offsets are
// relative, and crossover splices by position.
type Genome []Gene

// Clone returns a deep copy of the genome.
func (g Genome) Clone() Genome {
	if g == nil {
		return nil
	}
	out := make(Genome, len(g))
	for i, gene := range g {
		out[i] = gene.Clone()
	}
	return out
}
