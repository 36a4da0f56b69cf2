package genome

import "math/rand"

// GenParams bounds random genome generation.
type GenParams struct {
	MinGenes int
	MaxGenes int
	SizeMin  float32
	SizeMax  float32
	EffMin   float32
	EffMax   float32
	// ExtraLinkChance is the probability that a gene past the second gets a
	// second back-reference in addition to the backbone link.
	ExtraLinkChance float32
}

const (
	// MinNodeSize is the floor mutation clamps size to.
	MinNodeSize = 1.0

	sizeNoiseScale = 1.5
	effNoiseScale  = 0.25
	maxLinkReach   = 3
)

// Generate builds a random genome: a chain backbone (every gene after the
// first links to its predecessor) with occasional extra back-references
// within the last three positions.
func Generate(p GenParams, rng *rand.Rand) Genome {
	n := p.MinGenes
	if p.MaxGenes > p.MinGenes {
		n += rng.Intn(p.MaxGenes - p.MinGenes + 1)
	}
	g := make(Genome, 0, n)
	for i := 0; i < n; i++ {
		gene := Gene{
			Type:       NodeType(rng.Intn(numNodeTypes)),
			Size:       p.SizeMin + rng.Float32()*(p.SizeMax-p.SizeMin),
			Efficiency: p.EffMin + rng.Float32()*(p.EffMax-p.EffMin),
		}
		if i > 0 {
			gene.Links = append(gene.Links, -1)
		}
		if i > 1 && rng.Float32() < p.ExtraLinkChance {
			// -1 is already the backbone, so the extra reach is -2 or -3.
			gene.Links = append(gene.Links, -(2 + rng.Intn(2)))
		}
		g = append(g, gene)
	}
	return g
}

// Mutate returns a mutated deep copy of g; the input is never modified.
// Each gene facet (type, size, efficiency, link set) mutates independently
// with probability rate; structural changes (gene deletion, duplication) use
// scaled-down rates. The result may be empty: deletion can strip every gene,
// and body construction is where emptiness becomes an error.
func Mutate(g Genome, rate, strength float32, rng *rand.Rand) Genome {
	out := g.Clone()

	for i := range out {
		gene := &out[i]
		if rng.Float32() < rate {
			gene.Type = NodeType(rng.Intn(numNodeTypes))
		}
		if rng.Float32() < rate {
			gene.Size += float32(rng.NormFloat64()) * strength * sizeNoiseScale
			if gene.Size < MinNodeSize {
				gene.Size = MinNodeSize
			}
		}
		if rng.Float32() < rate {
			gene.Efficiency += float32(rng.NormFloat64()) * strength * effNoiseScale
			if gene.Efficiency < 0.1 {
				gene.Efficiency = 0.1
			} else if gene.Efficiency > 1 {
				gene.Efficiency = 1
			}
		}
		if rng.Float32() < rate {
			mutateLinks(gene, rng)
		}
	}

	// Deletion pass: each gene may drop out at a tenth of the base rate.
	kept := out[:0]
	for _, gene := range out {
		if rng.Float32() < rate*0.1 {
			continue
		}
		kept = append(kept, gene)
	}
	out = kept

	// Duplication pass: grow by appending copies of random existing genes.
	n := len(out)
	for i := 0; i < n; i++ {
		if rng.Float32() < rate*0.2 {
			out = append(out, out[rng.Intn(len(out))].Clone())
		}
	}
	return out
}

// mutateLinks applies exactly one structural link operation: remove a random
// link, add a random non-zero offset within reach, or nudge an existing
// offset by one step.
func mutateLinks(gene *Gene, rng *rand.Rand) {
	switch rng.Intn(3) {
	case 0: // remove
		if len(gene.Links) == 0 {
			return
		}
		i := rng.Intn(len(gene.Links))
		gene.Links = append(gene.Links[:i], gene.Links[i+1:]...)
	case 1: // add
		gene.Links = append(gene.Links, randOffset(rng))
	case 2: // nudge
		if len(gene.Links) == 0 {
			return
		}
		i := rng.Intn(len(gene.Links))
		off := gene.Links[i]
		if rng.Intn(2) == 0 {
			off++
		} else {
			off--
		}
		if off == 0 {
			// Offsets are never zero; re-roll to an adjacent step.
			if rng.Intn(2) == 0 {
				off = 1
			} else {
				off = -1
			}
		}
		gene.Links[i] = off
	}
}

// randOffset draws a non-zero offset in [-maxLinkReach, maxLinkReach].
func randOffset(rng *rand.Rand) int {
	off := rng.Intn(2*maxLinkReach) - maxLinkReach
	if off >= 0 {
		off++
	}
	return off
}

// Crossover splices a child from a prefix of a and a suffix of b, with cut
// points drawn independently. Gene copies are deep, so the child shares no
// link slices with its parents. An empty splice falls back to a full clone
// of one parent, chosen evenly, so crossover of non-empty parents never
// yields an empty child.
func Crossover(a, b Genome, rng *rand.Rand) Genome {
	cutA := rng.Intn(len(a) + 1)
	cutB := rng.Intn(len(b) + 1)

	child := make(Genome, 0, cutA+len(b)-cutB)
	for _, gene := range a[:cutA] {
		child = append(child, gene.Clone())
	}
	for _, gene := range b[cutB:] {
		child = append(child, gene.Clone())
	}
	if len(child) == 0 {
		if rng.Intn(2) == 0 {
			return a.Clone()
		}
		return b.Clone()
	}
	return child
}
