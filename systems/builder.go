package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/brine/components"
	"github.com/pthm-cable/brine/genome"
)

// BodyParams bounds body construction.
type BodyParams struct {
	SpringStiffness float32
	PlacementMargin float32 // surface gap between a node and its anchor
	ActuationChance float32 // probability a link oscillates
	AmpMax          float32
	FreqMax         float32
}

const (
	// goldenAngle spreads sibling nodes around their anchor so default
	// bodies are never collinear.
	goldenAngle = 2.3999631

	minRestLength = 1e-3
)

// BuildBody expands a genome into a body: one node per gene, one spring per
// resolved link. Node 0 sits at (x, y); every later node is placed relative
// to the node its first link offset resolves to, falling back to its
// predecessor when the offset points forward to a node not yet placed.
// Offsets resolve modulo genome length; an offset that resolves to its own
// gene is dropped, and duplicate unordered pairs keep only the first link.
func BuildBody(g genome.Genome, x, y float32, p BodyParams, rng *rand.Rand) (components.Body, error) {
	if len(g) == 0 {
		return components.Body{}, genome.ErrEmpty
	}

	n := len(g)
	nodes := make([]components.Node, n)
	for i, gene := range g {
		nodes[i] = components.Node{
			Type:       gene.Type,
			Size:       gene.Size,
			Efficiency: gene.Efficiency,
		}
	}

	nodes[0].X, nodes[0].Y = x, y
	for i := 1; i < n; i++ {
		anchor := i - 1
		if len(g[i].Links) > 0 {
			if j := resolveOffset(i, g[i].Links[0], n); j < i {
				anchor = j
			}
		}
		angle := float64(float32(i) * goldenAngle)
		dist := nodes[i].Size + nodes[anchor].Size + p.PlacementMargin
		nodes[i].X = nodes[anchor].X + float32(math.Cos(angle))*dist
		nodes[i].Y = nodes[anchor].Y + float32(math.Sin(angle))*dist
	}

	type pairKey struct{ a, b int }
	seen := make(map[pairKey]struct{})
	var links []components.Link
	for i, gene := range g {
		for _, off := range gene.Links {
			j := resolveOffset(i, off, n)
			if j == i {
				continue
			}
			a, b := i, j
			if a > b {
				a, b = b, a
			}
			key := pairKey{a, b}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			rest := distance(nodes[a].X, nodes[a].Y, nodes[b].X, nodes[b].Y)
			if rest < minRestLength {
				rest = minRestLength
			}
			link := components.Link{A: a, B: b, Rest: rest, Stiffness: p.SpringStiffness}
			if rng.Float32() < p.ActuationChance {
				// (1 - Float32()) maps [0,1) onto (0,1], keeping the
				// amplitude and frequency strictly positive.
				link.Amp = (1 - rng.Float32()) * p.AmpMax
				link.Freq = (1 - rng.Float32()) * p.FreqMax
				link.Phase = rng.Float32() * 2 * math.Pi
			}
			links = append(links, link)
		}
	}

	return components.Body{Nodes: nodes, Links: links}, nil
}

// resolveOffset maps a relative link offset to an absolute gene index,
// wrapping modulo genome length in both directions.
func resolveOffset(i, off, n int) int {
	j := (i + off) % n
	if j < 0 {
		j += n
	}
	return j
}
