package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// RefKind tells what a collision circle belongs to.
type RefKind uint8

const (
	// RefNode is a body node of a living creature.
	RefNode RefKind = iota
	// RefFood is a food particle.
	RefFood
)

// Ref identifies one collision circle without pointing into mutable storage.
// Node refs carry the creature's entity, its ID and the node index; food
// refs carry the particle's ID and its index in the food pool.
type Ref struct {
	Kind     RefKind
	Entity   ecs.Entity
	Creature uint32
	Node     int
	Food     uint32
	FoodIdx  int
}

// Pair is one overlapping circle pair found by the broad phase. NX, NY is
// the unit axis from A toward B; Overlap is the penetration depth along it.
// Coincident circles report the fixed axis (1, 0) at epsilon depth offset.
type Pair struct {
	A, B    Ref
	Overlap float32
	NX, NY  float32
}

// CircleIndex is a uniform-grid broad phase over circles. It is rebuilt
// every tick: Clear, Insert each circle, then Pairs. Cells clamp at the
// world edge; the medium reflects rather than wraps.
type CircleIndex struct {
	cellSize     float32
	cols         int
	rows         int
	width        float32
	height       float32
	cells        [][]int32 // per-cell indices into bodies
	bodies       []circleBody
	maxRadius    float32
	maxNeighbors int
}

type circleBody struct {
	ref     Ref
	x, y, r float32
}

// NewCircleIndex creates an index covering the given world size.
// maxNeighbors caps how many pairs one circle's scan may emit, bounding
// worst-case work in dense piles; 0 means unlimited.
func NewCircleIndex(width, height, cellSize float32, maxNeighbors int) *CircleIndex {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	return &CircleIndex{
		cellSize:     cellSize,
		cols:         cols,
		rows:         rows,
		width:        width,
		height:       height,
		cells:        cells,
		maxNeighbors: maxNeighbors,
	}
}

// Clear empties the index, keeping cell capacity for reuse.
func (ci *CircleIndex) Clear() {
	for i := range ci.cells {
		ci.cells[i] = ci.cells[i][:0]
	}
	ci.bodies = ci.bodies[:0]
	ci.maxRadius = 0
}

// Insert registers a circle in the cell containing its center.
func (ci *CircleIndex) Insert(ref Ref, x, y, r float32) {
	idx := int32(len(ci.bodies))
	ci.bodies = append(ci.bodies, circleBody{ref: ref, x: x, y: y, r: r})
	if r > ci.maxRadius {
		ci.maxRadius = r
	}
	cell := ci.cellIndex(x, y)
	ci.cells[cell] = append(ci.cells[cell], idx)
}

// Len returns the number of inserted circles.
func (ci *CircleIndex) Len() int {
	return len(ci.bodies)
}

// Pairs appends every overlapping pair to dst exactly once and returns the
// updated slice. Reuse dst across ticks to avoid allocations. Insertion
// order fixes pair order, which keeps runs reproducible.
func (ci *CircleIndex) Pairs(dst []Pair) []Pair {
	for i := range ci.bodies {
		a := &ci.bodies[i]
		emitted := 0

		// Any circle overlapping a must have its center within this reach.
		reach := a.r + ci.maxRadius
		cellRange := int(reach/ci.cellSize) + 1
		centerCol := int(a.x / ci.cellSize)
		centerRow := int(a.y / ci.cellSize)

	scan:
		for dr := -cellRange; dr <= cellRange; dr++ {
			row := centerRow + dr
			if row < 0 || row >= ci.rows {
				continue
			}
			for dc := -cellRange; dc <= cellRange; dc++ {
				col := centerCol + dc
				if col < 0 || col >= ci.cols {
					continue
				}
				for _, jIdx := range ci.cells[row*ci.cols+col] {
					j := int(jIdx)
					if j <= i {
						continue // forward-index scan reports each pair once
					}
					b := &ci.bodies[j]
					rsum := a.r + b.r
					dx := b.x - a.x
					dy := b.y - a.y
					distSq := dx*dx + dy*dy
					if distSq >= rsum*rsum {
						continue
					}
					dist := sqrt32(distSq)
					nx, ny := float32(1), float32(0)
					if dist > minAxisLength {
						nx = dx / dist
						ny = dy / dist
					} else {
						dist = minAxisLength
					}
					dst = append(dst, Pair{
						A:       a.ref,
						B:       b.ref,
						Overlap: rsum - dist,
						NX:      nx,
						NY:      ny,
					})
					emitted++
					if ci.maxNeighbors > 0 && emitted >= ci.maxNeighbors {
						break scan
					}
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position.
func (ci *CircleIndex) cellIndex(x, y float32) int {
	col := int(x / ci.cellSize)
	row := int(y / ci.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= ci.cols {
		col = ci.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= ci.rows {
		row = ci.rows - 1
	}

	return row*ci.cols + col
}
