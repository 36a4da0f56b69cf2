package systems

import (
	"math"
	"math/rand"
	"testing"
)

// ---------- helpers ----------

// foodRef builds a ref whose FoodIdx doubles as an insertion marker.
func foodRef(idx int) Ref {
	return Ref{Kind: RefFood, Food: uint32(idx), FoodIdx: idx}
}

type indexPair struct{ a, b int }

// brutePairs computes overlapping pairs the obvious way.
func brutePairs(circles [][3]float32) map[indexPair]float32 {
	found := make(map[indexPair]float32)
	for i := 0; i < len(circles); i++ {
		for j := i + 1; j < len(circles); j++ {
			dx := circles[j][0] - circles[i][0]
			dy := circles[j][1] - circles[i][1]
			rsum := circles[i][2] + circles[j][2]
			distSq := dx*dx + dy*dy
			if distSq < rsum*rsum {
				dist := float32(math.Sqrt(float64(distSq)))
				found[indexPair{i, j}] = rsum - dist
			}
		}
	}
	return found
}

// ---------- pair detection ----------

func TestCircleIndex_ReportsOverlapOnce(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 100, 100, 5)
	index.Insert(foodRef(1), 106, 100, 3)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected exactly 1 pair, got %d", len(pairs))
	}
	if pairs[0].A.FoodIdx != 0 || pairs[0].B.FoodIdx != 1 {
		t.Errorf("pair order = (%d, %d), want first-inserted circle as A",
			pairs[0].A.FoodIdx, pairs[0].B.FoodIdx)
	}
}

func TestCircleIndex_PairGeometry(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 100, 100, 5)
	index.Insert(foodRef(1), 106, 100, 3)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	// Centers 6 apart, radii sum 8.
	if math.Abs(float64(p.Overlap-2)) > 1e-4 {
		t.Errorf("overlap = %f, want 2", p.Overlap)
	}
	if math.Abs(float64(p.NX-1)) > 1e-4 || math.Abs(float64(p.NY)) > 1e-4 {
		t.Errorf("axis = (%f, %f), want (1, 0)", p.NX, p.NY)
	}
}

func TestCircleIndex_DiagonalAxisIsUnitLength(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 100, 100, 4)
	index.Insert(foodRef(1), 103, 104, 4)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	norm := p.NX*p.NX + p.NY*p.NY
	if math.Abs(float64(norm-1)) > 1e-4 {
		t.Errorf("axis length squared = %f, want 1", norm)
	}
	if p.NX <= 0 || p.NY <= 0 {
		t.Errorf("axis = (%f, %f), want pointing from A toward B (both positive)", p.NX, p.NY)
	}
}

func TestCircleIndex_SeparatedAndTouchingCirclesIgnored(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 50, 50, 5)
	index.Insert(foodRef(1), 58, 50, 3) // exactly touching, radii sum 8
	index.Insert(foodRef(2), 120, 50, 4)

	if pairs := index.Pairs(nil); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(pairs))
	}
}

func TestCircleIndex_CoincidentCentersGetFixedAxis(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 80, 80, 3)
	index.Insert(foodRef(1), 80, 80, 3)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.NX != 1 || p.NY != 0 {
		t.Errorf("axis = (%f, %f), want fixed (1, 0) fallback", p.NX, p.NY)
	}
	if p.Overlap <= 0 || math.IsNaN(float64(p.Overlap)) {
		t.Errorf("overlap = %f, want positive and finite", p.Overlap)
	}
}

// ---------- grid traversal ----------

func TestCircleIndex_FindsPairsAcrossCellBoundaries(t *testing.T) {
	index := NewCircleIndex(200, 200, 10, 0)
	// Centers in adjacent cells.
	index.Insert(foodRef(0), 9.5, 5, 2)
	index.Insert(foodRef(1), 10.5, 5, 2)
	// A large circle whose partner sits several cells away.
	index.Insert(foodRef(2), 50, 50, 25)
	index.Insert(foodRef(3), 70, 50, 1)

	pairs := index.Pairs(nil)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	seen := make(map[indexPair]bool)
	for _, p := range pairs {
		seen[indexPair{p.A.FoodIdx, p.B.FoodIdx}] = true
	}
	if !seen[indexPair{0, 1}] {
		t.Error("missing pair spanning adjacent cells")
	}
	if !seen[indexPair{2, 3}] {
		t.Error("missing pair of large circle with distant partner")
	}
}

func TestCircleIndex_ClampsOutOfBoundsCenters(t *testing.T) {
	index := NewCircleIndex(100, 100, 16, 0)
	index.Insert(foodRef(0), -5, -5, 10)
	index.Insert(foodRef(1), 2, 2, 1)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair for circle outside the grid, got %d", len(pairs))
	}
}

func TestCircleIndex_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	index := NewCircleIndex(300, 200, 16, 0)

	circles := make([][3]float32, 200)
	for i := range circles {
		circles[i] = [3]float32{
			rng.Float32() * 300,
			rng.Float32() * 200,
			1 + rng.Float32()*11,
		}
		index.Insert(foodRef(i), circles[i][0], circles[i][1], circles[i][2])
	}

	want := brutePairs(circles)
	got := index.Pairs(nil)
	if len(got) != len(want) {
		t.Fatalf("pair count = %d, brute force found %d", len(got), len(want))
	}
	for _, p := range got {
		key := indexPair{p.A.FoodIdx, p.B.FoodIdx}
		overlap, ok := want[key]
		if !ok {
			t.Fatalf("pair (%d, %d) not found by brute force", key.a, key.b)
		}
		if math.Abs(float64(p.Overlap-overlap)) > 1e-3 {
			t.Errorf("pair (%d, %d) overlap = %f, want %f", key.a, key.b, p.Overlap, overlap)
		}
	}
}

// ---------- reuse ----------

func TestCircleIndex_ClearResetsForReuse(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	index.Insert(foodRef(0), 100, 100, 30)
	index.Insert(foodRef(1), 110, 100, 5)
	if pairs := index.Pairs(nil); len(pairs) != 1 {
		t.Fatalf("expected 1 pair before clear, got %d", len(pairs))
	}

	index.Clear()
	if index.Len() != 0 {
		t.Errorf("Len after clear = %d, want 0", index.Len())
	}
	if pairs := index.Pairs(nil); len(pairs) != 0 {
		t.Errorf("expected no pairs after clear, got %d", len(pairs))
	}

	index.Insert(foodRef(0), 20, 20, 2)
	index.Insert(foodRef(1), 23, 20, 2)
	index.Insert(foodRef(2), 150, 150, 2)
	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair after reuse, got %d", len(pairs))
	}
	if pairs[0].A.FoodIdx != 0 || pairs[0].B.FoodIdx != 1 {
		t.Errorf("pair after reuse = (%d, %d), want (0, 1)",
			pairs[0].A.FoodIdx, pairs[0].B.FoodIdx)
	}
}

func TestCircleIndex_PreservesRefFields(t *testing.T) {
	index := NewCircleIndex(200, 200, 16, 0)
	node := Ref{Kind: RefNode, Creature: 42, Node: 3}
	food := Ref{Kind: RefFood, Food: 9, FoodIdx: 0}
	index.Insert(node, 100, 100, 4)
	index.Insert(food, 104, 100, 2)

	pairs := index.Pairs(nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.A.Kind != RefNode || p.A.Creature != 42 || p.A.Node != 3 {
		t.Errorf("node ref = %+v, want creature 42 node 3", p.A)
	}
	if p.B.Kind != RefFood || p.B.Food != 9 || p.B.FoodIdx != 0 {
		t.Errorf("food ref = %+v, want food 9 at index 0", p.B)
	}
}

// ---------- neighbor cap ----------

func TestCircleIndex_CapsPairsPerCircle(t *testing.T) {
	// One large circle surrounded by eight satellites that touch it but not
	// each other. Uncapped, its scan reports all eight.
	build := func(maxNeighbors int) []Pair {
		index := NewCircleIndex(200, 200, 16, maxNeighbors)
		index.Insert(foodRef(0), 100, 100, 10)
		for i := 0; i < 8; i++ {
			angle := float64(i) * math.Pi / 4
			x := 100 + 8*float32(math.Cos(angle))
			y := 100 + 8*float32(math.Sin(angle))
			index.Insert(foodRef(i+1), x, y, 1)
		}
		return index.Pairs(nil)
	}

	if pairs := build(0); len(pairs) != 8 {
		t.Fatalf("uncapped pair count = %d, want 8", len(pairs))
	}

	pairs := build(3)
	if len(pairs) != 3 {
		t.Fatalf("capped pair count = %d, want 3", len(pairs))
	}
	for _, p := range pairs {
		if p.A.FoodIdx != 0 {
			t.Errorf("capped pair A = %d, want the scanning circle 0", p.A.FoodIdx)
		}
	}
}
