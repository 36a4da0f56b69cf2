package systems

// Food is a free-floating energy particle. Food never moves; it sits where
// spawning or a carcass left it until a sucker node consumes it.
type Food struct {
	ID     uint32
	X, Y   float32
	Energy float32
	Radius float32
}

// FoodPool holds all live food particles in a flat slice. Particles keep
// insertion order; removal compacts in place, so pool indices handed to the
// collision pass stay valid for exactly one tick.
type FoodPool struct {
	items  []Food
	nextID uint32
}

// NewFoodPool creates an empty pool.
func NewFoodPool() *FoodPool {
	return &FoodPool{
		items:  make([]Food, 0, 256),
		nextID: 1,
	}
}

// Spawn adds a particle and returns its ID.
func (fp *FoodPool) Spawn(x, y, energy, radius float32) uint32 {
	id := fp.nextID
	fp.nextID++
	fp.items = append(fp.items, Food{ID: id, X: x, Y: y, Energy: energy, Radius: radius})
	return id
}

// Len returns the number of live particles.
func (fp *FoodPool) Len() int {
	return len(fp.items)
}

// At returns the particle at index i. The pointer is valid until the next
// Remove.
func (fp *FoodPool) At(i int) *Food {
	return &fp.items[i]
}

// TotalEnergy sums the energy of all live particles.
func (fp *FoodPool) TotalEnergy() float32 {
	var total float32
	for i := range fp.items {
		total += fp.items[i].Energy
	}
	return total
}

// Remove drops the particles at the marked indices, preserving the order of
// the survivors.
func (fp *FoodPool) Remove(marked map[int]struct{}) {
	if len(marked) == 0 {
		return
	}
	alive := fp.items[:0]
	for i := range fp.items {
		if _, gone := marked[i]; gone {
			continue
		}
		alive = append(alive, fp.items[i])
	}
	fp.items = alive
}
