package sim

// Ledger accumulates energy flows and lifecycle counts between resets. All
// flows are positive magnitudes; sources add energy to the world, sinks
// remove it. Telemetry drains the ledger once per stats window.
type Ledger struct {
	// Sources.
	SolarIn      float64 // insolation absorbed by solar nodes
	FoodSpawned  float64 // energy placed as ambient food
	MatingMinted float64 // energy granted to mating offspring

	// Transfers.
	FoodEaten   float64 // food energy credited to suckers
	DrainGained float64 // drained energy credited to attackers
	DeathToFood float64 // carcass energy converted to food

	// Sinks.
	DigestionLoss  float64 // food energy lost to sucker inefficiency
	DrainLost      float64 // drained energy dissipated in transfer
	MaintenanceOut float64 // per-tick upkeep
	ActuationOut   float64 // muscle operation cost
	DivisionLost   float64 // energy lost when a creature splits
	MatingCostPaid float64 // energy paid by mating parents

	// Event counts.
	Feedings       int
	Drains         int
	Matings        int
	Births         int
	BirthsMating   int
	BirthsDivision int
	Deaths         int
}
