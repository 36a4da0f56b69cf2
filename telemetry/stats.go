package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window. Counts and
// flows cover the window; population and energy fields sample the window's
// closing tick.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end
	Creatures    int     `csv:"creatures"`
	FoodCount    int     `csv:"food"`
	TotalNodes   int     `csv:"nodes"`
	MeanNodes    float64 `csv:"nodes_mean"`
	NeutralNodes int     `csv:"nodes_neutral"`
	SuckerNodes  int     `csv:"nodes_sucker"`
	SolarNodes   int     `csv:"nodes_solar"`
	MatingNodes  int     `csv:"nodes_mating"`

	// Events during window
	Births         int `csv:"births"`
	BirthsMating   int `csv:"births_mating"`
	BirthsDivision int `csv:"births_division"`
	Deaths         int `csv:"deaths"`
	Feedings       int `csv:"feedings"`
	Drains         int `csv:"drains"`
	Matings        int `csv:"matings"`

	// Energy distribution at window end
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Energy pools and flows (conservation accounting)
	TotalOrganisms float64 `csv:"total_organisms"`
	TotalFood      float64 `csv:"total_food"`
	SolarIn        float64 `csv:"solar_in"`
	FoodSpawned    float64 `csv:"food_spawned"`
	FoodEaten      float64 `csv:"food_eaten"`
	DigestionLoss  float64 `csv:"digestion_loss"`
	DrainGained    float64 `csv:"drain_gained"`
	DrainLost      float64 `csv:"drain_lost"`
	MaintenanceOut float64 `csv:"maintenance_out"`
	ActuationOut   float64 `csv:"actuation_out"`
	DivisionLost   float64 `csv:"division_lost"`
	MatingCostPaid float64 `csv:"mating_cost_paid"`
	MatingMinted   float64 `csv:"mating_minted"`
	DeathToFood    float64 `csv:"death_to_food"`
}

// computeDistribution returns mean and empirical percentiles of the values.
// Empty input yields zeros.
func computeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogStats logs the headline window stats.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"creatures", s.Creatures,
		"food", s.FoodCount,
		"births", s.Births,
		"births_mating", s.BirthsMating,
		"births_division", s.BirthsDivision,
		"deaths", s.Deaths,
		"feedings", s.Feedings,
		"drains", s.Drains,
		"matings", s.Matings,
		"energy_mean", s.EnergyMean,
		"energy_p50", s.EnergyP50,
		"total_organisms", s.TotalOrganisms,
		"total_food", s.TotalFood,
		"solar_in", s.SolarIn,
		"nodes_mean", s.MeanNodes,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("creatures", s.Creatures),
		slog.Int("food", s.FoodCount),
		slog.Int("nodes", s.TotalNodes),
		slog.Float64("nodes_mean", s.MeanNodes),
		slog.Int("nodes_neutral", s.NeutralNodes),
		slog.Int("nodes_sucker", s.SuckerNodes),
		slog.Int("nodes_solar", s.SolarNodes),
		slog.Int("nodes_mating", s.MatingNodes),
		slog.Int("births", s.Births),
		slog.Int("births_mating", s.BirthsMating),
		slog.Int("births_division", s.BirthsDivision),
		slog.Int("deaths", s.Deaths),
		slog.Int("feedings", s.Feedings),
		slog.Int("drains", s.Drains),
		slog.Int("matings", s.Matings),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("total_organisms", s.TotalOrganisms),
		slog.Float64("total_food", s.TotalFood),
		slog.Float64("solar_in", s.SolarIn),
		slog.Float64("food_spawned", s.FoodSpawned),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Float64("digestion_loss", s.DigestionLoss),
		slog.Float64("drain_gained", s.DrainGained),
		slog.Float64("drain_lost", s.DrainLost),
		slog.Float64("maintenance_out", s.MaintenanceOut),
		slog.Float64("actuation_out", s.ActuationOut),
		slog.Float64("division_lost", s.DivisionLost),
		slog.Float64("mating_cost_paid", s.MatingCostPaid),
		slog.Float64("mating_minted", s.MatingMinted),
		slog.Float64("death_to_food", s.DeathToFood),
	)
}
