// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Energy       EnergyConfig       `yaml:"energy"`
	Food         FoodConfig         `yaml:"food"`
	Genome       GenomeConfig       `yaml:"genome"`
	Body         BodyConfig         `yaml:"body"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Collision    CollisionConfig    `yaml:"collision"`
	Population   PopulationConfig   `yaml:"population"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds medium dimensions and fluid properties.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Viscosity    float64 `yaml:"viscosity"`     // drag scaling of the medium
	DT           float64 `yaml:"dt"`            // fixed step size per tick
	BoundaryPush float64 `yaml:"boundary_push"` // impulse added when a node hits a wall
}

// EnergyConfig holds the energy economy parameters.
type EnergyConfig struct {
	InsolationPool  float64 `yaml:"insolation_pool"`  // total solar energy per tick, split by area share
	MaintenanceCost float64 `yaml:"maintenance_cost"` // flat drain per creature per tick
	ReferenceMax    float64 `yaml:"reference_max"`    // actuation effectiveness ramps to 1 at half this
}

// FoodConfig holds food particle parameters.
type FoodConfig struct {
	SpawnChance float64 `yaml:"spawn_chance"` // probability of one spawn per tick
	Energy      float64 `yaml:"energy"`       // energy per spawned particle
	Radius      float64 `yaml:"radius"`
	MaxCount    int     `yaml:"max_count"` // spawning pauses at this many particles
}

// GenomeConfig holds genome generation and mutation parameters.
type GenomeConfig struct {
	MinGenes         int     `yaml:"min_genes"`
	MaxGenes         int     `yaml:"max_genes"`
	SizeMin          float64 `yaml:"size_min"`
	SizeMax          float64 `yaml:"size_max"`
	EfficiencyMin    float64 `yaml:"efficiency_min"`
	EfficiencyMax    float64 `yaml:"efficiency_max"`
	ExtraLinkChance  float64 `yaml:"extra_link_chance"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationStrength float64 `yaml:"mutation_strength"`
}

// BodyConfig holds body construction parameters.
type BodyConfig struct {
	SpringStiffness float64 `yaml:"spring_stiffness"`
	PlacementMargin float64 `yaml:"placement_margin"` // gap between node surfaces at build time
	ActuationChance float64 `yaml:"actuation_chance"` // probability a link oscillates
	AmpMax          float64 `yaml:"amp_max"`          // oscillation amplitude cap (fraction of rest length)
	FreqMax         float64 `yaml:"freq_max"`
}

// ReproductionConfig holds mating and division parameters.
type ReproductionConfig struct {
	MatingThreshold   float64 `yaml:"mating_threshold"`   // both parents need at least this much energy
	MatingCost        float64 `yaml:"mating_cost"`        // split evenly between the parents
	DivisionThreshold float64 `yaml:"division_threshold"` // asexual split point
	SpawnJitter       float64 `yaml:"spawn_jitter"`       // child placement scatter
}

// CollisionConfig holds broad-phase and contact response parameters.
type CollisionConfig struct {
	GridCellSize float64 `yaml:"grid_cell_size"`
	PushForce    float64 `yaml:"push_force"` // separation impulse fraction per overlap
	MaxNeighbors int     `yaml:"max_neighbors"`
}

// PopulationConfig holds seeding and respawn parameters.
type PopulationConfig struct {
	Initial    int     `yaml:"initial"`
	SeedEnergy float64 `yaml:"seed_energy"`
	MinFloor   int     `yaml:"min_floor"` // respawn random creatures below this; 0 disables
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow      int `yaml:"stats_window"` // ticks per stats window
	PerfWindow       int `yaml:"perf_window"`
	SnapshotInterval int `yaml:"snapshot_interval"` // windows between JSON snapshots; 0 disables
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW32 float32
	WorldH32 float32
	DT32     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.DT32 = float32(c.World.DT)
}

// Validate checks the configuration for values the simulation cannot run on.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.World.Viscosity < 0 {
		return fmt.Errorf("viscosity must be non-negative, got %g", c.World.Viscosity)
	}
	if c.World.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.World.DT)
	}
	if c.Food.SpawnChance < 0 || c.Food.SpawnChance > 1 {
		return fmt.Errorf("food spawn chance must be in [0,1], got %g", c.Food.SpawnChance)
	}
	if c.Genome.MinGenes < 1 || c.Genome.MaxGenes < c.Genome.MinGenes {
		return fmt.Errorf("genome gene bounds invalid: min %d, max %d", c.Genome.MinGenes, c.Genome.MaxGenes)
	}
	if c.Genome.SizeMin <= 0 || c.Genome.SizeMax < c.Genome.SizeMin {
		return fmt.Errorf("genome size bounds invalid: min %g, max %g", c.Genome.SizeMin, c.Genome.SizeMax)
	}
	if c.Genome.EfficiencyMin <= 0 || c.Genome.EfficiencyMax > 1 || c.Genome.EfficiencyMax < c.Genome.EfficiencyMin {
		return fmt.Errorf("genome efficiency bounds must lie in (0,1]: min %g, max %g", c.Genome.EfficiencyMin, c.Genome.EfficiencyMax)
	}
	if c.Genome.MutationRate < 0 || c.Genome.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1], got %g", c.Genome.MutationRate)
	}
	if c.Body.ActuationChance < 0 || c.Body.ActuationChance > 1 {
		return fmt.Errorf("actuation chance must be in [0,1], got %g", c.Body.ActuationChance)
	}
	if c.Reproduction.MatingThreshold <= 0 || c.Reproduction.DivisionThreshold <= 0 {
		return fmt.Errorf("reproduction thresholds must be positive, got mating %g, division %g",
			c.Reproduction.MatingThreshold, c.Reproduction.DivisionThreshold)
	}
	if c.Reproduction.MatingCost < 0 {
		return fmt.Errorf("mating cost must be non-negative, got %g", c.Reproduction.MatingCost)
	}
	if c.Collision.GridCellSize <= 0 {
		return fmt.Errorf("collision grid cell size must be positive, got %g", c.Collision.GridCellSize)
	}
	if c.Telemetry.StatsWindow < 1 {
		return fmt.Errorf("stats window must be at least 1 tick, got %d", c.Telemetry.StatsWindow)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
