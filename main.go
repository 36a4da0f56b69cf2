// Command brine runs the soft-body soup headless: it steps the world,
// streams telemetry to CSV, and archives the run's lineage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/brine/config"
	"github.com/pthm-cable/brine/sim"
	"github.com/pthm-cable/brine/storage"
	"github.com/pthm-cable/brine/telemetry"
)

const bookmarkHistory = 16

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots, and config")
	hallPath := flag.String("hall", "", "Hall of fame JSON; loaded for seeding if present, saved on exit")
	hallSize := flag.Int("hall-size", 32, "Hall of fame capacity")
	hallSeed := flag.Int("hall-seed", 0, "Creatures to seed from the hall of fame")
	storeKind := flag.String("store", "", "Run archive backend: memory or sqlite (empty = none)")
	storePath := flag.String("db", "", "SQLite database path for -store sqlite")
	runID := flag.String("run-id", "", "Archive run ID (empty = derived from seed and start time)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Structured JSON logging to stdout
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(cfg, rngSeed, *maxTicks, *logStats, *outputDir,
		*hallPath, *hallSize, *hallSeed, *storeKind, *storePath, *runID); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed int64, maxTicks int, logStats bool,
	outputDir, hallPath string, hallSize, hallSeed int,
	storeKind, storePath, runID string) error {

	ctx := context.Background()
	startedAt := time.Now()

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing effective config: %w", err)
	}

	// Hall of fame: load an existing archive or start empty. The hall gets
	// its own generator so sampling does not perturb the world's replay.
	hallRNG := rand.New(rand.NewSource(seed + 1))
	hall := telemetry.NewHallOfFame(hallSize, hallRNG)
	if hallPath != "" {
		if loaded, err := telemetry.LoadHallOfFame(hallPath, hallSize, hallRNG); err == nil {
			hall = loaded
			slog.Info("loaded hall of fame", "path", hallPath, "entries", hall.Len())
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading hall of fame: %w", err)
		}
	}

	events := telemetry.NewEventLog()
	tracker := telemetry.NewLifetimeTracker(events, hall)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	world, err := sim.New(cfg, sim.Options{Seed: seed, Recorder: tracker, Perf: perf})
	if err != nil {
		return err
	}

	// Extra creatures sampled from past champions join the random seeds.
	for i := 0; i < hallSeed; i++ {
		g, ok := hall.SampleGenome()
		if !ok {
			break
		}
		x := hallRNG.Float32() * float32(cfg.World.Width)
		y := hallRNG.Float32() * float32(cfg.World.Height)
		if _, err := world.SpawnCreature(g, x, y, float32(cfg.Population.SeedEnergy)); err != nil {
			slog.Warn("hall seeding failed", "error", err)
		}
	}

	// Run archive
	var store storage.Store
	if storeKind != "" {
		store, err = storage.NewStore(storeKind, storePath)
		if err != nil {
			return err
		}
		defer storage.CloseIfSupported(store)
		if err := store.Init(ctx); err != nil {
			return err
		}
		if runID == "" {
			runID = fmt.Sprintf("run-%d-%s", seed, startedAt.UTC().Format("20060102T150405"))
		}
	}

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	bookmarks := telemetry.NewBookmarkDetector(bookmarkHistory)

	var lineage []storage.LineageRecord
	var energyHistory []float64
	windowCount := 0

	slog.Info("starting simulation",
		"seed", seed,
		"max_ticks", maxTicks,
		"creatures", world.CreatureCount(),
		"stats_window", cfg.Telemetry.StatsWindow,
	)

	for maxTicks == 0 || int(world.Tick()) < maxTicks {
		perf.StartTick()
		world.Step()
		perf.EndTick()

		tick := world.Tick()
		if !collector.ShouldFlush(tick) {
			continue
		}

		snap := world.Snapshot()
		stats := collector.Flush(snap, world.Ledger())
		world.ResetLedger()
		tracker.ObserveEnergies(snap)

		if logStats {
			stats.LogStats()
		}
		if err := om.WriteStats(stats); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		if err := om.WritePerf(perf.Stats(), tick); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		if err := om.WriteEvents(events.Drain()); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
		completed := tracker.DrainCompleted()
		if err := om.WriteLifetimes(completed); err != nil {
			return fmt.Errorf("writing lifetimes: %w", err)
		}
		for _, rec := range completed {
			lineage = append(lineage, toLineage(rec))
		}
		energyHistory = append(energyHistory, stats.EnergyMean)

		for _, b := range bookmarks.Check(stats) {
			b.LogBookmark()
		}

		windowCount++
		interval := cfg.Telemetry.SnapshotInterval
		if om != nil && interval > 0 && windowCount%interval == 0 {
			if _, err := telemetry.SaveSnapshot(om.SnapshotDir(), seed, snap); err != nil {
				return fmt.Errorf("saving snapshot: %w", err)
			}
		}

		if stats.Creatures == 0 && cfg.Population.MinFloor == 0 {
			slog.Info("extinction", "tick", tick)
			break
		}
	}

	finalTick := world.Tick()
	slog.Info("simulation finished",
		"tick", finalTick,
		"creatures", world.CreatureCount(),
		"food", world.FoodCount(),
	)

	// Flush what the last partial window accumulated, then archive.
	if err := om.WriteEvents(events.Drain()); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	completed := tracker.DrainCompleted()
	if err := om.WriteLifetimes(completed); err != nil {
		return fmt.Errorf("writing lifetimes: %w", err)
	}
	for _, rec := range completed {
		lineage = append(lineage, toLineage(rec))
	}
	for _, rec := range tracker.LiveRecords() {
		lineage = append(lineage, toLineage(rec))
	}

	if store != nil {
		configYAML, err := configText(cfg)
		if err != nil {
			return err
		}
		run := storage.RunRecord{
			ID:        runID,
			Seed:      seed,
			StartedAt: startedAt,
			Ticks:     finalTick,
			Config:    configYAML,
		}
		if err := store.SaveRun(ctx, run); err != nil {
			return err
		}
		if err := store.SaveLineage(ctx, runID, lineage); err != nil {
			return err
		}
		if err := store.SaveEnergyHistory(ctx, runID, energyHistory); err != nil {
			return err
		}
		slog.Info("archived run", "run_id", runID, "lineage", len(lineage))
	}

	if hallPath != "" && hall.Len() > 0 {
		if err := hall.SaveToFile(hallPath); err != nil {
			return fmt.Errorf("saving hall of fame: %w", err)
		}
		slog.Info("saved hall of fame", "path", hallPath, "entries", hall.Len())
	}

	return nil
}

func toLineage(rec telemetry.LifetimeRecord) storage.LineageRecord {
	return storage.LineageRecord{
		CreatureID: rec.CreatureID,
		ParentA:    rec.ParentA,
		ParentB:    rec.ParentB,
		Origin:     rec.Origin,
		BirthTick:  rec.BirthTick,
		DeathTick:  rec.DeathTick,
		Lifespan:   rec.Lifespan,
		Genome:     rec.Genes,
	}
}

func configText(cfg *config.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}
