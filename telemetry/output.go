package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/brine/config"
)

// OutputManager writes run artifacts into one output directory: stats.csv,
// perf.csv, the effective config, and JSON snapshots under snapshots/.
type OutputManager struct {
	dir           string
	statsFile     *os.File
	perfFile      *os.File
	eventsFile    *os.File
	lifetimesFile *os.File

	statsHeaderWritten     bool
	perfHeaderWritten      bool
	eventsHeaderWritten    bool
	lifetimesHeaderWritten bool
}

// NewOutputManager creates the output directory and its CSV files. An empty
// dir disables output; every method on a nil manager is a no-op.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		om.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventsFile = f

	f, err = os.Create(filepath.Join(dir, "lifetimes.csv"))
	if err != nil {
		om.Close()
		return nil, fmt.Errorf("creating lifetimes.csv: %w", err)
	}
	om.lifetimesFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteEvents appends birth and death events to events.csv.
func (om *OutputManager) WriteEvents(events []Event) error {
	if om == nil || len(events) == 0 {
		return nil
	}
	if !om.eventsHeaderWritten {
		if err := gocsv.Marshal(events, om.eventsFile); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
		om.eventsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(events, om.eventsFile); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// WriteLifetimes appends completed lifetime records to lifetimes.csv.
func (om *OutputManager) WriteLifetimes(records []LifetimeRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if !om.lifetimesHeaderWritten {
		if err := gocsv.Marshal(records, om.lifetimesFile); err != nil {
			return fmt.Errorf("writing lifetimes: %w", err)
		}
		om.lifetimesHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.lifetimesFile); err != nil {
		return fmt.Errorf("writing lifetimes: %w", err)
	}
	return nil
}

// SnapshotDir returns the directory snapshots are saved under.
func (om *OutputManager) SnapshotDir() string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, "snapshots")
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.statsFile, om.perfFile, om.eventsFile, om.lifetimesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	om.statsFile, om.perfFile, om.eventsFile, om.lifetimesFile = nil, nil, nil, nil
	return firstErr
}
