package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/brine/sim"
)

// SnapshotVersion is incremented when the snapshot format changes.
const SnapshotVersion = 1

// SnapshotFile wraps a world snapshot with replay metadata. A run is
// reproduced from seed and config; the captured state exists for offline
// inspection and comparison.
type SnapshotFile struct {
	Version int          `json:"version"`
	Seed    int64        `json:"seed"`
	State   sim.Snapshot `json:"state"`
}

// SaveSnapshot writes a snapshot as snapshot_<tick>.json under dir and
// returns the file path.
func SaveSnapshot(dir string, seed int64, state sim.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", state.Tick))
	data, err := json.MarshalIndent(SnapshotFile{
		Version: SnapshotVersion,
		Seed:    seed,
		State:   state,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot file from disk.
func LoadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var file SnapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if file.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d not supported (want %d)", file.Version, SnapshotVersion)
	}
	return &file, nil
}
