// Package storage persists run archives: run metadata, creature lineage,
// and per-window energy history. Backends share one Store interface; the
// memory backend serves tests and throwaway runs, the sqlite backend keeps
// archives across processes.
package storage

import (
	"context"
	"time"
)

// RunRecord describes one simulation run.
type RunRecord struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"started_at"`
	Ticks     int32     `json:"ticks"`
	Config    string    `json:"config"` // effective config YAML
}

// LineageRecord is one creature's ancestry entry. DeathTick is zero for
// creatures still alive when the archive was written.
type LineageRecord struct {
	CreatureID uint32 `json:"creature_id"`
	ParentA    uint32 `json:"parent_a"`
	ParentB    uint32 `json:"parent_b"`
	Origin     string `json:"origin"`
	BirthTick  int32  `json:"birth_tick"`
	DeathTick  int32  `json:"death_tick"`
	Lifespan   int32  `json:"lifespan"`
	Genome     string `json:"genome"`
}

// Store defines persistence operations for run archives. Save calls replace
// the stored value for their key, so periodic re-saves of a growing lineage
// are idempotent.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
	SaveLineage(ctx context.Context, runID string, lineage []LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]LineageRecord, bool, error)
	SaveEnergyHistory(ctx context.Context, runID string, history []float64) error
	GetEnergyHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
