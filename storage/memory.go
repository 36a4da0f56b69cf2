package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps run archives in process memory. It satisfies Store for
// tests and for runs where persistence was not requested.
type MemoryStore struct {
	mu        sync.RWMutex
	runs      map[string]RunRecord
	lineages  map[string][]LineageRecord
	histories map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:      make(map[string]RunRecord),
		lineages:  make(map[string][]LineageRecord),
		histories: make(map[string][]float64),
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) SaveRun(ctx context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveLineage(ctx context.Context, runID string, lineage []LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]LineageRecord, len(lineage))
	copy(cp, lineage)
	s.lineages[runID] = cp
	return nil
}

func (s *MemoryStore) GetLineage(ctx context.Context, runID string) ([]LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lineage, ok := s.lineages[runID]
	if !ok {
		return nil, false, nil
	}
	cp := make([]LineageRecord, len(lineage))
	copy(cp, lineage)
	return cp, true, nil
}

func (s *MemoryStore) SaveEnergyHistory(ctx context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]float64, len(history))
	copy(cp, history)
	s.histories[runID] = cp
	return nil
}

func (s *MemoryStore) GetEnergyHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.histories[runID]
	if !ok {
		return nil, false, nil
	}
	cp := make([]float64, len(history))
	copy(cp, history)
	return cp, true, nil
}
