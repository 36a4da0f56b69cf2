package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run archives to a single SQLite file. Records are
// stored as versioned JSON blobs keyed by run id, so schema evolution stays
// in the codec rather than in table migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// modernc's driver is not safe for concurrent writers on one connection
	// pool with default settings; a single connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite database: %w", err)
	}
	return s.createTables(ctx)
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id      TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lineages (
			run_id  TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS energy_histories (
			run_id  TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, payload) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		run.ID, payload)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("loading run %s: %w", id, err)
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return RunRecord{}, false, err
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveLineage(ctx context.Context, runID string, lineage []LineageRecord) error {
	payload, err := EncodeLineage(lineage)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lineages (run_id, payload) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload`,
		runID, payload)
	if err != nil {
		return fmt.Errorf("saving lineage for run %s: %w", runID, err)
	}
	return nil
}

func (s *SQLiteStore) GetLineage(ctx context.Context, runID string) ([]LineageRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM lineages WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading lineage for run %s: %w", runID, err)
	}
	lineage, err := DecodeLineage(payload)
	if err != nil {
		return nil, false, err
	}
	return lineage, true, nil
}

func (s *SQLiteStore) SaveEnergyHistory(ctx context.Context, runID string, history []float64) error {
	payload, err := EncodeHistory(history)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO energy_histories (run_id, payload) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload`,
		runID, payload)
	if err != nil {
		return fmt.Errorf("saving energy history for run %s: %w", runID, err)
	}
	return nil
}

func (s *SQLiteStore) GetEnergyHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM energy_histories WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading energy history for run %s: %w", runID, err)
	}
	history, err := DecodeHistory(payload)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
