// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists evaluation runs in a SQLite index and renders
// them as reports and YAML exports.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/bbwen/molexplain/pkg/types"
)

const (
	dbFile     = "results.db"
	exportFile = "export.yaml"
)

// Run is one recorded evaluation: which benchmark, how the importances were
// normalized, and the resulting metric report.
type Run struct {
	ID         int64              `json:"id" yaml:"id"`
	Dataset    string             `json:"dataset" yaml:"dataset"`
	Normalizer string             `json:"normalizer" yaml:"normalizer"`
	Molecules  int                `json:"molecules" yaml:"molecules"`
	Report     types.MetricReport `json:"report" yaml:"report"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
}

// Store manages the results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// NewStore opens or creates the results database at resultsDir/results.db,
// creating the schema if it does not exist.
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ResultsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		resultsDir: cfg.ResultsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset TEXT NOT NULL,
			normalizer TEXT NOT NULL,
			molecules INTEGER NOT NULL,
			threshold REAL NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			value REAL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts an evaluation run and its metrics, returning the run with
// its assigned identifier. Metric order is preserved.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (dataset, normalizer, molecules, threshold, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.Dataset, run.Normalizer, run.Molecules, run.Report.Threshold,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	run.ID, err = res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO metrics (run_id, position, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing metric insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range run.Report.Metrics {
		if _, err := stmt.ExecContext(ctx, run.ID, i, m.Name, nullableValue(m.Value)); err != nil {
			return Run{}, fmt.Errorf("inserting metric %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first, optionally filtered by
// dataset. A non-positive limit uses the configured default.
func (s *Store) List(ctx context.Context, dataset string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	query := `SELECT id, dataset, normalizer, molecules, threshold, created_at
		FROM runs`
	args := []any{}
	if dataset != "" {
		query += ` WHERE dataset = ?`
		args = append(args, dataset)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if err := s.loadMetrics(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns a single run by identifier.
func (s *Store) Get(ctx context.Context, id int64) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dataset, normalizer, molecules, threshold, created_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run %d not found", id)
		}
		return Run{}, err
	}
	if err := s.loadMetrics(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var created string
	err := row.Scan(&run.ID, &run.Dataset, &run.Normalizer, &run.Molecules,
		&run.Report.Threshold, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
		run.CreatedAt = t
	}
	return run, nil
}

func (s *Store) loadMetrics(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM metrics WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("querying metrics for run %d: %w", run.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m types.Metric
		var value sql.NullFloat64
		if err := rows.Scan(&m.Name, &value); err != nil {
			return fmt.Errorf("scanning metric: %w", err)
		}
		if value.Valid {
			m.Value = value.Float64
		} else {
			m.Value = math.NaN()
		}
		run.Report.Metrics = append(run.Report.Metrics, m)
	}
	return rows.Err()
}

// nullableValue maps an undefined score to NULL. SQLite binds a NaN float as
// NULL anyway; doing it explicitly keeps the NaN round trip a contract
// instead of a driver accident.
func nullableValue(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// exportDoc is the export.yaml document shape.
type exportDoc struct {
	ExportedAt time.Time `yaml:"exported_at"`
	RunCount   int       `yaml:"run_count"`
	Runs       []Run     `yaml:"runs"`
}

// All returns every stored run, newest first.
func (s *Store) All(ctx context.Context) ([]Run, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting runs: %w", err)
	}
	if total == 0 {
		return nil, nil
	}
	return s.List(ctx, "", total)
}

// ExportYAML writes every stored run to resultsDir/export.yaml, newest
// first.
func (s *Store) ExportYAML(ctx context.Context) error {
	runs, err := s.All(ctx)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []Run{}
	}

	doc := exportDoc{
		ExportedAt: time.Now().UTC(),
		RunCount:   len(runs),
		Runs:       runs,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(filepath.Join(s.resultsDir, exportFile), data, 0o644)
}
