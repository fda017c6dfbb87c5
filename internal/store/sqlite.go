// Package store exports run results into a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
	"github.com/StinkyLord/glycoproteoform-builder/internal/output"
	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and ensures the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		input TEXT NOT NULL,
		tool_version TEXT NOT NULL,
		proteoform_limit INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS proteins (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		protein TEXT NOT NULL,
		position INTEGER NOT NULL,
		total_sites INTEGER NOT NULL,
		total_distinct_glycans INTEGER NOT NULL,
		-- exact product kept as decimal text, it overflows INTEGER
		total_combinations TEXT NOT NULL,
		generated INTEGER NOT NULL,
		PRIMARY KEY (run_id, protein)
	);

	CREATE TABLE IF NOT EXISTS proteoforms (
		run_id TEXT NOT NULL,
		protein TEXT NOT NULL,
		idx INTEGER NOT NULL,
		proteoform_id TEXT NOT NULL,
		glycosylation_sites TEXT NOT NULL,
		PRIMARY KEY (run_id, protein, idx),
		FOREIGN KEY (run_id, protein) REFERENCES proteins(run_id, protein) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS failures (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		protein TEXT,
		input_row INTEGER,
		reason TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// SaveRun writes the whole run in a single transaction. Proteoforms are
// streamed from each protein's catalog straight into the insert statement.
func (s *Store) SaveRun(ctx context.Context, info output.RunInfo, result *runner.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := info.ID.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, input, tool_version, proteoform_limit) VALUES (?, ?, ?, ?, ?)`,
		runID, info.Started.Format(time.RFC3339), info.Input, info.ToolVersion, result.Limit,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	protStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO proteins (run_id, protein, position, total_sites, total_distinct_glycans, total_combinations, generated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer protStmt.Close()

	formStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO proteoforms (run_id, protein, idx, proteoform_id, glycosylation_sites) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer formStmt.Close()

	for pos, p := range result.Proteins {
		sum := p.Summary
		if _, err := protStmt.ExecContext(ctx, runID, sum.ProteinID, pos, sum.TotalSites,
			sum.TotalDistinctGlycans, sum.TrueTotal.String(), sum.GeneratedCount); err != nil {
			return fmt.Errorf("failed to insert protein %s: %w", sum.ProteinID, err)
		}
		err := p.Proteoforms(func(pf model.ProteoformAssignment) error {
			if _, err := formStmt.ExecContext(ctx, runID, sum.ProteinID, pf.Index, pf.ID(), output.FormatSites(pf)); err != nil {
				return fmt.Errorf("failed to insert proteoform %s: %w", pf.ID(), err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, f := range result.Failures {
		var protein, row any
		if f.ProteinID != "" {
			protein = f.ProteinID
		}
		if f.Row > 0 {
			row = f.Row
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, protein, input_row, reason) VALUES (?, ?, ?, ?)`,
			runID, protein, row, f.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}
