// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ngx-platform/genesis/pkg/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists coordination records in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and ensures the
// schema. Use ":memory:" for tests.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an existing database handle and ensures the
// schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, rec Record) error {
	agents, err := json.Marshal(rec.ParticipatingAgents)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(rec.UnifiedRecommendations)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coordination_records (
			run_id, query, complexity, collaboration, agents_json,
			consensus_level, recommendations_json, execution_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Query,
		string(rec.Complexity),
		string(rec.Collaboration),
		string(agents),
		rec.ConsensusLevel,
		string(recs),
		rec.ExecutionTime.Milliseconds(),
		createdAt,
	)
	return err
}

// List implements Store. Records come back oldest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT run_id, query, complexity, collaboration, agents_json,
			consensus_level, recommendations_json, execution_time_ms, created_at
		FROM coordination_records
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.RunID != "" {
		addFilter("run_id = ?", filter.RunID)
	}
	if filter.Complexity != "" {
		addFilter("complexity = ?", string(filter.Complexity))
	}
	if filter.Collaboration != "" {
		addFilter("collaboration = ?", string(filter.Collaboration))
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			complexity  string
			collab      string
			agentsJSON  string
			recsJSON    string
			executionMs int64
			created     sql.NullTime
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Query,
			&complexity,
			&collab,
			&agentsJSON,
			&rec.ConsensusLevel,
			&recsJSON,
			&executionMs,
			&created,
		); err != nil {
			return nil, err
		}
		rec.Complexity = core.ComplexityTier(complexity)
		rec.Collaboration = core.CollaborationType(collab)
		if agentsJSON != "" {
			_ = json.Unmarshal([]byte(agentsJSON), &rec.ParticipatingAgents)
		}
		if recsJSON != "" {
			_ = json.Unmarshal([]byte(recsJSON), &rec.UnifiedRecommendations)
		}
		rec.ExecutionTime = time.Duration(executionMs) * time.Millisecond
		if created.Valid {
			rec.CreatedAt = created.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS coordination_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			query TEXT NOT NULL,
			complexity TEXT NOT NULL,
			collaboration TEXT NOT NULL,
			agents_json TEXT,
			consensus_level REAL NOT NULL,
			recommendations_json TEXT,
			execution_time_ms INTEGER,
			created_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_coordination_run ON coordination_records(run_id);
		CREATE INDEX IF NOT EXISTS idx_coordination_complexity ON coordination_records(complexity);
		CREATE INDEX IF NOT EXISTS idx_coordination_collaboration ON coordination_records(collaboration);
	`)
	return err
}
