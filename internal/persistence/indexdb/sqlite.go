package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cityanalysis/internal/aggregate"
)

const schemaVersion = "1"

// SQLiteIndex keeps a history of report runs and their rankings so past
// results can be compared without re-reading old snapshots.
type SQLiteIndex struct {
	db *sql.DB
}

// Run is one recorded report run.
type Run struct {
	ID        int64
	Source    string
	Era       string
	CreatedAt time.Time
	Buckets   int
}

// Ranking is one ranked building of a run.
type Ranking struct {
	Kit           string
	Rank          int
	BuildingID    string
	BuildingName  string
	SizeLabel     string
	Street        int
	HasStreet     bool
	Efficiency    float64
	HasEfficiency bool
	Expected      float64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			era TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rankings (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kit TEXT NOT NULL,
			rank INTEGER NOT NULL,
			building_id TEXT NOT NULL,
			building_name TEXT NOT NULL,
			size_label TEXT NOT NULL,
			street INTEGER,
			efficiency REAL,
			expected REAL NOT NULL,
			PRIMARY KEY (run_id, kit, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_building ON rankings(building_id, kit);`,
		`INSERT OR IGNORE INTO meta(key, value) VALUES('schema_version', '` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores a run and every ranked bucket in one transaction.
func (s *SQLiteIndex) RecordRun(ctx context.Context, source, era string, at time.Time, rep aggregate.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(source, era, created_at) VALUES(?,?,?)`,
		source, era, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rankings(
		run_id, kit, rank, building_id, building_name, size_label, street, efficiency, expected
	) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, k := range rep.Kits {
		for i, b := range k.Buckets {
			street := sql.NullInt64{Int64: int64(b.Street), Valid: b.HasStreet}
			eff := sql.NullFloat64{Float64: b.Efficiency, Valid: b.HasEfficiency}
			if _, err := stmt.ExecContext(ctx, runID, k.Kit.SubType, i+1,
				b.ID, b.Name, b.SizeLabel, street, eff, b.Expected); err != nil {
				return 0, fmt.Errorf("insert ranking %s #%d: %w", k.Kit.SubType, i+1, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns the newest runs first. limit <= 0 means all.
func (s *SQLiteIndex) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT r.id, r.source, r.era, r.created_at, COUNT(k.run_id)
		FROM runs r LEFT JOIN rankings k ON k.run_id = r.id
		GROUP BY r.id ORDER BY r.id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r  Run
			at string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Era, &at, &r.Buckets); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rankings returns a run's ranking for one kit, best first.
func (s *SQLiteIndex) Rankings(ctx context.Context, runID int64, kit string) ([]Ranking, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kit, rank, building_id, building_name, size_label, street, efficiency, expected
		FROM rankings WHERE run_id = ? AND kit = ? ORDER BY rank`, runID, kit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ranking
	for rows.Next() {
		var (
			r      Ranking
			street sql.NullInt64
			eff    sql.NullFloat64
		)
		if err := rows.Scan(&r.Kit, &r.Rank, &r.BuildingID, &r.BuildingName, &r.SizeLabel, &street, &eff, &r.Expected); err != nil {
			return nil, err
		}
		r.Street, r.HasStreet = int(street.Int64), street.Valid
		r.Efficiency, r.HasEfficiency = eff.Float64, eff.Valid
		out = append(out, r)
	}
	return out, rows.Err()
}
