package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"msacli/pkg/contracts/domain"
)

// ErrRunNotFound is returned when a run id has no stored record.
var ErrRunNotFound = errors.New("run not found")

// HistoryStore persists completed analysis runs in SQLite so share
// figures can be compared across periods.
type HistoryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	analyzer     TEXT NOT NULL,
	source_file  TEXT NOT NULL,
	sheet        TEXT NOT NULL,
	region       TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	results      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_analyzer ON runs(analyzer, completed_at);
`

// Open opens (or creates) the history database and applies the
// schema. The WAL journal keeps readers unblocked during writes.
func Open(path string, logger *slog.Logger) (*HistoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous pragma: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("history database opened", slog.String("path", path))
	return &HistoryStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// SaveRun stores a completed run with its full result payload.
func (s *HistoryStore) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	payload, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, analyzer, source_file, sheet, region, started_at, completed_at, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Analyzer, run.SourceFile, run.Sheet, run.Region,
		run.StartedAt.UTC(), run.CompletedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	s.logger.DebugContext(ctx, "run saved",
		slog.String("run_id", run.ID),
		slog.String("analyzer", run.Analyzer))
	return nil
}

// GetRun loads one run by id.
func (s *HistoryStore) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, analyzer, source_file, sheet, region, started_at, completed_at, results
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns everything.
func (s *HistoryStore) ListRuns(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	query := `SELECT id, analyzer, source_file, sheet, region, started_at, completed_at, results
		 FROM runs ORDER BY completed_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// TrendPoint is one historical share observation for a brand.
type TrendPoint struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
	Share       float64   `json:"share"`
}

// Trend extracts a brand's share over time for one analyzer, oldest
// first. Runs where the analyzer produced no ranking for the brand
// are skipped.
func (s *HistoryStore) Trend(ctx context.Context, analyzer, brand string) ([]TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, completed_at, results FROM runs
		 WHERE analyzer = ? OR analyzer = ?
		 ORDER BY completed_at ASC`,
		analyzer, "Consolidated")
	if err != nil {
		return nil, fmt.Errorf("failed to query trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var (
			id          string
			completedAt time.Time
			payload     string
		)
		if err := rows.Scan(&id, &completedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}

		var results []*domain.AnalysisResult
		if err := json.Unmarshal([]byte(payload), &results); err != nil {
			return nil, fmt.Errorf("failed to decode results for run %s: %w", id, err)
		}

		for _, result := range results {
			if result.Analyzer != analyzer {
				continue
			}
			if share, ok := result.SharePercent(brand); ok {
				points = append(points, TrendPoint{RunID: id, CompletedAt: completedAt, Share: share})
			}
		}
	}
	return points, rows.Err()
}

// Prune deletes the oldest runs beyond the retention limit. Returns
// the number of deleted rows.
func (s *HistoryStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY completed_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.InfoContext(ctx, "run history pruned",
			slog.Int64("deleted", deleted),
			slog.Int("kept", keep))
	}
	return deleted, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*domain.AnalysisRun, error) {
	var (
		run     domain.AnalysisRun
		payload string
	)
	if err := row.Scan(&run.ID, &run.Analyzer, &run.SourceFile, &run.Sheet, &run.Region,
		&run.StartedAt, &run.CompletedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &run.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results for run %s: %w", run.ID, err)
	}
	return &run, nil
}
