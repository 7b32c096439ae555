// Package sqlite stores indicator runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDGen
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, errors.Join(err, internalerr.ErrStoreUnavailable))
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", errors.Join(err, internalerr.ErrStoreUnavailable))
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db, ids: store.NewIDGen()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	config TEXT,
	observations INTEGER NOT NULL,
	items INTEGER NOT NULL,
	pairs INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	label TEXT NOT NULL,
	marginal REAL NOT NULL,
	PRIMARY KEY(run_id, idx),
	UNIQUE(run_id, label),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_pairs (
	run_id TEXT NOT NULL,
	a INTEGER NOT NULL,
	b INTEGER NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, a, b),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS run_pairs_b ON run_pairs(run_id, b);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores run metadata, item labels and the upper triangle of the
// score matrix in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) (string, error) {
	if r.Scores == nil {
		return "", fmt.Errorf("run has no scores: %w", internalerr.ErrInvalidInput)
	}
	n, c := r.Scores.Dims()
	if n != c || n != len(r.Items) || (r.Marginals != nil && len(r.Marginals) != n) {
		return "", fmt.Errorf("run has %dx%d scores for %d items: %w", n, c, len(r.Items), internalerr.ErrInvalidInput)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.ID == "" {
		r.ID = s.ids.New(r.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, config, observations, items, pairs)
VALUES (?, ?, ?, ?, ?, ?);
`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Config, r.Rows, n, store.Pairs(r.Scores)); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_items (run_id, idx, label, marginal) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer itemStmt.Close()
	for i, label := range r.Items {
		var marginal float64
		if r.Marginals != nil {
			marginal = r.Marginals[i]
		}
		if _, err := itemStmt.ExecContext(ctx, r.ID, i, label, marginal); err != nil {
			return "", fmt.Errorf("insert item %q: %w", label, err)
		}
	}

	pairStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_pairs (run_id, a, b, score) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer pairStmt.Close()
	var pairErr error
	r.Scores.DoNonZero(func(i, j int, v float64) {
		if pairErr != nil || i >= j {
			return
		}
		if _, err := pairStmt.ExecContext(ctx, r.ID, i, j, v); err != nil {
			pairErr = fmt.Errorf("insert pair (%d,%d): %w", i, j, err)
		}
	})
	if pairErr != nil {
		return "", pairErr
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRun retrieves run metadata by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, config, observations, items, pairs FROM runs WHERE id = ?;
`, id)
	info, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.RunInfo{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return info, err
}

// ListRuns returns every run, newest first
func (s *sqliteStore) ListRuns(ctx context.Context) ([]store.RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, config, observations, items, pairs FROM runs ORDER BY id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.RunInfo, error) {
	var (
		info    store.RunInfo
		created string
		config  sql.NullString
	)
	if err := sc.Scan(&info.ID, &created, &config, &info.Rows, &info.Items, &info.Pairs); err != nil {
		return store.RunInfo{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.RunInfo{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	info.CreatedAt = t
	info.Config = config.String
	return info, nil
}

// TopNeighbors returns the strongest positive indicators of item
func (s *sqliteStore) TopNeighbors(ctx context.Context, runID, item string, k int) ([]store.Neighbor, error) {
	if k <= 0 {
		k = store.DefaultNeighbors
	}

	idx, err := s.itemIndex(ctx, runID, item)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT ri.label, p.score
FROM (
	SELECT b AS other, score FROM run_pairs WHERE run_id = ? AND a = ?
	UNION ALL
	SELECT a AS other, score FROM run_pairs WHERE run_id = ? AND b = ?
) p
JOIN run_items ri ON ri.run_id = ? AND ri.idx = p.other
WHERE p.score > 0
ORDER BY p.score DESC, ri.idx ASC
LIMIT ?;
`, runID, idx, runID, idx, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var neighbors []store.Neighbor
	for rows.Next() {
		var n store.Neighbor
		if err := rows.Scan(&n.Item, &n.Score); err != nil {
			return nil, err
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, rows.Err()
}

// Score returns the stored score of the pair (a, b)
func (s *sqliteStore) Score(ctx context.Context, runID, a, b string) (float64, bool, error) {
	ia, err := s.itemIndex(ctx, runID, a)
	if err != nil {
		return 0, false, err
	}
	ib, err := s.itemIndex(ctx, runID, b)
	if err != nil {
		return 0, false, err
	}
	if ia > ib {
		ia, ib = ib, ia
	}

	var score float64
	err = s.db.QueryRowContext(ctx, `
SELECT score FROM run_pairs WHERE run_id = ? AND a = ? AND b = ?;
`, runID, ia, ib).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (s *sqliteStore) itemIndex(ctx context.Context, runID, label string) (int, error) {
	var idx int
	err := s.db.QueryRowContext(ctx, `
SELECT idx FROM run_items WHERE run_id = ? AND label = ?;
`, runID, label).Scan(&idx)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("item %q in run %s: %w", label, runID, internalerr.ErrNotFound)
	}
	return idx, err
}
