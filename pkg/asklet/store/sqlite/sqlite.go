package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/store"
)

// sqliteStore implements the Domain interface using SQLite
type sqliteStore struct {
	db    *sql.DB
	ids   *store.IDGen
	scale belief.Scale
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
// An optional belief.Scale bounds normalized weights;
// if omitted, belief.DefaultScale is used.
func OpenSQLite(ctx context.Context, path string, scale ...belief.Scale) (store.Domain, error) {
	s := belief.DefaultScale
	if len(scale) > 0 {
		s = scale[0]
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:    db,
		ids:   store.NewIDGen(),
		scale: s,
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS targets (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	text TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	text TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS weights (
	target_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	sum REAL NOT NULL DEFAULT 0,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(target_id, question_id),
	FOREIGN KEY(target_id) REFERENCES targets(id) ON DELETE CASCADE,
	FOREIGN KEY(question_id) REFERENCES questions(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CountTargets returns the number of targets in the domain
func (s *sqliteStore) CountTargets(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM targets`).Scan(&total)
	return total, err
}

// Targets returns every target ordered by slug
func (s *sqliteStore) Targets(ctx context.Context) ([]store.Target, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, text FROM targets ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Target
	for rows.Next() {
		var t store.Target
		if err := rows.Scan(&t.ID, &t.Slug, &t.Text); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Questions returns every question ordered by slug
func (s *sqliteStore) Questions(ctx context.Context) ([]store.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, text FROM questions ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Question
	for rows.Next() {
		var q store.Question
		if err := rows.Scan(&q.ID, &q.Slug, &q.Text); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// TargetBySlug retrieves a target by slug
func (s *sqliteStore) TargetBySlug(ctx context.Context, slug string) (store.Target, bool, error) {
	var t store.Target
	err := s.db.QueryRowContext(ctx, `SELECT id, slug, text FROM targets WHERE slug = ?`, slug).Scan(&t.ID, &t.Slug, &t.Text)
	if err == sql.ErrNoRows {
		return store.Target{}, false, nil
	}
	if err != nil {
		return store.Target{}, false, err
	}
	return t, true, nil
}

// QuestionBySlug retrieves a question by slug
func (s *sqliteStore) QuestionBySlug(ctx context.Context, slug string) (store.Question, bool, error) {
	var q store.Question
	err := s.db.QueryRowContext(ctx, `SELECT id, slug, text FROM questions WHERE slug = ?`, slug).Scan(&q.ID, &q.Slug, &q.Text)
	if err == sql.ErrNoRows {
		return store.Question{}, false, nil
	}
	if err != nil {
		return store.Question{}, false, err
	}
	return q, true, nil
}

// UpsertTarget inserts a target or updates its text, keyed by slug
func (s *sqliteStore) UpsertTarget(ctx context.Context, slug, text string) (store.Target, error) {
	if slug == "" {
		return store.Target{}, fmt.Errorf("%w: empty target slug", internalerr.ErrInvalidInput)
	}

	const stmt = `
INSERT INTO targets (id, slug, text)
VALUES (?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
	text=excluded.text
RETURNING id;
`
	t := store.Target{Slug: slug, Text: text}
	if err := s.db.QueryRowContext(ctx, stmt, s.ids.New(), slug, text).Scan(&t.ID); err != nil {
		return store.Target{}, err
	}
	return t, nil
}

// UpsertQuestion inserts a question or updates its text, keyed by slug
func (s *sqliteStore) UpsertQuestion(ctx context.Context, slug, text string) (store.Question, error) {
	if slug == "" {
		return store.Question{}, fmt.Errorf("%w: empty question slug", internalerr.ErrInvalidInput)
	}

	const stmt = `
INSERT INTO questions (id, slug, text)
VALUES (?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
	text=excluded.text
RETURNING id;
`
	q := store.Question{Slug: slug, Text: text}
	if err := s.db.QueryRowContext(ctx, stmt, s.ids.New(), slug, text).Scan(&q.ID); err != nil {
		return store.Question{}, err
	}
	return q, nil
}

// RecordAnswer adds one answer to the running weight of a pair
func (s *sqliteStore) RecordAnswer(ctx context.Context, targetID, questionID string, weight float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRow(ctx, tx, `SELECT 1 FROM targets WHERE id = ?`, targetID); err != nil {
		return fmt.Errorf("target id %q: %w", targetID, err)
	}
	if err := requireRow(ctx, tx, `SELECT 1 FROM questions WHERE id = ?`, questionID); err != nil {
		return fmt.Errorf("question id %q: %w", questionID, err)
	}

	const stmt = `
INSERT INTO weights (target_id, question_id, sum, count)
VALUES (?, ?, ?, 1)
ON CONFLICT(target_id, question_id) DO UPDATE SET
	sum=weights.sum + excluded.sum,
	count=weights.count + 1;
`
	if _, err := tx.ExecContext(ctx, stmt, targetID, questionID, weight); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRow(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) error {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return internalerr.ErrNotFound
	}
	return err
}

// GetWeight returns the raw accumulated weight of a pair
func (s *sqliteStore) GetWeight(ctx context.Context, targetID, questionID string) (store.Weight, bool, error) {
	var w store.Weight
	err := s.db.QueryRowContext(ctx, `
SELECT sum, count
FROM weights
WHERE target_id = ? AND question_id = ?;
`, targetID, questionID).Scan(&w.Sum, &w.Count)
	if err == sql.ErrNoRows {
		return store.Weight{}, false, nil
	}
	if err != nil {
		return store.Weight{}, false, err
	}
	return w, true, nil
}

// NormalizedWeight returns the mean recorded answer on the store's scale
func (s *sqliteStore) NormalizedWeight(ctx context.Context, targetID, questionID string) (float64, bool, error) {
	w, ok, err := s.GetWeight(ctx, targetID, questionID)
	if err != nil || !ok {
		return 0, false, err
	}
	n, ok := w.Normalized(s.scale)
	return n, ok, nil
}
