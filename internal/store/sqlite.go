package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS knowledge_triples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	confidence REAL NOT NULL,
	source TEXT NOT NULL,
	context TEXT,
	timestamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_experiences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id TEXT NOT NULL,
	prediction TEXT NOT NULL,
	actual_outcome TEXT NOT NULL,
	accuracy_score REAL,
	situation_context TEXT,
	timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_learning_experiences_investor ON learning_experiences(investor_id, id);
`

// SQLiteStore is the default append-only log, one file on local disk.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers and keeps AUTOINCREMENT ids in append order.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) AppendTriple(ctx context.Context, t *domain.Triple) error {
	ctxJSON, err := json.Marshal(t.Context)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_triples (subject, predicate, object, confidence, source, context, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Subject, t.Predicate, t.Object, t.Confidence, t.Source, string(ctxJSON), formatTime(t.Timestamp),
	)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) ListTriples(ctx context.Context) ([]domain.Triple, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, predicate, object, confidence, source, context, timestamp
		 FROM knowledge_triples ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triples []domain.Triple
	for rows.Next() {
		var (
			t       domain.Triple
			ctxJSON sql.NullString
			ts      string
		)
		if err := rows.Scan(&t.ID, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &ctxJSON, &ts); err != nil {
			return nil, err
		}
		t.Context = decodeContext(ctxJSON.String)
		t.Timestamp = parseTime(ts)
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

func (s *SQLiteStore) CountTriples(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_triples`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) AppendExperience(ctx context.Context, e *domain.Experience) error {
	ctxJSON, err := json.Marshal(e.Context)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO learning_experiences (investor_id, prediction, actual_outcome, accuracy_score, situation_context, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ActorID, string(e.Prediction), e.ActualOutcome, e.Accuracy, string(ctxJSON), formatTime(e.Timestamp),
	)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) ListExperiences(ctx context.Context, actorID string, limit int) ([]domain.Experience, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, investor_id, prediction, actual_outcome, accuracy_score, situation_context, timestamp
		 FROM learning_experiences`
	args := []any{}
	if actorID != "" {
		query += ` WHERE investor_id = ?`
		args = append(args, actorID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Experience
	for rows.Next() {
		var (
			e          domain.Experience
			prediction string
			accuracy   sql.NullFloat64
			ctxJSON    sql.NullString
			ts         string
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &prediction, &e.ActualOutcome, &accuracy, &ctxJSON, &ts); err != nil {
			return nil, err
		}
		e.Prediction = domain.Action(prediction)
		e.Accuracy = accuracy.Float64
		e.Context = decodeContext(ctxJSON.String)
		e.Timestamp = parseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountExperiences(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_experiences`).Scan(&n)
	return n, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
