package store

import (
	"context"
	"encoding/json"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

func (s *PostgresStore) AppendTriple(ctx context.Context, t *domain.Triple) error {
	ctxJSON, err := json.Marshal(t.Context)
	if err != nil {
		return err
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO knowledge_triples (subject, predicate, object, confidence, source, context, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 RETURNING id`,
		t.Subject, t.Predicate, t.Object, t.Confidence, t.Source, ctxJSON, nullTime(t.Timestamp),
	).Scan(&t.ID)
}

func (s *PostgresStore) ListTriples(ctx context.Context) ([]domain.Triple, error) {
	rows, err := s.db.Query(ctx,
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
			ctxJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &ctxJSON, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Context = decodeContext(string(ctxJSON))
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

func (s *PostgresStore) CountTriples(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_triples`).Scan(&n)
	return n, err
}
