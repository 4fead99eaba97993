package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

func (s *PostgresStore) AppendExperience(ctx context.Context, e *domain.Experience) error {
	ctxJSON, err := json.Marshal(e.Context)
	if err != nil {
		return err
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO learning_experiences (investor_id, prediction, actual_outcome, accuracy_score, situation_context, timestamp)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		 RETURNING id`,
		e.ActorID, string(e.Prediction), e.ActualOutcome, e.Accuracy, ctxJSON, nullTime(e.Timestamp),
	).Scan(&e.ID)
}

func (s *PostgresStore) ListExperiences(ctx context.Context, actorID string, limit int) ([]domain.Experience, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, investor_id, prediction, actual_outcome, COALESCE(accuracy_score, 0), situation_context, timestamp
		 FROM learning_experiences
		 WHERE $1 = '' OR investor_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		actorID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Experience
	for rows.Next() {
		var (
			e          domain.Experience
			prediction string
			ctxJSON    []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &prediction, &e.ActualOutcome, &e.Accuracy, &ctxJSON, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Prediction = domain.Action(prediction)
		e.Context = decodeContext(string(ctxJSON))
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountExperiences(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM learning_experiences`).Scan(&n)
	return n, err
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
