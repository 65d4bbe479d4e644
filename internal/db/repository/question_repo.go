package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martyfest/party-platform/internal/game"
)

// QuestionRepository reads the curated trivia question catalog. Content
// authoring happens out of band; this surface is read-only plus a
// loader-style insert for seeding.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `question_id, text, type, level, point_value,
	time_limit_seconds, options, correct_answer, hint_penalty`

// GetByID fetches a single question; (nil, nil) when absent.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*game.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question_id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByLevel returns every question for a difficulty level.
func (r *QuestionRepository) ListByLevel(ctx context.Context, level game.Level) ([]game.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE level = $1 ORDER BY question_id`,
		int32(level))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []game.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// Insert stores a question (seeding / admin tooling path).
func (r *QuestionRepository) Insert(ctx context.Context, q game.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO questions (question_id, text, type, level, point_value,
			time_limit_seconds, options, correct_answer, hint_penalty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.Text, q.Type, int32(q.Level), q.PointValue,
		q.TimeLimitSeconds, options, q.CorrectAnswer, q.HintPenalty)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func scanQuestion(row rowScanner) (*game.Question, error) {
	var (
		q          game.Question
		level      int32
		optionsRaw []byte
	)
	err := row.Scan(
		&q.ID, &q.Text, &q.Type, &level, &q.PointValue,
		&q.TimeLimitSeconds, &optionsRaw, &q.CorrectAnswer, &q.HintPenalty,
	)
	if err != nil {
		return nil, err
	}
	q.Level = game.Level(level)
	if len(optionsRaw) > 0 {
		if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	return &q, nil
}
