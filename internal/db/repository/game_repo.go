package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martyfest/party-platform/internal/game"
	"github.com/martyfest/party-platform/internal/match"
)

// ErrGameFull is returned when a join would exceed max_participants.
var ErrGameFull = errors.New("game is full")

// GameRepository is the Postgres-backed game session store. It satisfies
// match.GameStore and owns the concurrency control the matchmaker
// expects: participant counts are bumped with a guarded atomic update.
type GameRepository struct {
	pool *pgxpool.Pool
}

var _ match.GameStore = (*GameRepository)(nil)

// NewGameRepository constructs a game repository over a pgx pool.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

const gameColumns = `game_id, title, status, allowed_levels, participants,
	participant_count, max_participants, current_question_index, created_by, created_at`

// ListActiveGames returns a snapshot of every active session in creation
// order, which the matchmaker relies on for stable tie-breaking.
func (r *GameRepository) ListActiveGames(ctx context.Context) ([]game.GameSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status = $1 ORDER BY created_at`,
		game.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("query active games: %w", err)
	}
	defer rows.Close()

	var sessions []game.GameSession
	for rows.Next() {
		session, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// CreateGame inserts a new session and returns its generated id.
func (r *GameRepository) CreateGame(ctx context.Context, spec match.CreateGameSpec) (uuid.UUID, error) {
	levels := make([]int32, len(spec.AllowedLevels))
	for i, l := range spec.AllowedLevels {
		levels[i] = int32(l)
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO games (title, status, allowed_levels, participants, participant_count,
			max_participants, current_question_index, created_by)
		VALUES ($1, $2, $3, '[]'::jsonb, 0, $4, $5, $6)
		RETURNING game_id`,
		spec.Title, spec.Status, levels, spec.MaxParticipants,
		spec.CurrentQuestionIndex, spec.CreatedBy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

// GetGameByID fetches a single session; (nil, nil) when absent.
func (r *GameRepository) GetGameByID(ctx context.Context, id uuid.UUID) (*game.GameSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE game_id = $1`, id)
	session, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AddParticipant appends a player to the roster and bumps the counter in
// one guarded update, so two concurrent joins can never double-book the
// last slot. Returns ErrGameFull when the session is at capacity.
func (r *GameRepository) AddParticipant(ctx context.Context, gameID uuid.UUID, p game.Participant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	entry, err := json.Marshal([]game.Participant{p})
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE games
		SET participants = participants || $2::jsonb,
			participant_count = participant_count + 1
		WHERE game_id = $1 AND participant_count < max_participants`,
		gameID, entry)
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameFull
	}
	return nil
}

// UpdateStatus transitions a session's lifecycle state.
func (r *GameRepository) UpdateStatus(ctx context.Context, gameID uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE games SET status = $2 WHERE game_id = $1`, gameID, status)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return nil
}

// pgx rows and single rows share this scan surface.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*game.GameSession, error) {
	var (
		s               game.GameSession
		levels          []int32
		participantsRaw []byte
	)
	err := row.Scan(
		&s.ID, &s.Title, &s.Status, &levels, &participantsRaw,
		&s.ParticipantCount, &s.MaxParticipants, &s.CurrentQuestionIndex,
		&s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.AllowedLevels = make([]game.Level, len(levels))
	for i, l := range levels {
		s.AllowedLevels[i] = game.Level(l)
	}
	if len(participantsRaw) > 0 {
		if err := json.Unmarshal(participantsRaw, &s.Participants); err != nil {
			return nil, fmt.Errorf("unmarshal participants: %w", err)
		}
	}
	return &s, nil
}
