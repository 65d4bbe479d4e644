package game

import (
	"time"

	"github.com/google/uuid"
)

// Question type constants.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeWriteIn        = "write-in"
)

// GameSession lifecycle states. Transitions are owned by the store; the
// matchmaker and scoring code only ever read Status.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Level is the difficulty track a player opts into (1-3).
type Level int

const (
	LevelEasy   Level = 1
	LevelMedium Level = 2
	LevelHard   Level = 3
)

// AnswerOption is one selectable choice on a multiple-choice or
// true-false question.
type AnswerOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is an immutable trivia question definition. Authored out of
// band and read-only at runtime.
type Question struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	Type             string         `json:"type"`
	Level            Level          `json:"level"`
	PointValue       int            `json:"point_value"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	Options          []AnswerOption `json:"options,omitempty"`
	CorrectAnswer    string         `json:"correct_answer,omitempty"` // write-in only
	HintPenalty      int            `json:"hint_penalty"`
}

// PlayerAnswer records a single submission. Created exactly once per
// question per player and never mutated afterwards.
type PlayerAnswer struct {
	QuestionID       string    `json:"question_id"`
	SelectedOptionID string    `json:"selected_option_id,omitempty"`
	WrittenAnswer    string    `json:"written_answer,omitempty"`
	UsedHint         bool      `json:"used_hint"`
	TimeRemaining    int       `json:"time_remaining"`
	IsCorrect        bool      `json:"is_correct"`
	PointsEarned     int       `json:"points_earned"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// Participant is a player inside a game session roster.
type Participant struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a shared trivia-playing context. The Postgres store is
// the source of truth; ParticipantCount is a store-maintained counter
// and may be read without loading the full roster.
type GameSession struct {
	ID                   uuid.UUID     `json:"id"`
	Title                string        `json:"title"`
	Status               string        `json:"status"`
	AllowedLevels        []Level       `json:"allowed_levels"`
	Participants         []Participant `json:"participants"`
	ParticipantCount     int           `json:"participant_count"`
	MaxParticipants      int           `json:"max_participants"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	CreatedBy            uuid.UUID     `json:"created_by"`
	CreatedAt            time.Time     `json:"created_at"`
}

// HasParticipant reports whether the player already appears in the
// session roster.
func (g *GameSession) HasParticipant(playerID uuid.UUID) bool {
	for _, p := range g.Participants {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
