package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/martyfest/party-platform/internal/game"
)

// Config holds configurable scoring constants (defaults match requirements).
type Config struct {
	TimeBonusFraction float64 // default: 0.20 (max 20% bonus at full time remaining)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TimeBonusFraction: 0.20,
	}
}

// Engine computes server-side answer verdicts and scores. All methods
// are pure: no I/O, no mutation of the question or any store.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	if config.TimeBonusFraction <= 0 {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// CheckAnswer decides correctness for a submission. Malformed or missing
// input never raises an error; it resolves to incorrect.
//   - write-in: trimmed, case-insensitive exact match against the
//     question's correct-answer string; false if either side is empty
//   - multiple-choice / true-false: the correctness flag of the option
//     whose id matches the selection; false if nothing matches
func (e *Engine) CheckAnswer(q game.Question, selectedOptionID, writtenAnswer string) bool {
	switch q.Type {
	case game.TypeWriteIn:
		if q.CorrectAnswer == "" || writtenAnswer == "" {
			return false
		}
		got := strings.ToLower(strings.TrimSpace(writtenAnswer))
		want := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		return got != "" && got == want
	case game.TypeMultipleChoice, game.TypeTrueFalse:
		if selectedOptionID == "" {
			return false
		}
		for _, opt := range q.Options {
			if opt.ID == selectedOptionID {
				return opt.IsCorrect
			}
		}
		return false
	default:
		return false
	}
}

// CalculatePoints computes points for a correct answer.
// Formula: base + time_bonus - hint_penalty, clamped at zero.
//   - time_bonus: floor(base * fraction * timeRemaining/timeLimit); the
//     ratio is deliberately not clamped above 1, callers own the bound
//   - hint_penalty: the question's fixed deduction, only when a hint was used
func (e *Engine) CalculatePoints(q game.Question, timeRemaining int, usedHint bool) int {
	base := q.PointValue

	timeBonus := 0
	if q.TimeLimitSeconds > 0 {
		timeRatio := float64(timeRemaining) / float64(q.TimeLimitSeconds)
		timeBonus = int(float64(base) * e.config.TimeBonusFraction * timeRatio)
	}

	hintPenalty := 0
	if usedHint {
		hintPenalty = q.HintPenalty
	}

	points := base + timeBonus - hintPenalty
	if points < 0 {
		points = 0
	}
	return points
}

// ProcessAnswer produces the complete answer record for a submission.
// Incorrect answers earn exactly zero regardless of time or hint usage.
func (e *Engine) ProcessAnswer(q game.Question, selectedOptionID, writtenAnswer string, timeRemaining int, usedHint bool) game.PlayerAnswer {
	isCorrect := e.CheckAnswer(q, selectedOptionID, writtenAnswer)

	points := 0
	if isCorrect {
		points = e.CalculatePoints(q, timeRemaining, usedHint)
	}

	return game.PlayerAnswer{
		QuestionID:       q.ID,
		SelectedOptionID: selectedOptionID,
		WrittenAnswer:    writtenAnswer,
		UsedHint:         usedHint,
		TimeRemaining:    timeRemaining,
		IsCorrect:        isCorrect,
		PointsEarned:     points,
		AnsweredAt:       time.Now().UTC(),
	}
}

// TotalScore sums points earned across a sequence of answers.
func TotalScore(answers []game.PlayerAnswer) int {
	total := 0
	for _, ans := range answers {
		total += ans.PointsEarned
	}
	return total
}

// SuccessRate returns the rounded percentage of correct answers, 0-100.
// Empty input yields 0.
func SuccessRate(answers []game.PlayerAnswer) int {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, ans := range answers {
		if ans.IsCorrect {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(answers)) * 100))
}

// FormatTime renders seconds as a zero-padded "MM:SS" clock string.
// Negative input is clamped to zero.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
