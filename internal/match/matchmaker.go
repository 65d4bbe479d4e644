package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/martyfest/party-platform/internal/game"
)

// ErrGameCreationFailed is returned when a freshly created session
// cannot be fetched back from the store.
var ErrGameCreationFailed = errors.New("failed to create game")

// GameStore is the data-access boundary the matchmaker depends on. The
// store owns session lifecycle and all concurrency control over
// participant counts; the matchmaker only reads snapshots and requests
// creation. GetGameByID returns (nil, nil) when no session exists.
type GameStore interface {
	ListActiveGames(ctx context.Context) ([]game.GameSession, error)
	CreateGame(ctx context.Context, spec CreateGameSpec) (uuid.UUID, error)
	GetGameByID(ctx context.Context, id uuid.UUID) (*game.GameSession, error)
}

// Candidate scoring weights. Additive, no normalization; a session must
// score above zero to be matched at all.
const (
	scoreFullLevelMatch = 50   // every session level inside the requested set
	scoreHealthyFill    = 30   // fill ratio strictly between 0.2 and 0.8
	scoreActiveStatus   = 20   // session status is active
	scoreAlreadyJoined  = -100 // requesting player already in the roster
)

// Matchmaker places a player into the best open session or requests a
// new balanced one. It holds no state of its own; data-access failures
// propagate to the caller unretried.
type Matchmaker struct {
	store  GameStore
	logger zerolog.Logger
}

// NewMatchmaker creates a matchmaker over the given store.
func NewMatchmaker(store GameStore, logger zerolog.Logger) *Matchmaker {
	return &Matchmaker{
		store:  store,
		logger: logger.With().Str("component", "matchmaker").Logger(),
	}
}

// GetOrCreateGame returns the best-scoring eligible active session, or
// creates a new one when nothing scores above zero. Calls to the store
// are issued sequentially: list, then optionally create + refetch.
func (m *Matchmaker) GetOrCreateGame(ctx context.Context, opts Options) (*game.GameSession, error) {
	sessions, err := m.store.ListActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}

	if best := m.bestMatch(sessions, opts); best != nil {
		gamesMatched.Inc()
		m.logger.Info().
			Str("game_id", best.ID.String()).
			Str("player_id", opts.PlayerID.String()).
			Msg("matched player to existing game")
		return best, nil
	}

	return m.createGame(ctx, opts)
}

// bestMatch scores every session whose allowed levels intersect the
// request and returns the winner, or nil when no candidate scores above
// zero. Ties go to the first-encountered session in fetch order.
func (m *Matchmaker) bestMatch(sessions []game.GameSession, opts Options) *game.GameSession {
	var best *game.GameSession
	bestScore := 0

	for i := range sessions {
		s := &sessions[i]
		if !levelsIntersect(s.AllowedLevels, opts.SelectedLevels) {
			continue
		}
		score := scoreCandidate(s, opts)
		if best == nil || score > bestScore {
			best = s
			bestScore = score
		}
	}

	if best == nil || bestScore <= 0 {
		return nil
	}
	return best
}

// scoreCandidate applies the additive weights. The full-containment
// bonus is intentionally stricter than the intersection filter.
func scoreCandidate(s *game.GameSession, opts Options) int {
	score := 0

	if levelsContained(s.AllowedLevels, opts.SelectedLevels) {
		score += scoreFullLevelMatch
	}

	maxParticipants := s.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = DefaultMaxParticipants
	}
	fillRatio := float64(s.ParticipantCount) / float64(maxParticipants)
	if fillRatio > 0.2 && fillRatio < 0.8 {
		score += scoreHealthyFill
	}

	if s.Status == game.StatusActive {
		score += scoreActiveStatus
	}

	if s.HasParticipant(opts.PlayerID) {
		score += scoreAlreadyJoined
	}

	return score
}

func (m *Matchmaker) createGame(ctx context.Context, opts Options) (*game.GameSession, error) {
	maxParticipants := opts.PreferredGameSize
	if maxParticipants <= 0 {
		maxParticipants = DefaultMaxParticipants
	}

	spec := CreateGameSpec{
		Title:                fmt.Sprintf("Trivia Night %s", time.Now().Format("Jan 2, 2006")),
		AllowedLevels:        opts.SelectedLevels,
		MaxParticipants:      maxParticipants,
		Status:               game.StatusActive,
		CurrentQuestionIndex: 0,
		CreatedBy:            opts.PlayerID,
	}

	id, err := m.store.CreateGame(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	// The store is the source of truth for generated fields, so read the
	// session back rather than assembling it locally.
	created, err := m.store.GetGameByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch created game: %w", err)
	}
	if created == nil {
		return nil, ErrGameCreationFailed
	}

	gamesCreated.Inc()
	m.logger.Info().
		Str("game_id", created.ID.String()).
		Str("player_id", opts.PlayerID.String()).
		Int("max_participants", maxParticipants).
		Msg("created new game")
	return created, nil
}

// levelsIntersect reports whether at least one level is shared.
func levelsIntersect(sessionLevels, selected []game.Level) bool {
	for _, sl := range sessionLevels {
		for _, req := range selected {
			if sl == req {
				return true
			}
		}
	}
	return false
}

// levelsContained reports whether every session level appears in the
// requested set.
func levelsContained(sessionLevels, selected []game.Level) bool {
	for _, sl := range sessionLevels {
		found := false
		for _, req := range selected {
			if sl == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
