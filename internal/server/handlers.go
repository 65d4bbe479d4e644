package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/martyfest/party-platform/internal/game"
	"github.com/martyfest/party-platform/internal/game/scoring"
	"github.com/martyfest/party-platform/internal/guestbook"
	"github.com/martyfest/party-platform/internal/match"
	"github.com/martyfest/party-platform/internal/vote"
	httperrors "github.com/martyfest/party-platform/pkg/http/errors"
)

// GameJoiner places a player into a session (the matchmaker).
type GameJoiner interface {
	GetOrCreateGame(ctx context.Context, opts match.Options) (*game.GameSession, error)
}

// ParticipantStore performs the roster mutation the matchmaker decided on.
type ParticipantStore interface {
	AddParticipant(ctx context.Context, gameID uuid.UUID, p game.Participant) error
	GetGameByID(ctx context.Context, id uuid.UUID) (*game.GameSession, error)
}

// QuestionSource reads the trivia catalog.
type QuestionSource interface {
	GetByID(ctx context.Context, id string) (*game.Question, error)
	ListByLevel(ctx context.Context, level game.Level) ([]game.Question, error)
}

// Handlers carries the service dependencies for the HTTP endpoints.
type Handlers struct {
	matchmaker    GameJoiner
	games         ParticipantStore
	questions     QuestionSource
	questionCache *game.QuestionCache
	engine        *scoring.Engine
	keeper        *game.ScoreKeeper
	votes         *vote.Service
	guestbook     *guestbook.Service
	logger        zerolog.Logger
}

// NewHandlers builds the HTTP handler set. questionCache may be nil.
func NewHandlers(
	matchmaker GameJoiner,
	games ParticipantStore,
	questions QuestionSource,
	questionCache *game.QuestionCache,
	engine *scoring.Engine,
	keeper *game.ScoreKeeper,
	votes *vote.Service,
	guestbookSvc *guestbook.Service,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		matchmaker:    matchmaker,
		games:         games,
		questions:     questions,
		questionCache: questionCache,
		engine:        engine,
		keeper:        keeper,
		votes:         votes,
		guestbook:     guestbookSvc,
		logger:        logger.With().Str("component", "http").Logger(),
	}
}

type joinGameRequest struct {
	PlayerID          uuid.UUID `json:"player_id"`
	PlayerName        string    `json:"player_name"`
	SelectedLevels    []int     `json:"selected_levels"`
	PreferredGameSize int       `json:"preferred_game_size,omitempty"`
	AvoidRecentGames  bool      `json:"avoid_recent_games,omitempty"`
}

// JoinGame matches the player to a session (or creates one) and records
// them in the roster when they are not already in it.
func (h *Handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}
	if req.PlayerID == uuid.Nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "player_id is required", "player_id")
		return
	}
	if len(req.SelectedLevels) == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "selected_levels is required", "selected_levels")
		return
	}

	levels := make([]game.Level, len(req.SelectedLevels))
	for i, l := range req.SelectedLevels {
		levels[i] = game.Level(l)
	}

	session, err := h.matchmaker.GetOrCreateGame(r.Context(), match.Options{
		SelectedLevels:    levels,
		PlayerID:          req.PlayerID,
		PlayerName:        req.PlayerName,
		PreferredGameSize: req.PreferredGameSize,
		AvoidRecentGames:  req.AvoidRecentGames,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("player_id", req.PlayerID.String()).Msg("matchmaking failed")
		if errors.Is(err, match.ErrGameCreationFailed) {
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeGameCreationFailed, "failed to create game")
			return
		}
		httperrors.RespondInternalError(w, "failed to join a game")
		return
	}

	if !session.HasParticipant(req.PlayerID) {
		participant := game.Participant{ID: req.PlayerID, Name: req.PlayerName}
		if err := h.games.AddParticipant(r.Context(), session.ID, participant); err != nil {
			h.logger.Error().Err(err).Str("game_id", session.ID.String()).Msg("join failed")
			httperrors.RespondConflict(w, httperrors.ErrCodeGameFull, "could not claim a slot in the matched game")
			return
		}
		// Re-read so the response reflects the roster mutation.
		if refreshed, err := h.games.GetGameByID(r.Context(), session.ID); err == nil && refreshed != nil {
			session = refreshed
		}
	}

	respondJSON(w, http.StatusOK, session)
}

type submitAnswerRequest struct {
	PlayerID         uuid.UUID `json:"player_id"`
	QuestionID       string    `json:"question_id"`
	SelectedOptionID string    `json:"selected_option_id,omitempty"`
	WrittenAnswer    string    `json:"written_answer,omitempty"`
	TimeRemaining    int       `json:"time_remaining"`
	UsedHint         bool      `json:"used_hint"`
}

type submitAnswerResponse struct {
	Answer     game.PlayerAnswer `json:"answer"`
	TotalScore int               `json:"total_score"`
}

// SubmitAnswer scores a submission and records it against the player's
// session accumulator.
func (h *Handlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidGameID, "game id must be a UUID")
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}
	if req.PlayerID == uuid.Nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "player_id is required", "player_id")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}

	question, err := h.questions.GetByID(r.Context(), req.QuestionID)
	if err != nil {
		h.logger.Error().Err(err).Str("question_id", req.QuestionID).Msg("question lookup failed")
		httperrors.RespondInternalError(w, "failed to load question")
		return
	}
	if question == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, "unknown question")
		return
	}

	answer := h.engine.ProcessAnswer(*question, req.SelectedOptionID, req.WrittenAnswer, req.TimeRemaining, req.UsedHint)

	total, err := h.keeper.RecordAnswer(r.Context(), gameID, req.PlayerID, answer)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID.String()).Msg("record answer failed")
		httperrors.RespondInternalError(w, "failed to record answer")
		return
	}

	respondJSON(w, http.StatusOK, submitAnswerResponse{Answer: answer, TotalScore: total})
}

// GameScores returns every player's accumulated score for a game.
func (h *Handlers) GameScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidGameID, "game id must be a UUID")
		return
	}

	scores, err := h.keeper.Scores(r.Context(), gameID)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID.String()).Msg("scores lookup failed")
		httperrors.RespondInternalError(w, "failed to load scores")
		return
	}

	out := make(map[string]int, len(scores))
	for playerID, score := range scores {
		out[playerID.String()] = score
	}
	respondJSON(w, http.StatusOK, out)
}

type playerAnswersResponse struct {
	Answers     []game.PlayerAnswer `json:"answers"`
	TotalScore  int                 `json:"total_score"`
	SuccessRate int                 `json:"success_rate"`
}

// PlayerAnswers returns a player's answer log with total and rate.
func (h *Handlers) PlayerAnswers(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidGameID, "game id must be a UUID")
		return
	}
	playerID, err := uuid.Parse(r.PathValue("playerID"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "player id must be a UUID")
		return
	}

	answers, err := h.keeper.PlayerAnswers(r.Context(), gameID, playerID)
	if err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID.String()).Msg("answers lookup failed")
		httperrors.RespondInternalError(w, "failed to load answers")
		return
	}

	respondJSON(w, http.StatusOK, playerAnswersResponse{
		Answers:     answers,
		TotalScore:  scoring.TotalScore(answers),
		SuccessRate: scoring.SuccessRate(answers),
	})
}

// questionView is the client-safe projection of a question: the correct
// answer and option flags never leave the server.
type questionView struct {
	ID               string           `json:"id"`
	Text             string           `json:"text"`
	Type             string           `json:"type"`
	Level            game.Level       `json:"level"`
	PointValue       int              `json:"point_value"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
	TimeLimitDisplay string           `json:"time_limit_display"`
	HintPenalty      int              `json:"hint_penalty"`
	Options          []questionOption `json:"options,omitempty"`
}

type questionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// LevelQuestions returns the catalog for one difficulty level, served
// from the Redis cache when warm.
func (h *Handlers) LevelQuestions(w http.ResponseWriter, r *http.Request) {
	levelNum, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || levelNum < int(game.LevelEasy) || levelNum > int(game.LevelHard) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "level must be 1, 2 or 3")
		return
	}
	level := game.Level(levelNum)

	var questions []game.Question
	if h.questionCache != nil {
		if cached, err := h.questionCache.Get(r.Context(), level); err == nil && cached != nil {
			questions = cached
		}
	}
	if questions == nil {
		questions, err = h.questions.ListByLevel(r.Context(), level)
		if err != nil {
			h.logger.Error().Err(err).Int("level", levelNum).Msg("question list failed")
			httperrors.RespondInternalError(w, "failed to load questions")
			return
		}
		if h.questionCache != nil {
			if err := h.questionCache.Set(r.Context(), level, questions); err != nil {
				h.logger.Warn().Err(err).Int("level", levelNum).Msg("question cache write failed")
			}
		}
	}

	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		view := questionView{
			ID:               q.ID,
			Text:             q.Text,
			Type:             q.Type,
			Level:            q.Level,
			PointValue:       q.PointValue,
			TimeLimitSeconds: q.TimeLimitSeconds,
			TimeLimitDisplay: scoring.FormatTime(q.TimeLimitSeconds),
			HintPenalty:      q.HintPenalty,
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, questionOption{ID: opt.ID, Text: opt.Text})
		}
		views = append(views, view)
	}
	respondJSON(w, http.StatusOK, views)
}

type castVoteRequest struct {
	VoterID   uuid.UUID `json:"voter_id"`
	CostumeID string    `json:"costume_id"`
}

// CastVote records a costume vote; a second vote from the same guest is
// rejected with a conflict.
func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}
	if req.VoterID == uuid.Nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "voter_id is required", "voter_id")
		return
	}
	if req.CostumeID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "costume_id is required", "costume_id")
		return
	}

	if err := h.votes.CastVote(r.Context(), req.VoterID, req.CostumeID); err != nil {
		if errors.Is(err, vote.ErrAlreadyVoted) {
			httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyVoted, "this guest has already voted")
			return
		}
		h.logger.Error().Err(err).Str("voter_id", req.VoterID.String()).Msg("vote failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeVoteFailed, "failed to record vote")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// VoteTally returns the current costume standings.
func (h *Handlers) VoteTally(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.votes.Tally(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("tally failed")
		httperrors.RespondInternalError(w, "failed to load tally")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type addMessageRequest struct {
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
}

// AddGuestbookMessage stores a birthday message.
func (h *Handlers) AddGuestbookMessage(w http.ResponseWriter, r *http.Request) {
	var req addMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}

	id, err := h.guestbook.Add(r.Context(), req.AuthorName, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, guestbook.ErrEmptyAuthor):
			httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, err.Error(), "author_name")
		case errors.Is(err, guestbook.ErrEmptyMessage), errors.Is(err, guestbook.ErrMessageTooLong):
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, err.Error(), "message")
		default:
			h.logger.Error().Err(err).Msg("guestbook write failed")
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeGuestbookWriteFailed, "failed to store message")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// ListGuestbookMessages returns recent messages, newest first.
func (h *Handlers) ListGuestbookMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	messages, err := h.guestbook.List(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("guestbook list failed")
		httperrors.RespondInternalError(w, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
