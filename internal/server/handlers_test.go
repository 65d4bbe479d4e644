package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martyfest/party-platform/internal/game"
	"github.com/martyfest/party-platform/internal/game/scoring"
	"github.com/martyfest/party-platform/internal/guestbook"
	"github.com/martyfest/party-platform/internal/match"
	"github.com/martyfest/party-platform/internal/vote"
)

type fakeMatchmaker struct {
	session *game.GameSession
	err     error
}

func (f *fakeMatchmaker) GetOrCreateGame(ctx context.Context, opts match.Options) (*game.GameSession, error) {
	return f.session, f.err
}

type fakeGameStore struct {
	sessions map[uuid.UUID]*game.GameSession
	joinErr  error
}

func (f *fakeGameStore) AddParticipant(ctx context.Context, gameID uuid.UUID, p game.Participant) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	if s, ok := f.sessions[gameID]; ok {
		s.Participants = append(s.Participants, p)
		s.ParticipantCount++
	}
	return nil
}

func (f *fakeGameStore) GetGameByID(ctx context.Context, id uuid.UUID) (*game.GameSession, error) {
	return f.sessions[id], nil
}

type fakeQuestionSource struct {
	questions map[string]game.Question
}

func (f *fakeQuestionSource) GetByID(ctx context.Context, id string) (*game.Question, error) {
	if q, ok := f.questions[id]; ok {
		return &q, nil
	}
	return nil, nil
}

func (f *fakeQuestionSource) ListByLevel(ctx context.Context, level game.Level) ([]game.Question, error) {
	var out []game.Question
	for _, q := range f.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeGuestbookStore struct {
	messages []guestbook.Message
}

func (f *fakeGuestbookStore) Insert(ctx context.Context, msg guestbook.Message) (uuid.UUID, error) {
	msg.ID = uuid.New()
	f.messages = append(f.messages, msg)
	return msg.ID, nil
}

func (f *fakeGuestbookStore) ListRecent(ctx context.Context, limit int) ([]guestbook.Message, error) {
	return f.messages, nil
}

type handlerFixture struct {
	handlers *Handlers
	games    *fakeGameStore
	session  *game.GameSession
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	session := &game.GameSession{
		ID:              uuid.New(),
		Title:           "Trivia Night",
		Status:          game.StatusActive,
		AllowedLevels:   []game.Level{game.LevelEasy},
		MaxParticipants: 20,
	}
	games := &fakeGameStore{sessions: map[uuid.UUID]*game.GameSession{session.ID: session}}

	questions := &fakeQuestionSource{questions: map[string]game.Question{
		"q1": {
			ID:               "q1",
			Text:             "What year does Marty travel back to?",
			Type:             game.TypeWriteIn,
			Level:            game.LevelEasy,
			PointValue:       100,
			TimeLimitSeconds: 30,
			CorrectAnswer:    "1955",
			HintPenalty:      25,
		},
	}}

	handlers := NewHandlers(
		&fakeMatchmaker{session: session},
		games,
		questions,
		nil,
		scoring.NewEngine(scoring.DefaultConfig()),
		game.NewScoreKeeper(client, zerolog.Nop(), 0),
		vote.NewService(client, zerolog.Nop(), vote.ServiceOptions{}),
		guestbook.NewService(&fakeGuestbookStore{}, zerolog.Nop()),
		zerolog.Nop(),
	)
	return &handlerFixture{handlers: handlers, games: games, session: session}
}

func postJSON(t *testing.T, pattern string, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))

	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestJoinGameAddsParticipant(t *testing.T) {
	fx := newFixture(t)
	playerID := uuid.New()

	rec := postJSON(t, "POST /v1/games/join", fx.handlers.JoinGame, "/v1/games/join", joinGameRequest{
		PlayerID:       playerID,
		PlayerName:     "Marty",
		SelectedLevels: []int{1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got game.GameSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, fx.session.ID, got.ID)
	assert.True(t, got.HasParticipant(playerID))
	assert.Equal(t, 1, got.ParticipantCount)
}

func TestJoinGameValidation(t *testing.T) {
	fx := newFixture(t)

	rec := postJSON(t, "POST /v1/games/join", fx.handlers.JoinGame, "/v1/games/join", joinGameRequest{
		PlayerID: uuid.New(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, "POST /v1/games/join", fx.handlers.JoinGame, "/v1/games/join", joinGameRequest{
		SelectedLevels: []int{1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswerScoresAndAccumulates(t *testing.T) {
	fx := newFixture(t)
	playerID := uuid.New()
	target := fmt.Sprintf("/v1/games/%s/answers", fx.session.ID)

	rec := postJSON(t, "POST /v1/games/{id}/answers", fx.handlers.SubmitAnswer, target, submitAnswerRequest{
		PlayerID:      playerID,
		QuestionID:    "q1",
		WrittenAnswer: " 1955 ",
		TimeRemaining: 15,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got submitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Answer.IsCorrect)
	assert.Equal(t, 110, got.Answer.PointsEarned)
	assert.Equal(t, 110, got.TotalScore)

	// A wrong answer records zero but keeps the running total.
	rec = postJSON(t, "POST /v1/games/{id}/answers", fx.handlers.SubmitAnswer, target, submitAnswerRequest{
		PlayerID:      playerID,
		QuestionID:    "q1",
		WrittenAnswer: "2015",
		TimeRemaining: 30,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Answer.IsCorrect)
	assert.Equal(t, 0, got.Answer.PointsEarned)
	assert.Equal(t, 110, got.TotalScore)
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	fx := newFixture(t)
	target := fmt.Sprintf("/v1/games/%s/answers", fx.session.ID)

	rec := postJSON(t, "POST /v1/games/{id}/answers", fx.handlers.SubmitAnswer, target, submitAnswerRequest{
		PlayerID:   uuid.New(),
		QuestionID: "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCastVoteConflictOnSecondVote(t *testing.T) {
	fx := newFixture(t)
	voter := uuid.New()

	rec := postJSON(t, "POST /v1/votes", fx.handlers.CastVote, "/v1/votes", castVoteRequest{
		VoterID:   voter,
		CostumeID: "doc-brown",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, "POST /v1/votes", fx.handlers.CastVote, "/v1/votes", castVoteRequest{
		VoterID:   voter,
		CostumeID: "einstein",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLevelQuestionsHidesAnswers(t *testing.T) {
	fx := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/levels/1/questions", nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/levels/{level}/questions", fx.handlers.LevelQuestions)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "1955", "correct answer must not leak to clients")
	assert.Contains(t, rec.Body.String(), "00:30")
}

func TestGuestbookRoundTrip(t *testing.T) {
	fx := newFixture(t)

	rec := postJSON(t, "POST /v1/guestbook", fx.handlers.AddGuestbookMessage, "/v1/guestbook", addMessageRequest{
		AuthorName: "Jennifer",
		Message:    "Happy birthday!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/guestbook", nil)
	listRec := httptest.NewRecorder()
	fx.handlers.ListGuestbookMessages(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "Happy birthday!")
}
