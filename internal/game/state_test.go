package game

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T) (*ScoreKeeper, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewScoreKeeper(client, zerolog.Nop(), 0), mr
}

func TestRecordAnswerAccumulatesScore(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	ctx := context.Background()
	gameID := uuid.New()
	playerID := uuid.New()

	total, err := keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{
		QuestionID: "q1", IsCorrect: true, PointsEarned: 110,
	})
	require.NoError(t, err)
	assert.Equal(t, 110, total)

	total, err = keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{
		QuestionID: "q2", IsCorrect: false, PointsEarned: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 110, total)

	total, err = keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{
		QuestionID: "q3", IsCorrect: true, PointsEarned: 85,
	})
	require.NoError(t, err)
	assert.Equal(t, 195, total)
}

func TestScoreEqualsSumOfRecordedAnswers(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	ctx := context.Background()
	gameID := uuid.New()
	playerID := uuid.New()

	points := []int{100, 0, 120, 85, 0}
	for i, p := range points {
		_, err := keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{
			QuestionID:   uuid.NewString(),
			IsCorrect:    p > 0,
			PointsEarned: p,
		})
		require.NoError(t, err, "answer %d", i)
	}

	answers, err := keeper.PlayerAnswers(ctx, gameID, playerID)
	require.NoError(t, err)
	require.Len(t, answers, len(points))

	sum := 0
	for _, ans := range answers {
		sum += ans.PointsEarned
	}

	score, err := keeper.PlayerScore(ctx, gameID, playerID)
	require.NoError(t, err)
	assert.Equal(t, sum, score, "accumulator must equal the sum of recorded answers")
}

func TestPlayerScoreZeroWithoutAnswers(t *testing.T) {
	keeper, _ := newTestKeeper(t)

	score, err := keeper.PlayerScore(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestScoresListsAllPlayers(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	ctx := context.Background()
	gameID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	_, err := keeper.RecordAnswer(ctx, gameID, alice, PlayerAnswer{QuestionID: "q1", PointsEarned: 110})
	require.NoError(t, err)
	_, err = keeper.RecordAnswer(ctx, gameID, bob, PlayerAnswer{QuestionID: "q1", PointsEarned: 90})
	require.NoError(t, err)

	scores, err := keeper.Scores(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{alice: 110, bob: 90}, scores)
}

func TestPlayerAnswersPreservesOrder(t *testing.T) {
	keeper, _ := newTestKeeper(t)
	ctx := context.Background()
	gameID := uuid.New()
	playerID := uuid.New()

	for _, qid := range []string{"q1", "q2", "q3"} {
		_, err := keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{QuestionID: qid})
		require.NoError(t, err)
	}

	answers, err := keeper.PlayerAnswers(ctx, gameID, playerID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "q1", answers[0].QuestionID)
	assert.Equal(t, "q2", answers[1].QuestionID)
	assert.Equal(t, "q3", answers[2].QuestionID)
}

func TestPlayerAnswersSkipsCorruptedRecords(t *testing.T) {
	keeper, mr := newTestKeeper(t)
	ctx := context.Background()
	gameID := uuid.New()
	playerID := uuid.New()

	_, err := keeper.RecordAnswer(ctx, gameID, playerID, PlayerAnswer{QuestionID: "q1"})
	require.NoError(t, err)
	_, err = mr.Push(answersKey(gameID, playerID), "{not json")
	require.NoError(t, err)

	answers, err := keeper.PlayerAnswers(ctx, gameID, playerID)
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}
