package match

import (
	"github.com/google/uuid"

	"github.com/martyfest/party-platform/internal/game"
)

// DefaultMaxParticipants caps a session when no preferred size is given.
const DefaultMaxParticipants = 20

// Options captures a player's matchmaking request.
type Options struct {
	SelectedLevels    []game.Level
	PlayerID          uuid.UUID
	PlayerName        string
	PreferredGameSize int
	// AvoidRecentGames is accepted from clients but not yet consulted by
	// the candidate scoring below.
	AvoidRecentGames bool
}

// CreateGameSpec enumerates the fields the matchmaker supplies when it
// asks the store for a fresh session. Generated fields (id, creation
// timestamp) belong to the store.
type CreateGameSpec struct {
	Title                string
	AllowedLevels        []game.Level
	MaxParticipants      int
	Status               string
	CurrentQuestionIndex int
	CreatedBy            uuid.UUID
}
