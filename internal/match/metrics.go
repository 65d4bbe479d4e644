package match

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gamesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchmaker_games_matched_total",
		Help: "Players placed into an existing game session.",
	})
	gamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchmaker_games_created_total",
		Help: "New game sessions created because no candidate scored above zero.",
	})
)
