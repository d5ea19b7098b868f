package consoleui

import (
	"tourney/internal/tournament"
)

// Observer adapts the UI to tournament progress callbacks.
type Observer struct {
	UI *UI
}

func (o *Observer) MatchStarted(t *tournament.Tournament, m *tournament.Match, index int) {
	o.UI.MatchStarted(m, index+1, len(t.Matches))
}

func (o *Observer) MatchCompleted(t *tournament.Tournament, m *tournament.Match) {
	o.UI.MatchCompleted(m)
}

func (o *Observer) Completed(t *tournament.Tournament) {
	o.UI.Standings(t.Standings())
}
