package web

import (
	"tourney/internal/tournament"
)

// LiveObserver relays tournament callbacks to websocket subscribers and
// refreshes the handler's served snapshot. It runs on the goroutine
// driving the tournament, so reading the tournament here is safe.
// It satisfies tournament.Observer.
type LiveObserver struct {
	Hub     *Hub
	Handler *Handler
}

func NewLiveObserver(hub *Hub, handler *Handler) *LiveObserver {
	return &LiveObserver{Hub: hub, Handler: handler}
}

func (o *LiveObserver) MatchStarted(t *tournament.Tournament, m *tournament.Match, index int) {
	o.Handler.publish(t)
	o.Hub.Broadcast(Event{
		Type:     "match_started",
		Match:    m.Record(),
		Progress: t.Progress(),
	})
}

func (o *LiveObserver) MatchCompleted(t *tournament.Tournament, m *tournament.Match) {
	o.Handler.publish(t)
	o.Hub.Broadcast(Event{
		Type:      "match_completed",
		Match:     m.Record(),
		Standings: t.Standings(),
		Progress:  t.Progress(),
	})
}

func (o *LiveObserver) Completed(t *tournament.Tournament) {
	o.Handler.publish(t)
	o.Hub.Broadcast(Event{
		Type:      "tournament_completed",
		Standings: t.Standings(),
		Progress:  t.Progress(),
	})
}
