package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"tourney/internal/tournament"
)

// snapshot is an immutable view of a tournament at one point in the run.
// The run goroutine builds and publishes it; HTTP goroutines only read
// published snapshots, never the tournament itself.
type snapshot struct {
	id        string
	status    string
	progress  tournament.RunStats
	standings []tournament.Ranking
	matches   []tournament.MatchRecord
}

// Handler serves tournament state over JSON plus the websocket stream.
// State is the latest snapshot published by the run loop, swapped under
// a lock so batch runners can reuse one handler across consecutive
// tournaments.
type Handler struct {
	mu   sync.RWMutex
	snap *snapshot
	hub  *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// SetTournament publishes an initial snapshot of the tournament before
// its run starts. Call it from the goroutine that will drive the run,
// or before that goroutine exists.
func (h *Handler) SetTournament(t *tournament.Tournament) {
	h.publish(t)
}

// publish captures the tournament's current state and installs it as
// the served snapshot. Must only be called from the goroutine driving
// the run; a published snapshot is never written again.
func (h *Handler) publish(t *tournament.Tournament) {
	snap := &snapshot{
		id:        t.ID,
		status:    t.Status,
		progress:  t.Progress(),
		standings: t.Standings(),
		matches:   make([]tournament.MatchRecord, 0, len(t.Matches)),
	}
	for _, m := range t.Matches {
		snap.matches = append(snap.matches, m.Record())
	}
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
}

func (h *Handler) current() *snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Routes registers all endpoints on a fresh mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/standings", h.handleStandings)
	mux.HandleFunc("/api/matches", h.handleMatches)
	mux.HandleFunc("/ws", h.hub.ServeWS)
	return CORS(mux)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.current()
	if snap == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "idle", "clients": h.hub.ClientCount()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        snap.status,
		"tournament_id": snap.id,
		"progress":      snap.progress,
		"clients":       h.hub.ClientCount(),
	})
}

func (h *Handler) handleStandings(w http.ResponseWriter, r *http.Request) {
	snap := h.current()
	if snap == nil {
		http.Error(w, "no tournament running", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tournament_id": snap.id,
		"rankings":      snap.standings,
	})
}

func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	snap := h.current()
	if snap == nil {
		http.Error(w, "no tournament running", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tournament_id": snap.id,
		"matches":       snap.matches,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// CORS allows browser dashboards served from another origin to reach
// the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
