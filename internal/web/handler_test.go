package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourney/internal/assessment"
	"tourney/internal/tournament"
)

func testHandler() *Handler {
	return NewHandler(NewHub(log.New(io.Discard, "", 0)))
}

func testTournament() *tournament.Tournament {
	fw := &assessment.Framework{
		ID:          "fw",
		Description: "d",
		Criteria:    []assessment.Criterion{{Name: "c", Description: "d", Weight: 1}},
		Scoring:     assessment.ScoringSystem{Type: "points", Scale: assessment.Scale{Min: 1, Max: 10}},
	}
	contenders := []*tournament.Contender{
		{ID: "a", Content: "a"},
		{ID: "b", Content: "b"},
	}
	agg := tournament.NewAggregator(tournament.DefaultPointSystem(), fw.Scoring.Scale, log.New(io.Discard, "", 0))
	t := tournament.New(contenders, fw, json.RawMessage(`{}`), tournament.ScheduleOptions{RoundsPerMatchup: 1}, agg)
	t.PlanMatches()
	return t
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatus_IdleWithoutTournament(t *testing.T) {
	rec := get(t, testHandler().Routes(), "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("code: %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["status"] != "idle" {
		t.Fatalf("status: %v", doc["status"])
	}
}

func TestStatus_WithTournament(t *testing.T) {
	h := testHandler()
	h.SetTournament(testTournament())
	rec := get(t, h.Routes(), "/api/status")
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["status"] != tournament.StatusInitialized {
		t.Fatalf("status: %v", doc["status"])
	}
	progress, ok := doc["progress"].(map[string]any)
	if !ok || progress["total_matches"] != float64(1) {
		t.Fatalf("progress: %v", doc["progress"])
	}
}

func TestStandings_NotFoundWithoutTournament(t *testing.T) {
	rec := get(t, testHandler().Routes(), "/api/standings")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code: %d", rec.Code)
	}
}

func TestStandings_RanksAllContenders(t *testing.T) {
	h := testHandler()
	h.SetTournament(testTournament())
	rec := get(t, h.Routes(), "/api/standings")
	var doc struct {
		Rankings []tournament.Ranking `json:"rankings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Rankings) != 2 {
		t.Fatalf("rankings: %d", len(doc.Rankings))
	}
}

func TestMatches_ListsPlannedMatches(t *testing.T) {
	h := testHandler()
	h.SetTournament(testTournament())
	rec := get(t, h.Routes(), "/api/matches")
	var doc struct {
		Matches []tournament.MatchRecord `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Matches) != 1 {
		t.Fatalf("matches: %d", len(doc.Matches))
	}
}

func TestCORS_HeadersPresent(t *testing.T) {
	rec := get(t, testHandler().Routes(), "/api/status")
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("missing CORS header")
	}
}

func TestHub_BroadcastDropsNoOne(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	ch := hub.subscribe()
	defer hub.unsubscribe(ch)

	hub.Broadcast(Event{Type: "match_started"})
	ev := <-ch
	if ev.Type != "match_started" || ev.Timestamp == "" {
		t.Fatalf("event: %+v", ev)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("clients: %d", hub.ClientCount())
	}
}

type firstWinsEvaluator struct{}

func (firstWinsEvaluator) EvaluateWithRetry(ctx context.Context, m *tournament.Match) error {
	time.Sleep(time.Millisecond)
	winner := m.Contender1.ID
	m.Complete(&tournament.MatchResult{
		Winner:          &winner,
		Contender1Score: 8,
		Contender2Score: 6,
		Rationale:       "r",
	}, time.Now())
	return nil
}

func TestHandler_ServesSnapshotsWhileRunLoopMutates(t *testing.T) {
	fw := &assessment.Framework{
		ID:          "fw",
		Description: "d",
		Criteria:    []assessment.Criterion{{Name: "c", Description: "d", Weight: 1}},
		Scoring:     assessment.ScoringSystem{Type: "points", Scale: assessment.Scale{Min: 1, Max: 10}},
	}
	contenders := []*tournament.Contender{
		{ID: "a", Content: "a"},
		{ID: "b", Content: "b"},
		{ID: "c", Content: "c"},
		{ID: "d", Content: "d"},
	}
	agg := tournament.NewAggregator(tournament.DefaultPointSystem(), fw.Scoring.Scale, log.New(io.Discard, "", 0))
	tr := tournament.New(contenders, fw, json.RawMessage(`{}`), tournament.ScheduleOptions{RoundsPerMatchup: 1}, agg)
	tr.PlanMatches()

	h := testHandler()
	h.SetTournament(tr)
	routes := h.Routes()

	done := make(chan error, 1)
	go func() {
		done <- tr.Run(context.Background(), firstWinsEvaluator{}, NewLiveObserver(h.hub, h))
	}()

	for i := 0; i < 200; i++ {
		if rec := get(t, routes, "/api/standings"); rec.Code != http.StatusOK {
			t.Fatalf("standings code: %d", rec.Code)
		}
		if rec := get(t, routes, "/api/matches"); rec.Code != http.StatusOK {
			t.Fatalf("matches code: %d", rec.Code)
		}
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	rec := get(t, routes, "/api/status")
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["status"] != tournament.StatusCompleted {
		t.Fatalf("status: %v", doc["status"])
	}
	progress, _ := doc["progress"].(map[string]any)
	if progress["completed_matches"] != float64(len(tr.Matches)) {
		t.Fatalf("progress: %v", doc["progress"])
	}
}
