package tournament

import (
	"io"
	"log"
	"math"
	"testing"

	"tourney/internal/assessment"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func evaluatedMatch(c1, c2 *Contender, winner *string, s1, s2 float64) *Match {
	m := NewMatch(c1, c2, testFramework())
	m.Complete(&MatchResult{
		Winner:          winner,
		Contender1Score: s1,
		Contender2Score: s2,
		Rationale:       "test",
	}, m.Timestamp)
	return m
}

func TestAggregator_Win(t *testing.T) {
	a := NewAggregator(DefaultPointSystem(), assessment.Scale{Min: 1, Max: 10}, quietLogger())
	c1 := &Contender{ID: "a", Content: "a"}
	c2 := &Contender{ID: "b", Content: "b"}
	w := "a"
	a.Apply(evaluatedMatch(c1, c2, &w, 8, 5))

	if c1.Stats.Wins != 1 || c1.Stats.Points != 3 || c1.Stats.MatchesPlayed != 1 {
		t.Fatalf("winner stats: %+v", c1.Stats)
	}
	if c2.Stats.Losses != 1 || c2.Stats.Points != 0 || c2.Stats.MatchesPlayed != 1 {
		t.Fatalf("loser stats: %+v", c2.Stats)
	}
	if c1.Stats.TotalScore != 8 || c2.Stats.TotalScore != 5 {
		t.Fatalf("scores: %v %v", c1.Stats.TotalScore, c2.Stats.TotalScore)
	}
}

func TestAggregator_Draw(t *testing.T) {
	a := NewAggregator(DefaultPointSystem(), assessment.Scale{Min: 1, Max: 10}, quietLogger())
	c1 := &Contender{ID: "a"}
	c2 := &Contender{ID: "b"}
	a.Apply(evaluatedMatch(c1, c2, nil, 7, 7))

	for _, c := range []*Contender{c1, c2} {
		if c.Stats.Draws != 1 || c.Stats.Points != 1 || c.Stats.Wins != 0 || c.Stats.Losses != 0 {
			t.Fatalf("%s stats: %+v", c.ID, c.Stats)
		}
	}
}

func TestAggregator_NaNScoreDefaultsToMidpoint(t *testing.T) {
	a := NewAggregator(DefaultPointSystem(), assessment.Scale{Min: 1, Max: 10}, quietLogger())
	c1 := &Contender{ID: "a"}
	c2 := &Contender{ID: "b"}
	w := "b"
	a.Apply(evaluatedMatch(c1, c2, &w, math.NaN(), 9))

	if c1.Stats.TotalScore != 5.5 {
		t.Fatalf("expected midpoint 5.5, got %v", c1.Stats.TotalScore)
	}
	if c1.Stats.MatchesPlayed != 1 {
		t.Fatalf("matches_played: %d", c1.Stats.MatchesPlayed)
	}
}

func TestAggregator_SkipsUnevaluatedMatches(t *testing.T) {
	a := NewAggregator(DefaultPointSystem(), assessment.Scale{Min: 1, Max: 10}, quietLogger())
	c1 := &Contender{ID: "a"}
	c2 := &Contender{ID: "b"}
	m := NewMatch(c1, c2, testFramework())
	m.Fail()
	a.Apply(m)

	if c1.Stats.MatchesPlayed != 0 || c2.Stats.MatchesPlayed != 0 {
		t.Fatalf("failed match must not count: %+v %+v", c1.Stats, c2.Stats)
	}
}

func TestContenderStats_DerivedValues(t *testing.T) {
	s := ContenderStats{Wins: 3, Losses: 1, MatchesPlayed: 4, TotalScore: 30}
	if got := s.WinPercentage(); got != 0.75 {
		t.Fatalf("win percentage: %v", got)
	}
	if got := s.AverageScore(); got != 7.5 {
		t.Fatalf("average score: %v", got)
	}
	var empty ContenderStats
	if empty.WinPercentage() != 0 || empty.AverageScore() != 0 {
		t.Fatal("zero matches must yield zero derived values")
	}
}
