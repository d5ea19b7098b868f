package tournament

import (
	"log"
	"math"

	"tourney/internal/assessment"
)

// PointSystem maps match outcomes to league points.
type PointSystem struct {
	Win  int `json:"win" yaml:"win"`
	Draw int `json:"draw" yaml:"draw"`
	Loss int `json:"loss" yaml:"loss"`
}

// DefaultPointSystem is the standard 3/1/0 league scoring.
func DefaultPointSystem() PointSystem { return PointSystem{Win: 3, Draw: 1, Loss: 0} }

// Aggregator updates per-contender running statistics from completed
// matches. It never raises: a malformed or partial result is defaulted
// (missing numerics fall back to the scale midpoint) and logged, so one
// bad record cannot corrupt aggregation for other contenders.
type Aggregator struct {
	Points PointSystem
	Scale  assessment.Scale
	Log    *log.Logger
}

// NewAggregator builds an aggregator over the given point system and
// score scale. A nil logger falls back to log.Default().
func NewAggregator(points PointSystem, scale assessment.Scale, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{Points: points, Scale: scale, Log: logger}
}

// Apply folds one evaluated match into both contenders' stats. Each
// contender's matches_played increments exactly once per call. Failed
// or pending matches are skipped with a log line.
func (a *Aggregator) Apply(m *Match) {
	if m.State != MatchEvaluated || m.Result == nil {
		a.Log.Printf("stats: skipping match %s in state %s with no result", m.ID, m.State)
		return
	}
	a.applyFor(m.Contender1, m.Contender1.ID, m)
	a.applyFor(m.Contender2, m.Contender2.ID, m)
}

func (a *Aggregator) applyFor(c *Contender, id string, m *Match) {
	myScore := m.Result.Contender1Score
	if id == m.Contender2.ID {
		myScore = m.Result.Contender2Score
	}
	if math.IsNaN(myScore) || math.IsInf(myScore, 0) {
		myScore = a.Scale.Midpoint()
		a.Log.Printf("stats: match %s has a non-numeric score for %s, defaulting to scale midpoint %.1f", m.ID, id, myScore)
	}

	c.Stats.MatchesPlayed++
	c.Stats.TotalScore += myScore

	switch {
	case m.Result.Winner != nil && *m.Result.Winner == id:
		c.Stats.Wins++
		c.Stats.Points += a.Points.Win
	case m.Result.Winner == nil:
		c.Stats.Draws++
		c.Stats.Points += a.Points.Draw
	default:
		c.Stats.Losses++
		c.Stats.Points += a.Points.Loss
	}
}
