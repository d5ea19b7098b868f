package tournament

import (
	"time"

	"github.com/google/uuid"

	"tourney/internal/assessment"
)

// MatchState tracks a match through its lifecycle. Pending matches may
// still be evaluated or retried; Evaluated and Failed are terminal.
type MatchState string

const (
	MatchPending   MatchState = "pending"
	MatchEvaluated MatchState = "evaluated"
	MatchFailed    MatchState = "failed"
)

// Match is one ordered comparison of two contenders under a framework.
type Match struct {
	ID         string
	Contender1 *Contender
	Contender2 *Contender
	Framework  *assessment.Framework

	Result    *MatchResult
	Timestamp time.Time
	Attempts  int
	State     MatchState
}

// NewMatch creates a pending match with a generated id.
func NewMatch(c1, c2 *Contender, fw *assessment.Framework) *Match {
	return &Match{
		ID:         "match_" + uuid.NewString()[:8],
		Contender1: c1,
		Contender2: c2,
		Framework:  fw,
		State:      MatchPending,
	}
}

// Complete attaches a validated result and transitions to Evaluated.
func (m *Match) Complete(result *MatchResult, at time.Time) {
	m.Result = result
	m.Timestamp = at
	m.State = MatchEvaluated
}

// Fail marks the match terminally failed after attempts are exhausted.
func (m *Match) Fail() { m.State = MatchFailed }

// Record converts the match to its export shape.
func (m *Match) Record() MatchRecord {
	rec := MatchRecord{
		ID:           m.ID,
		Contender1ID: m.Contender1.ID,
		Contender2ID: m.Contender2.ID,
		Result:       m.Result,
		Retries:      m.Attempts,
	}
	if !m.Timestamp.IsZero() {
		ts := m.Timestamp
		rec.Timestamp = &ts
	}
	return rec
}

// MatchRecord is the serialized match shape in a tournament export.
type MatchRecord struct {
	ID           string       `json:"id"`
	Contender1ID string       `json:"contender1_id"`
	Contender2ID string       `json:"contender2_id"`
	Result       *MatchResult `json:"result"`
	Timestamp    *time.Time   `json:"timestamp"`
	Retries      int          `json:"retries"`
}
