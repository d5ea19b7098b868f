// Package tournament implements the round-robin engine: contenders,
// match planning, result validation, stats aggregation, and the result
// export model consumed by the consistency analyzer.
package tournament

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"tourney/internal/assessment"
)

// Tournament status values.
const (
	StatusInitialized = "initialized"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
)

// Evaluator drives one match to a terminal state, including retries.
// A nil return does not imply success: the match itself records whether
// it ended Evaluated or Failed. Errors are reserved for cancellation.
type Evaluator interface {
	EvaluateWithRetry(ctx context.Context, m *Match) error
}

// Observer receives progress callbacks during a run. Implementations
// must not mutate the tournament.
type Observer interface {
	MatchStarted(t *Tournament, m *Match, index int)
	MatchCompleted(t *Tournament, m *Match)
	Completed(t *Tournament)
}

// Observers fans callbacks out to several observers in order.
type Observers []Observer

func (obs Observers) MatchStarted(t *Tournament, m *Match, index int) {
	for _, o := range obs {
		o.MatchStarted(t, m, index)
	}
}

func (obs Observers) MatchCompleted(t *Tournament, m *Match) {
	for _, o := range obs {
		o.MatchCompleted(t, m)
	}
}

func (obs Observers) Completed(t *Tournament) {
	for _, o := range obs {
		o.Completed(t)
	}
}

// Tournament owns the contenders, the planned match list, and the
// aggregation of results. Matches run strictly one at a time in
// scheduler order, so contender stats never need locking.
type Tournament struct {
	ID        string
	Framework *assessment.Framework
	Config    json.RawMessage

	Contenders []*Contender
	byID       map[string]*Contender

	Matches   []*Match
	StartTime time.Time
	EndTime   time.Time
	Status    string

	schedule ScheduleOptions
	agg      *Aggregator
}

// New creates an initialized tournament. The config snapshot is embedded
// verbatim into the result export so analysis runs can group by it.
func New(contenders []*Contender, fw *assessment.Framework, configSnapshot json.RawMessage, schedule ScheduleOptions, agg *Aggregator) *Tournament {
	byID := make(map[string]*Contender, len(contenders))
	for _, c := range contenders {
		byID[c.ID] = c
	}
	return &Tournament{
		ID:         "tournament_" + uuid.NewString()[:8],
		Framework:  fw,
		Config:     configSnapshot,
		Contenders: contenders,
		byID:       byID,
		Status:     StatusInitialized,
		schedule:   schedule,
		agg:        agg,
	}
}

// Contender returns the contender with the given id, if registered.
func (t *Tournament) Contender(id string) (*Contender, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// PlanMatches builds the match list. Safe to call once before Run;
// Run plans implicitly when the list is empty.
func (t *Tournament) PlanMatches() []*Match {
	t.Matches = Plan(t.Contenders, t.Framework, t.schedule)
	return t.Matches
}

// Run executes all matches sequentially. Failed matches are recorded
// and excluded from aggregation; they do not abort the tournament.
// Only context cancellation stops the run early.
func (t *Tournament) Run(ctx context.Context, ev Evaluator, obs Observer) error {
	if len(t.Matches) == 0 {
		t.PlanMatches()
	}
	t.StartTime = time.Now()
	t.Status = StatusInProgress

	for i, m := range t.Matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if obs != nil {
			obs.MatchStarted(t, m, i)
		}
		if err := ev.EvaluateWithRetry(ctx, m); err != nil {
			return err
		}
		if m.State == MatchEvaluated {
			t.agg.Apply(m)
		}
		if obs != nil {
			obs.MatchCompleted(t, m)
		}
	}

	t.EndTime = time.Now()
	t.Status = StatusCompleted
	if obs != nil {
		obs.Completed(t)
	}
	return nil
}

// Progress reports current match-completion statistics.
func (t *Tournament) Progress() RunStats {
	total := len(t.Matches)
	completed := 0
	for _, m := range t.Matches {
		if m.Result != nil {
			completed++
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}
	return RunStats{
		TotalContenders:    len(t.Contenders),
		TotalMatches:       total,
		CompletedMatches:   completed,
		RemainingMatches:   total - completed,
		ProgressPercentage: pct,
	}
}

// Standings ranks contenders by points, then wins, then average score.
func (t *Tournament) Standings() []Ranking {
	rows := make([]Ranking, 0, len(t.Contenders))
	for _, c := range t.Contenders {
		rows = append(rows, Ranking{
			ContenderID: c.ID,
			Content:     c.Content,
			Stats:       c.Stats.Export(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Stats, rows[j].Stats
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.AverageScore > b.AverageScore
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Export freezes the tournament into its result model.
func (t *Tournament) Export() *Run {
	run := &Run{
		ID:          t.ID,
		StartTime:   t.StartTime,
		Status:      t.Status,
		FrameworkID: t.Framework.ID,
		Config:      t.Config,
		Statistics:  t.Progress(),
		Rankings:    t.Standings(),
	}
	if !t.EndTime.IsZero() {
		end := t.EndTime
		run.EndTime = &end
	}
	run.Matches = make([]MatchRecord, 0, len(t.Matches))
	for _, m := range t.Matches {
		run.Matches = append(run.Matches, m.Record())
	}
	return run
}
