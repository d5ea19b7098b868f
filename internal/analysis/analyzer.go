// Package analysis aggregates many independent tournament runs into
// cross-run consistency metrics: rank stability, win-rate variance,
// pairwise matchup agreement, and score variance. Each metric is
// fault-isolated: a failure computing one metric for one group is
// reported inline and never prevents the other metrics or groups from
// being computed.
package analysis

import (
	"fmt"
	"log"
	"math"
	"sort"

	"tourney/internal/analysis/statutil"
)

// minPairOverlap is the smallest number of common contenders two runs
// must share for their Spearman correlation to be meaningful.
const minPairOverlap = 3

// InsufficientData marks a group without enough usable runs for a
// metric. It is a note, not a failure.
const InsufficientData = "insufficient data: need at least 2 usable tournaments"

// RankStats summarizes one contender's rank across the runs of a group.
type RankStats struct {
	Ranks       []float64 `json:"ranks"`
	MeanRank    float64   `json:"mean_rank"`
	MedianRank  float64   `json:"median_rank"`
	StdDev      float64   `json:"std_dev"`
	MinRank     float64   `json:"min_rank"`
	MaxRank     float64   `json:"max_rank"`
	Range       float64   `json:"range"`
	Tournaments int       `json:"tournaments"`
}

// RankingOverall is the group-level ranking consistency block.
type RankingOverall struct {
	AvgStdDev       float64  `json:"avg_stdev"`
	RankStability   float64  `json:"rank_stability"`
	MinCorrelation  *float64 `json:"min_correlation,omitempty"`
	MaxCorrelation  *float64 `json:"max_correlation,omitempty"`
	ContenderCount  int      `json:"contender_count"`
	TournamentCount int      `json:"tournament_count"`
}

type RankingConsistency struct {
	Overall    RankingOverall       `json:"overall"`
	Contenders map[string]RankStats `json:"contenders"`
	Note       string               `json:"note,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// RateStats summarizes a per-run rate or score series for one contender.
type RateStats struct {
	Values      []float64 `json:"values"`
	Mean        float64   `json:"mean"`
	Median      float64   `json:"median"`
	StdDev      float64   `json:"std_dev"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Range       float64   `json:"range"`
	CV          float64   `json:"coefficient_of_variation"`
	Tournaments int       `json:"tournaments"`
}

// VariationOverall is the group-level block shared by the win-rate and
// score calculators.
type VariationOverall struct {
	AvgStdDev       float64 `json:"avg_stdev"`
	AvgCV           float64 `json:"avg_coefficient_of_variation"`
	ContenderCount  int     `json:"contender_count"`
	TournamentCount int     `json:"tournament_count"`
}

type VariationConsistency struct {
	Overall    VariationOverall     `json:"overall"`
	Contenders map[string]RateStats `json:"contenders"`
	Note       string               `json:"note,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Matchup outcome labels, in dominant-outcome tie-break priority order.
const (
	OutcomeFirstWin  = "first_win"
	OutcomeSecondWin = "second_win"
	OutcomeTie       = "tie"
)

// MatchupStats summarizes the recorded outcomes of one unordered pair.
// Outcomes are classified against the canonical (sorted) pair key, so
// contender order in a match never flips the classification.
type MatchupStats struct {
	Outcomes          []string       `json:"outcomes"`
	Matches           int            `json:"matches"`
	DominantOutcome   string         `json:"dominant_outcome"`
	DominantFrequency float64        `json:"dominant_frequency"`
	ConsistencyScore  float64        `json:"consistency_score"`
	OutcomeCounts     map[string]int `json:"outcome_counts"`
}

type MatchupOverall struct {
	AvgConsistency  float64 `json:"avg_consistency"`
	MatchupCount    int     `json:"matchup_count"`
	TournamentCount int     `json:"tournament_count"`
}

type MatchupConsistency struct {
	Overall  MatchupOverall          `json:"overall"`
	Matchups map[string]MatchupStats `json:"matchups"`
	Note     string                  `json:"note,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// GroupMetrics bundles the four metric blocks for one group.
type GroupMetrics struct {
	Tournaments int                  `json:"tournaments"`
	Ranking     RankingConsistency   `json:"ranking_consistency"`
	WinRate     VariationConsistency `json:"win_rate_consistency"`
	Matchup     MatchupConsistency   `json:"matchup_consistency"`
	Score       VariationConsistency `json:"score_consistency"`
}

// Analyzer computes consistency metrics over grouped tournament runs.
type Analyzer struct {
	Log *log.Logger
}

func NewAnalyzer(logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{Log: logger}
}

// Analyze computes all four metrics for every group. Metric failures
// are captured per block; groups are processed in sorted key order.
func (a *Analyzer) Analyze(groups map[string][]RunDoc) map[string]*GroupMetrics {
	out := make(map[string]*GroupMetrics, len(groups))
	for _, name := range sortedKeys(groups) {
		runs := groups[name]
		a.Log.Printf("analyzing %d tournaments in group %q", len(runs), name)
		ids := ContenderIDs(runs)
		m := &GroupMetrics{Tournaments: len(runs)}
		a.guard(name, "ranking_consistency", &m.Ranking.Error, func() {
			m.Ranking = RankingConsistencyOf(runs, ids)
		})
		a.guard(name, "win_rate_consistency", &m.WinRate.Error, func() {
			m.WinRate = WinRateConsistencyOf(runs, ids)
		})
		a.guard(name, "matchup_consistency", &m.Matchup.Error, func() {
			m.Matchup = MatchupConsistencyOf(runs)
		})
		a.guard(name, "score_consistency", &m.Score.Error, func() {
			m.Score = ScoreConsistencyOf(runs, ids)
		})
		out[name] = m
	}
	return out
}

// guard runs one calculator, converting a panic into an inline error
// marker on the metric block.
func (a *Analyzer) guard(group, metric string, errField *string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.Log.Printf("analysis: %s failed for group %q: %v", metric, group, r)
			*errField = fmt.Sprintf("computation failed: %v", r)
		}
	}()
	fn()
}

// RankingConsistencyOf computes per-contender rank spread and the
// group-level rank stability (mean pairwise Spearman correlation over
// run pairs sharing at least minPairOverlap common contenders).
func RankingConsistencyOf(runs []RunDoc, contenderIDs []string) RankingConsistency {
	out := RankingConsistency{Contenders: map[string]RankStats{}}
	out.Overall.TournamentCount = len(runs)
	if len(runs) < 2 {
		out.Note = InsufficientData
		return out
	}

	ranksByRun := make([]map[string]float64, 0, len(runs))
	for _, run := range runs {
		ranks := make(map[string]float64)
		for _, r := range run.Rankings {
			if r.ContenderID != "" && r.Rank > 0 {
				ranks[r.ContenderID] = float64(r.Rank)
			}
		}
		ranksByRun = append(ranksByRun, ranks)
	}

	var stdDevs []float64
	for _, id := range contenderIDs {
		var ranks []float64
		for _, byID := range ranksByRun {
			if r, ok := byID[id]; ok {
				ranks = append(ranks, r)
			}
		}
		if len(ranks) < 2 {
			continue
		}
		min, max := statutil.MinMax(ranks)
		sd := statutil.StdDev(ranks)
		out.Contenders[id] = RankStats{
			Ranks:       ranks,
			MeanRank:    statutil.Mean(ranks),
			MedianRank:  statutil.Median(ranks),
			StdDev:      sd,
			MinRank:     min,
			MaxRank:     max,
			Range:       max - min,
			Tournaments: len(ranks),
		}
		stdDevs = append(stdDevs, sd)
	}
	out.Overall.ContenderCount = len(out.Contenders)
	out.Overall.AvgStdDev = statutil.Mean(stdDevs)

	// Pairwise Spearman over runs; undefined correlations are
	// discarded, not counted as zero.
	var correlations []float64
	for i := 0; i < len(ranksByRun); i++ {
		for j := i + 1; j < len(ranksByRun); j++ {
			var ranks1, ranks2 []float64
			for id, r1 := range ranksByRun[i] {
				if r2, ok := ranksByRun[j][id]; ok {
					ranks1 = append(ranks1, r1)
					ranks2 = append(ranks2, r2)
				}
			}
			if len(ranks1) < minPairOverlap {
				continue
			}
			corr := statutil.Spearman(ranks1, ranks2)
			if !math.IsNaN(corr) {
				correlations = append(correlations, corr)
			}
		}
	}
	if len(correlations) > 0 {
		out.Overall.RankStability = statutil.Mean(correlations)
		min, max := statutil.MinMax(correlations)
		out.Overall.MinCorrelation = &min
		out.Overall.MaxCorrelation = &max
	}
	return out
}

// WinRateConsistencyOf computes per-contender win-rate spread and the
// group's average coefficient of variation (zero/undefined CVs are
// excluded from the average).
func WinRateConsistencyOf(runs []RunDoc, contenderIDs []string) VariationConsistency {
	return variationOf(runs, contenderIDs, func(s StatsDoc) float64 {
		if s.MatchesPlayed == 0 {
			return 0
		}
		return float64(s.Wins) / float64(s.MatchesPlayed)
	})
}

// ScoreConsistencyOf is the same treatment over per-run average scores:
// average_score when present, else total_score/matches_played, else 0.
func ScoreConsistencyOf(runs []RunDoc, contenderIDs []string) VariationConsistency {
	return variationOf(runs, contenderIDs, func(s StatsDoc) float64 {
		if s.AverageScore != nil {
			return *s.AverageScore
		}
		if s.MatchesPlayed > 0 {
			return s.TotalScore / float64(s.MatchesPlayed)
		}
		return 0
	})
}

func variationOf(runs []RunDoc, contenderIDs []string, value func(StatsDoc) float64) VariationConsistency {
	out := VariationConsistency{Contenders: map[string]RateStats{}}
	out.Overall.TournamentCount = len(runs)
	if len(runs) < 2 {
		out.Note = InsufficientData
		return out
	}

	byRun := make([]map[string]float64, 0, len(runs))
	for _, run := range runs {
		vals := make(map[string]float64)
		for _, r := range run.Rankings {
			if r.ContenderID != "" {
				vals[r.ContenderID] = value(r.Stats)
			}
		}
		byRun = append(byRun, vals)
	}

	var stdDevs, cvs []float64
	for _, id := range contenderIDs {
		var vals []float64
		for _, m := range byRun {
			if v, ok := m[id]; ok {
				vals = append(vals, v)
			}
		}
		if len(vals) < 2 {
			continue
		}
		mean := statutil.Mean(vals)
		sd := statutil.StdDev(vals)
		cv := 0.0
		// CV is defined only for a positive mean.
		if mean > 0 {
			cv = sd / mean
		}
		min, max := statutil.MinMax(vals)
		out.Contenders[id] = RateStats{
			Values:      vals,
			Mean:        mean,
			Median:      statutil.Median(vals),
			StdDev:      sd,
			Min:         min,
			Max:         max,
			Range:       max - min,
			CV:          cv,
			Tournaments: len(vals),
		}
		stdDevs = append(stdDevs, sd)
		if cv != 0 && !math.IsNaN(cv) {
			cvs = append(cvs, cv)
		}
	}
	out.Overall.ContenderCount = len(out.Contenders)
	out.Overall.AvgStdDev = statutil.Mean(stdDevs)
	out.Overall.AvgCV = statutil.Mean(cvs)
	return out
}

// MatchupConsistencyOf classifies every recorded match outcome against
// the canonical (sorted) pair key and reports, per pair with at least
// two observations, how often the dominant outcome occurred. Ties
// between outcome counts resolve by fixed priority: first_win, then
// second_win, then tie.
func MatchupConsistencyOf(runs []RunDoc) MatchupConsistency {
	out := MatchupConsistency{Matchups: map[string]MatchupStats{}}
	out.Overall.TournamentCount = len(runs)
	if len(runs) < 2 {
		out.Note = InsufficientData
		return out
	}

	outcomes := make(map[[2]string][]string)
	for _, run := range runs {
		for _, m := range run.Matches {
			if m.Contender1ID == "" || m.Contender2ID == "" {
				continue
			}
			first, second := m.Contender1ID, m.Contender2ID
			if second < first {
				first, second = second, first
			}
			key := [2]string{first, second}

			outcome := OutcomeTie
			if m.Result != nil && m.Result.Winner != nil {
				switch *m.Result.Winner {
				case first:
					outcome = OutcomeFirstWin
				case second:
					outcome = OutcomeSecondWin
				}
			}
			outcomes[key] = append(outcomes[key], outcome)
		}
	}

	var scores []float64
	for key, obs := range outcomes {
		if len(obs) < 2 {
			continue
		}
		counts := map[string]int{OutcomeFirstWin: 0, OutcomeSecondWin: 0, OutcomeTie: 0}
		for _, o := range obs {
			counts[o]++
		}
		dominant := OutcomeFirstWin
		for _, candidate := range []string{OutcomeSecondWin, OutcomeTie} {
			if counts[candidate] > counts[dominant] {
				dominant = candidate
			}
		}
		freq := float64(counts[dominant]) / float64(len(obs))
		out.Matchups[key[0]+" vs "+key[1]] = MatchupStats{
			Outcomes:          obs,
			Matches:           len(obs),
			DominantOutcome:   dominant,
			DominantFrequency: freq,
			ConsistencyScore:  freq,
			OutcomeCounts:     counts,
		}
		scores = append(scores, freq)
	}
	out.Overall.MatchupCount = len(out.Matchups)
	out.Overall.AvgConsistency = statutil.Mean(scores)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
