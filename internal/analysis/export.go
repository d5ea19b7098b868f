package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Exporter writes analysis results under Dir as a CSV summary, one
// detail JSON per group, and a combined JSON with cross-group
// comparison.
type Exporter struct {
	Dir string
	Log *log.Logger

	// Now is overridable for deterministic file names in tests.
	Now func() time.Time
}

func NewExporter(dir string, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{Dir: dir, Log: logger, Now: time.Now}
}

// ExportAll writes every artifact and returns the written paths.
func (e *Exporter) ExportAll(metrics map[string]*GroupMetrics) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create analysis dir: %w", err)
	}
	ts := e.Now().Format("20060102_150405")

	var written []string
	path, err := e.writeSummaryCSV(metrics, ts)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	for _, group := range sortedKeys(metrics) {
		p, err := e.writeGroupJSON(group, metrics[group], ts)
		if err != nil {
			return written, err
		}
		written = append(written, p)
	}

	p, err := e.writeCombinedJSON(metrics, ts)
	if err != nil {
		return written, err
	}
	written = append(written, p)
	return written, nil
}

func (e *Exporter) writeSummaryCSV(metrics map[string]*GroupMetrics, ts string) (string, error) {
	path := filepath.Join(e.Dir, "consistency_summary_"+ts+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Group", "Tournaments",
		"Ranking Stability", "Avg Rank StdDev",
		"Win Rate Consistency", "Avg Win Rate CV",
		"Matchup Consistency",
		"Score Consistency", "Avg Score CV",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write summary csv: %w", err)
	}
	for _, group := range sortedKeys(metrics) {
		m := metrics[group]
		row := []string{
			group,
			fmt.Sprintf("%d", m.Tournaments),
			fmtMetric(m.Ranking.Error, m.Ranking.Overall.RankStability),
			fmtMetric(m.Ranking.Error, m.Ranking.Overall.AvgStdDev),
			fmtMetric(m.WinRate.Error, consistencyFromCV(m.WinRate.Overall.AvgCV)),
			fmtMetric(m.WinRate.Error, m.WinRate.Overall.AvgCV),
			fmtMetric(m.Matchup.Error, m.Matchup.Overall.AvgConsistency),
			fmtMetric(m.Score.Error, consistencyFromCV(m.Score.Overall.AvgCV)),
			fmtMetric(m.Score.Error, m.Score.Overall.AvgCV),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write summary csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write summary csv: %w", err)
	}
	e.Log.Printf("analysis: wrote %s", path)
	return path, nil
}

func (e *Exporter) writeGroupJSON(group string, m *GroupMetrics, ts string) (string, error) {
	path := filepath.Join(e.Dir, "consistency_"+slug(group)+"_"+ts+".json")
	doc := struct {
		Group       string        `json:"group"`
		GeneratedAt string        `json:"generated_at"`
		Metrics     *GroupMetrics `json:"metrics"`
	}{Group: group, GeneratedAt: e.Now().Format(time.RFC3339), Metrics: m}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal group %q: %w", group, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write group %q: %w", group, err)
	}
	e.Log.Printf("analysis: wrote %s", path)
	return path, nil
}

// Comparison names the best-performing group per metric.
type Comparison struct {
	MostStableRankings    string `json:"most_stable_rankings,omitempty"`
	MostConsistentWinRate string `json:"most_consistent_win_rates,omitempty"`
	MostConsistentMatchup string `json:"most_consistent_matchups,omitempty"`
	MostConsistentScores  string `json:"most_consistent_scores,omitempty"`
}

func (e *Exporter) writeCombinedJSON(metrics map[string]*GroupMetrics, ts string) (string, error) {
	path := filepath.Join(e.Dir, "consistency_combined_"+ts+".json")
	doc := struct {
		GeneratedAt string                   `json:"generated_at"`
		GroupCount  int                      `json:"group_count"`
		Comparison  Comparison               `json:"comparison"`
		Groups      map[string]*GroupMetrics `json:"groups"`
	}{
		GeneratedAt: e.Now().Format(time.RFC3339),
		GroupCount:  len(metrics),
		Comparison:  Compare(metrics),
		Groups:      metrics,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal combined summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write combined summary: %w", err)
	}
	e.Log.Printf("analysis: wrote %s", path)
	return path, nil
}

// Compare picks, per metric, the group with the best value among groups
// where that metric computed cleanly.
func Compare(metrics map[string]*GroupMetrics) Comparison {
	var c Comparison
	best := func(pick func(*GroupMetrics) (float64, bool), higher bool) string {
		winner := ""
		var winning float64
		for _, group := range sortedKeys(metrics) {
			v, ok := pick(metrics[group])
			if !ok {
				continue
			}
			if winner == "" || (higher && v > winning) || (!higher && v < winning) {
				winner, winning = group, v
			}
		}
		return winner
	}
	c.MostStableRankings = best(func(m *GroupMetrics) (float64, bool) {
		return m.Ranking.Overall.RankStability, m.Ranking.Error == "" && m.Ranking.Note == ""
	}, true)
	c.MostConsistentWinRate = best(func(m *GroupMetrics) (float64, bool) {
		return m.WinRate.Overall.AvgCV, m.WinRate.Error == "" && m.WinRate.Note == ""
	}, false)
	c.MostConsistentMatchup = best(func(m *GroupMetrics) (float64, bool) {
		return m.Matchup.Overall.AvgConsistency, m.Matchup.Error == "" && m.Matchup.Note == ""
	}, true)
	c.MostConsistentScores = best(func(m *GroupMetrics) (float64, bool) {
		return m.Score.Overall.AvgCV, m.Score.Error == "" && m.Score.Note == ""
	}, false)
	return c
}

// consistencyFromCV maps a coefficient of variation onto [0, 1], where
// 1 means no variation at all.
func consistencyFromCV(cv float64) float64 {
	v := 1 - cv
	if v < 0 {
		return 0
	}
	return v
}

func fmtMetric(errMsg string, v float64) string {
	if errMsg != "" {
		return "error"
	}
	return fmt.Sprintf("%.4f", v)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
