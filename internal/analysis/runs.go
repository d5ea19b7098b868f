package analysis

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// RunDoc is the loosely-typed view of one tournament export that the
// calculators read. Fields missing from a document decode to their zero
// values; the calculators tolerate partial data instead of aborting.
type RunDoc struct {
	Name string `json:"-"` // source document name
	Raw  []byte `json:"-"` // original bytes, for group-key traversal

	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Rankings []RankingDoc `json:"rankings"`
	Matches  []MatchDoc   `json:"matches"`
}

type RankingDoc struct {
	Rank        int      `json:"rank"`
	ContenderID string   `json:"contender_id"`
	Stats       StatsDoc `json:"stats"`
}

type StatsDoc struct {
	Wins          int      `json:"wins"`
	MatchesPlayed int      `json:"matches_played"`
	TotalScore    float64  `json:"total_score"`
	AverageScore  *float64 `json:"average_score"`
}

type MatchDoc struct {
	Contender1ID string     `json:"contender1_id"`
	Contender2ID string     `json:"contender2_id"`
	Result       *ResultDoc `json:"result"`
}

type ResultDoc struct {
	Winner *string `json:"winner"`
}

// ParseRuns decodes result documents, skipping (and logging) any that
// are not valid JSON. One corrupt file must not sink the analysis.
func ParseRuns(docs map[string]json.RawMessage, logger *log.Logger) []RunDoc {
	if logger == nil {
		logger = log.Default()
	}
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]RunDoc, 0, len(docs))
	for _, name := range names {
		var run RunDoc
		if err := json.Unmarshal(docs[name], &run); err != nil {
			logger.Printf("analysis: skipping %s: %v", name, err)
			continue
		}
		run.Name = name
		run.Raw = docs[name]
		out = append(out, run)
	}
	return out
}

// UnknownGroup is the sentinel group key for runs whose config does not
// contain the requested path.
const UnknownGroup = "unknown"

// GroupRuns buckets runs by the value at the dotted path into each
// run's document (e.g. "config.llm.default_model"). An empty path puts
// everything into one "all" group; a missing path segment buckets the
// run under UnknownGroup.
func GroupRuns(runs []RunDoc, path string) map[string][]RunDoc {
	groups := make(map[string][]RunDoc)
	for _, run := range runs {
		key := "all"
		if path != "" {
			key = groupKey(run.Raw, path)
		}
		groups[key] = append(groups[key], run)
	}
	return groups
}

// groupKey walks the dotted path through the decoded document.
func groupKey(raw []byte, path string) string {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return UnknownGroup
	}
	var value any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return UnknownGroup
		}
		value, ok = m[part]
		if !ok {
			return UnknownGroup
		}
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return UnknownGroup
		}
		return v
	case nil:
		return UnknownGroup
	default:
		return fmt.Sprint(v)
	}
}

// ContenderIDs is the explicit discovery pass: the sorted set of
// contender ids appearing in any run's rankings.
func ContenderIDs(runs []RunDoc) []string {
	seen := make(map[string]bool)
	for _, run := range runs {
		for _, r := range run.Rankings {
			if r.ContenderID != "" {
				seen[r.ContenderID] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
