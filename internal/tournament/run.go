package tournament

import (
	"encoding/json"
	"time"
)

// RunStats summarizes match progress for an export.
type RunStats struct {
	TotalContenders    int     `json:"total_contenders"`
	TotalMatches       int     `json:"total_matches"`
	CompletedMatches   int     `json:"completed_matches"`
	RemainingMatches   int     `json:"remaining_matches"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// Ranking is one row of the final standings.
type Ranking struct {
	Rank        int         `json:"rank"`
	ContenderID string      `json:"contender_id"`
	Content     string      `json:"content"`
	Stats       StatsExport `json:"stats"`
}

// Run is the tournament result export, the unit of input to the
// consistency analyzer. Logically frozen once Status is "completed".
type Run struct {
	ID          string          `json:"id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time"`
	Status      string          `json:"status"`
	FrameworkID string          `json:"assessment_framework_id"`
	Config      json.RawMessage `json:"config"`
	Statistics  RunStats        `json:"statistics"`
	Rankings    []Ranking       `json:"rankings"`
	Matches     []MatchRecord   `json:"matches"`
}
