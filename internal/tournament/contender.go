package tournament

// Contender is a participant text artifact being judged. Content and
// metadata are immutable for the lifetime of the tournament; Stats is
// mutated exactly once per completed match by the aggregator.
type Contender struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`

	Stats ContenderStats `json:"stats"`
}

// ContenderStats holds the running counters for one contender.
type ContenderStats struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	Points        int     `json:"points"`
	TotalScore    float64 `json:"total_score"`
	MatchesPlayed int     `json:"matches_played"`
}

// WinPercentage is wins over matches played, 0 when no matches.
func (s ContenderStats) WinPercentage() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.MatchesPlayed)
}

// AverageScore is total score over matches played, 0 when no matches.
func (s ContenderStats) AverageScore() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	return s.TotalScore / float64(s.MatchesPlayed)
}

// StatsExport is the serialized stats shape, counters plus derived values.
type StatsExport struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	Points        int     `json:"points"`
	TotalScore    float64 `json:"total_score"`
	MatchesPlayed int     `json:"matches_played"`
	WinPercentage float64 `json:"win_percentage"`
	AverageScore  float64 `json:"average_score"`
}

// Export returns the stats with derived fields filled in.
func (s ContenderStats) Export() StatsExport {
	return StatsExport{
		Wins:          s.Wins,
		Losses:        s.Losses,
		Draws:         s.Draws,
		Points:        s.Points,
		TotalScore:    s.TotalScore,
		MatchesPlayed: s.MatchesPlayed,
		WinPercentage: s.WinPercentage(),
		AverageScore:  s.AverageScore(),
	}
}
