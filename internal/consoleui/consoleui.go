// Package consoleui renders tournament progress and results as plain
// text for the CLI binaries. All output goes through an io.Writer so
// tests can capture it.
package consoleui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"tourney/internal/tournament"
)

type UI struct {
	Out io.Writer
}

func New(out io.Writer) *UI {
	if out == nil {
		out = os.Stdout
	}
	return &UI{Out: out}
}

func (u *UI) Banner(frameworkName string, contenders, matches int) {
	u.rule()
	fmt.Fprintf(u.Out, "Tournament: %s\n", frameworkName)
	fmt.Fprintf(u.Out, "Contenders: %d   Scheduled matches: %d\n", contenders, matches)
	u.rule()
}

// MatchStarted prints a one-line header before a matchup is judged.
func (u *UI) MatchStarted(m *tournament.Match, index, total int) {
	fmt.Fprintf(u.Out, "[%d/%d] %s vs %s\n", index, total, m.Contender1.ID, m.Contender2.ID)
}

// MatchCompleted prints the verdict, or the failure after retries.
func (u *UI) MatchCompleted(m *tournament.Match) {
	if m.State == tournament.MatchFailed {
		fmt.Fprintf(u.Out, "  failed after %d attempts\n", m.Attempts)
		return
	}
	r := m.Result
	if r == nil {
		return
	}
	verdict := "draw"
	if r.Winner != nil {
		verdict = "winner: " + *r.Winner
	}
	fmt.Fprintf(u.Out, "  %s (%.1f - %.1f)\n", verdict, r.Contender1Score, r.Contender2Score)
	if r.Rationale != "" {
		fmt.Fprintf(u.Out, "  %s\n", truncate(r.Rationale, 160))
	}
}

// Standings renders the ranking table.
func (u *UI) Standings(rankings []tournament.Ranking) {
	u.rule()
	fmt.Fprintln(u.Out, "Final standings")
	u.rule()
	fmt.Fprintf(u.Out, "%-4s %-24s %6s %4s %4s %4s %7s %8s\n",
		"Rank", "Contender", "Pts", "W", "D", "L", "Win%", "AvgScore")
	for _, r := range rankings {
		fmt.Fprintf(u.Out, "%-4d %-24s %6d %4d %4d %4d %6.1f%% %8.2f\n",
			r.Rank, truncate(r.ContenderID, 24),
			r.Stats.Points, r.Stats.Wins, r.Stats.Draws, r.Stats.Losses,
			r.Stats.WinPercentage*100, r.Stats.AverageScore)
	}
	u.rule()
}

func (u *UI) Completion(evaluated, failed int, savedTo string) {
	fmt.Fprintf(u.Out, "Tournament complete: %d matches evaluated, %d failed\n", evaluated, failed)
	if savedTo != "" {
		fmt.Fprintf(u.Out, "Results saved to %s\n", savedTo)
	}
}

func (u *UI) rule() {
	fmt.Fprintln(u.Out, strings.Repeat("=", 64))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
