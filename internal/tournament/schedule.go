package tournament

import (
	"tourney/internal/assessment"
)

// ScheduleOptions controls round-robin match planning.
type ScheduleOptions struct {
	RoundsPerMatchup int
	ReverseMatchups  bool
}

// Plan produces the deterministic round-robin match list. For every
// round, every unordered pair of contenders (in stable combination
// order over the input sequence) yields one match; with ReverseMatchups
// the swapped pair immediately follows. Identical inputs always yield
// the same match order.
func Plan(contenders []*Contender, fw *assessment.Framework, opts ScheduleOptions) []*Match {
	rounds := opts.RoundsPerMatchup
	if rounds < 1 {
		rounds = 1
	}
	pairs := combinations(len(contenders))
	matches := make([]*Match, 0, rounds*len(pairs)*2)
	for round := 0; round < rounds; round++ {
		for _, p := range pairs {
			c1, c2 := contenders[p[0]], contenders[p[1]]
			matches = append(matches, NewMatch(c1, c2, fw))
			if opts.ReverseMatchups {
				matches = append(matches, NewMatch(c2, c1, fw))
			}
		}
	}
	return matches
}

// combinations returns index pairs (i, j) with i < j in lexicographic order.
func combinations(n int) [][2]int {
	var out [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}
