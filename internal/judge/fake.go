package judge

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
)

// FakeClient produces deterministic-looking verdicts without any network
// call, for offline runs and tests. It reads the contender ids out of
// the rendered prompt and scores them pseudo-randomly on the scale.
type FakeClient struct {
	rng *rand.Rand
}

// NewFakeClient seeds the fake judge. The same seed yields the same
// sequence of verdicts.
func NewFakeClient(seed int64) *FakeClient {
	return &FakeClient{rng: rand.New(rand.NewSource(seed))}
}

func (f *FakeClient) Name() string { return "FakeJudge" }
func (f *FakeClient) Close() error { return nil }

var contenderLine = regexp.MustCompile(`### Contender [12]: (\S+)`)

func (f *FakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ids := contenderLine.FindAllStringSubmatch(prompt, 2)
	id1, id2 := "contender1", "contender2"
	if len(ids) == 2 {
		id1, id2 = ids[0][1], ids[1][1]
	}
	s1 := 4 + f.rng.Float64()*5
	s2 := 4 + f.rng.Float64()*5
	winner := fmt.Sprintf("%q", id1)
	if s2 > s1 {
		winner = fmt.Sprintf("%q", id2)
	}
	return fmt.Sprintf("```json\n{\n"+
		"  \"criteria_scores\": {\"overall\": {\"contender1\": %.1f, \"contender2\": %.1f}},\n"+
		"  \"contender1_score\": %.1f,\n"+
		"  \"contender2_score\": %.1f,\n"+
		"  \"winner\": %s,\n"+
		"  \"rationale\": \"Simulated verdict for offline runs.\"\n"+
		"}\n```", s1, s2, s1, s2, winner), nil
}
