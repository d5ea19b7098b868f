package judge

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"tourney/internal/assessment"
	"tourney/internal/prompt"
	"tourney/internal/tournament"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testFramework() *assessment.Framework {
	return &assessment.Framework{
		ID:          "fw_test",
		Description: "judgment of short texts",
		Criteria: []assessment.Criterion{
			{Name: "clarity", Description: "how clear", Weight: 1.0},
		},
		Scoring: assessment.ScoringSystem{
			Type:  "points",
			Scale: assessment.Scale{Min: 1, Max: 10},
		},
	}
}

func testMatch() *tournament.Match {
	c1 := &tournament.Contender{ID: "alpha", Content: "first text"}
	c2 := &tournament.Contender{ID: "beta", Content: "second text"}
	return tournament.NewMatch(c1, c2, testFramework())
}

func testPrompts(t *testing.T) *prompt.Manager {
	t.Helper()
	dir := t.TempDir()
	if err := prompt.EnsureDefaults(dir); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	m, err := prompt.NewManager(dir, nil, "fake-model")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// stubClient returns scripted responses, one per call.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubClient) Name() string { return "stub" }
func (s *stubClient) Close() error { return nil }

func (s *stubClient) Generate(ctx context.Context, p string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", ErrEmptyResponse
}

func poolOf(cli Client) *Pool {
	return NewPool(func(ctx context.Context, model string) (Client, error) {
		return cli, nil
	})
}

const goodVerdict = "```json\n" + `{
  "criteria_scores": {"clarity": {"contender1": 8, "contender2": 5}},
  "contender1_score": 8,
  "contender2_score": 5,
  "winner": "alpha",
  "rationale": "clearer"
}` + "\n```"

func TestEvaluator_SuccessCompletesMatch(t *testing.T) {
	ev := NewEvaluator(testPrompts(t), poolOf(&stubClient{responses: []string{goodVerdict}}))
	m := testMatch()
	if err := ev.Evaluate(context.Background(), m); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if m.State != tournament.MatchEvaluated {
		t.Fatalf("state: %s", m.State)
	}
	if m.Attempts != 1 {
		t.Fatalf("attempts: %d", m.Attempts)
	}
	if m.Result.Winner == nil || *m.Result.Winner != "alpha" {
		t.Fatalf("winner: %v", m.Result.Winner)
	}
}

func TestEvaluator_ExtractionFailureKeepsMatchPending(t *testing.T) {
	ev := NewEvaluator(testPrompts(t), poolOf(&stubClient{responses: []string{"no json here"}}))
	m := testMatch()
	err := ev.Evaluate(context.Background(), m)
	if err == nil {
		t.Fatal("expected error")
	}
	var eErr *EvaluationError
	if !errors.As(err, &eErr) || eErr.Stage != "extract" {
		t.Fatalf("expected extract stage error, got %v", err)
	}
	if m.State != tournament.MatchPending {
		t.Fatalf("state: %s", m.State)
	}
}

func TestEvaluator_ValidationFailureStage(t *testing.T) {
	bad := "```json\n{\"contender1_score\": 8}\n```"
	ev := NewEvaluator(testPrompts(t), poolOf(&stubClient{responses: []string{bad}}))
	err := ev.Evaluate(context.Background(), testMatch())
	var eErr *EvaluationError
	if !errors.As(err, &eErr) || eErr.Stage != "validate" {
		t.Fatalf("expected validate stage error, got %v", err)
	}
}

func TestCoordinator_RetriesWithExponentialBackoff(t *testing.T) {
	cli := &stubClient{
		errs:      []error{errors.New("transient"), errors.New("transient")},
		responses: []string{"", "", goodVerdict},
	}
	ev := NewEvaluator(testPrompts(t), poolOf(cli))
	coord := NewCoordinator(ev, 5, 2*time.Second, testLogger())

	var delays []time.Duration
	coord.Sleep = func(d time.Duration) { delays = append(delays, d) }

	m := testMatch()
	if err := coord.EvaluateWithRetry(context.Background(), m); err != nil {
		t.Fatalf("EvaluateWithRetry: %v", err)
	}
	if m.State != tournament.MatchEvaluated {
		t.Fatalf("state: %s", m.State)
	}
	if m.Attempts != 3 {
		t.Fatalf("attempts: %d", m.Attempts)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays: %v", delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d: got %s want %s", i, delays[i], want[i])
		}
	}
}

func TestCoordinator_ExhaustedAttemptsFailMatchWithoutError(t *testing.T) {
	cli := &stubClient{errs: []error{errors.New("x"), errors.New("x"), errors.New("x")}}
	ev := NewEvaluator(testPrompts(t), poolOf(cli))
	coord := NewCoordinator(ev, 3, time.Millisecond, testLogger())
	coord.Sleep = func(time.Duration) {}

	m := testMatch()
	if err := coord.EvaluateWithRetry(context.Background(), m); err != nil {
		t.Fatalf("failed match must not return an error, got %v", err)
	}
	if m.State != tournament.MatchFailed {
		t.Fatalf("state: %s", m.State)
	}
	if m.Attempts != 3 {
		t.Fatalf("attempts: %d", m.Attempts)
	}
}

func TestCoordinator_PermanentErrorSkipsRetries(t *testing.T) {
	cli := &stubClient{errs: []error{&PermanentError{Err: errors.New("bad key")}}}
	ev := NewEvaluator(testPrompts(t), poolOf(cli))
	coord := NewCoordinator(ev, 5, time.Second, testLogger())
	slept := false
	coord.Sleep = func(time.Duration) { slept = true }

	m := testMatch()
	if err := coord.EvaluateWithRetry(context.Background(), m); err != nil {
		t.Fatalf("EvaluateWithRetry: %v", err)
	}
	if m.State != tournament.MatchFailed || m.Attempts != 1 {
		t.Fatalf("state=%s attempts=%d", m.State, m.Attempts)
	}
	if slept {
		t.Fatal("permanent error must not back off")
	}
}

func TestCoordinator_CancellationReturnsError(t *testing.T) {
	cli := &stubClient{errs: []error{errors.New("transient")}}
	ev := NewEvaluator(testPrompts(t), poolOf(cli))
	coord := NewCoordinator(ev, 5, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := testMatch()
	if err := coord.EvaluateWithRetry(ctx, m); err == nil {
		t.Fatal("expected context error")
	}
	if m.State != tournament.MatchFailed {
		t.Fatalf("state: %s", m.State)
	}
}

func TestFakeClient_DrivesFullEvaluation(t *testing.T) {
	ev := NewEvaluator(testPrompts(t), poolOf(NewFakeClient(42)))
	coord := NewCoordinator(ev, 3, time.Millisecond, testLogger())
	coord.Sleep = func(time.Duration) {}

	m := testMatch()
	if err := coord.EvaluateWithRetry(context.Background(), m); err != nil {
		t.Fatalf("EvaluateWithRetry: %v", err)
	}
	if m.State != tournament.MatchEvaluated {
		t.Fatalf("state: %s", m.State)
	}
	if m.Result.Winner == nil {
		t.Fatal("fake judge always names a winner")
	}
	if w := *m.Result.Winner; w != "alpha" && w != "beta" {
		t.Fatalf("winner %q is not a contender id", w)
	}
}

func TestPool_ReusesClientPerModel(t *testing.T) {
	built := 0
	p := NewPool(func(ctx context.Context, model string) (Client, error) {
		built++
		return &stubClient{}, nil
	})
	ctx := context.Background()
	if _, err := p.For(ctx, "m1"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.For(ctx, "m1"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.For(ctx, "m2"); err != nil {
		t.Fatal(err)
	}
	if built != 2 {
		t.Fatalf("expected 2 constructions, got %d", built)
	}
}
