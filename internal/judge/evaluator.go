package judge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tourney/internal/extract"
	"tourney/internal/prompt"
	"tourney/internal/tournament"
)

// EvaluationError wraps any failure during one evaluation attempt:
// prompt resolution, the judge call, extraction, or validation.
type EvaluationError struct {
	MatchID string
	Stage   string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate match %s (%s): %v", e.MatchID, e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Evaluator drives one evaluation attempt: render the match prompt,
// resolve the judge model, invoke it, then extract and validate the
// response into a typed result. On success the match transitions to
// Evaluated; on any failure it stays Pending. Attempts is incremented
// either way.
type Evaluator struct {
	Prompts *prompt.Manager
	Clients *Pool
	Now     func() time.Time
}

// NewEvaluator wires the evaluator. Now defaults to time.Now.
func NewEvaluator(prompts *prompt.Manager, clients *Pool) *Evaluator {
	return &Evaluator{Prompts: prompts, Clients: clients, Now: time.Now}
}

// Evaluate performs a single attempt on a pending match.
func (e *Evaluator) Evaluate(ctx context.Context, m *tournament.Match) error {
	m.Attempts++

	vars := map[string]string{
		"framework_description": m.Framework.Description,
		"formatted_criteria":    m.Framework.FormattedCriteria(),
		"formatted_rules":       m.Framework.FormattedRules(),
		"formatted_scoring":     m.Framework.FormattedScoring(),
		"contender1_id":         m.Contender1.ID,
		"contender1_content":    m.Contender1.Content,
		"contender2_id":         m.Contender2.ID,
		"contender2_content":    m.Contender2.Content,
	}
	rendered, err := e.Prompts.Render(prompt.MatchEvaluation, vars)
	if err != nil {
		return &EvaluationError{MatchID: m.ID, Stage: "prompt", Err: err}
	}

	model := e.Prompts.ModelFor(prompt.MatchEvaluation)
	cli, err := e.Clients.For(ctx, model)
	if err != nil {
		return &EvaluationError{MatchID: m.ID, Stage: "judge", Err: err}
	}
	raw, err := cli.Generate(ctx, rendered)
	if err != nil {
		return &EvaluationError{MatchID: m.ID, Stage: "judge", Err: err}
	}

	obj, err := extract.Object(raw)
	if err != nil {
		return &EvaluationError{MatchID: m.ID, Stage: "extract", Err: err}
	}
	result, err := tournament.ValidateResult(obj, m.Contender1.ID, m.Contender2.ID)
	if err != nil {
		return &EvaluationError{MatchID: m.ID, Stage: "validate", Err: err}
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	m.Complete(result, now())
	return nil
}

// Coordinator wraps the evaluator with bounded exponential backoff.
// Attempt k (counted from 1) sleeps BaseDelay * 2^(k-1) before attempt
// k+1. When attempts are exhausted the match is marked Failed and the
// coordinator returns nil: a failed match is recorded, not re-raised.
type Coordinator struct {
	Evaluator   *Evaluator
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration) // injectable for deterministic tests
	Log         *log.Logger
}

// NewCoordinator builds a coordinator with sane bounds.
func NewCoordinator(ev *Evaluator, maxAttempts int, baseDelay time.Duration, logger *log.Logger) *Coordinator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		Evaluator:   ev,
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Log:         logger,
	}
}

// EvaluateWithRetry drives the match to a terminal state. Only context
// cancellation is returned as an error.
func (c *Coordinator) EvaluateWithRetry(ctx context.Context, m *tournament.Match) error {
	for {
		err := c.Evaluator.Evaluate(ctx, m)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			m.Fail()
			return ctxErr
		}
		if isPermanent(err) || m.Attempts >= c.MaxAttempts {
			c.Log.Printf("match %s failed after %d attempts: %v", m.ID, m.Attempts, err)
			m.Fail()
			return nil
		}
		delay := c.BaseDelay * (1 << (m.Attempts - 1))
		c.Log.Printf("retry %d/%d for match %s in %s: %v", m.Attempts, c.MaxAttempts, m.ID, delay, err)
		c.sleep(ctx, delay)
	}
}

func (c *Coordinator) sleep(ctx context.Context, d time.Duration) {
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func isPermanent(err error) bool {
	var pErr *PermanentError
	return errors.As(err, &pErr)
}
