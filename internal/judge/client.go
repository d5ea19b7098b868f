// Package judge wraps the external text-generation model that decides
// matches. The Client interface is the transport boundary: it takes a
// rendered prompt and returns raw text. Cross-cutting concerns (logging,
// rate limiting) are applied via Middleware; retries live in the
// Coordinator because attempts are tracked per match.
package judge

import (
	"context"
	"errors"
)

// Client is the judge capability consumed by the evaluator.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("judge: empty response from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
