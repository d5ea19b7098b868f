package judge

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Middleware decorates a Client to inject cross-cutting concerns.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithLogging logs request size and errors. Provide a custom logger or
// nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, prompt string) (string, error) {
	l.log.Printf("judge request (%s): %d bytes", l.next.Name(), len(prompt))
	out, err := l.next.Generate(ctx, prompt)
	if err != nil {
		l.log.Printf("judge error (%s): %v", l.next.Name(), err)
	}
	return out, err
}

// WithTimeout bounds each Generate call. Zero or negative d disables
// the deadline.
func WithTimeout(d time.Duration) Middleware {
	return func(next Client) Client {
		return &timeout{next: next, d: d}
	}
}

type timeout struct {
	next Client
	d    time.Duration
}

func (t *timeout) Name() string { return t.next.Name() }
func (t *timeout) Close() error { return t.next.Close() }

func (t *timeout) Generate(ctx context.Context, prompt string) (string, error) {
	if t.d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.d)
		defer cancel()
	}
	return t.next.Generate(ctx, prompt)
}

// RateLimit throttles Generate calls to at most rps per second with an
// optional burst capacity. If rps <= 0 the limiter is disabled and the
// client is returned unwrapped.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimited{next: next, lim: rate.NewLimiter(rate.Limit(rps), burst)}
	}
}

type rateLimited struct {
	next Client
	lim  *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, prompt)
}
