package judge

import (
	"context"
	"sync"
)

// ClientFactory builds a Client for a model id.
type ClientFactory func(ctx context.Context, model string) (Client, error)

// Pool lazily constructs and reuses one Client per model id. A prompt
// kind may be mapped to a different model than the default, so several
// clients can be live in one tournament.
type Pool struct {
	factory ClientFactory

	mu      sync.Mutex
	clients map[string]Client
}

func NewPool(factory ClientFactory) *Pool {
	return &Pool{factory: factory, clients: make(map[string]Client)}
}

// For returns the client for model, building it on first use.
func (p *Pool) For(ctx context.Context, model string) (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[model]; ok {
		return c, nil
	}
	c, err := p.factory(ctx, model)
	if err != nil {
		return nil, err
	}
	p.clients[model] = c
	return c, nil
}

// Close closes every constructed client, returning the first error.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for _, c := range p.clients {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.clients = make(map[string]Client)
	return first
}
