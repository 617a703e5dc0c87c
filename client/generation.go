package client

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a list fetch whose response arrived after a
// newer fetch of the same list had started. The response is discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Generation numbers the fetches of one list. Starting a fetch cancels the
// one still in flight, and only the latest fetch may apply its response.
type Generation struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new fetch and returns its context and number.
func (g *Generation) Begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	g.cancel = cancel
	return ctx, g.seq
}

// Apply runs fn only while seq is still the latest fetch, holding the lock
// so a newer fetch cannot begin halfway through.
func (g *Generation) Apply(seq uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.seq {
		return false
	}
	fn()
	return true
}

// Done releases the context of fetch seq if it is still the latest.
func (g *Generation) Done(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq == g.seq && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// fetch runs load under a new generation and applies its result only if no
// newer fetch started meanwhile.
func fetch[T any](ctx context.Context, g *Generation, load func(context.Context) (T, error), apply func(T)) error {
	ctx, seq := g.Begin(ctx)
	defer g.Done(seq)

	res, err := load(ctx)
	if err != nil {
		if ctx.Err() != nil && !g.Apply(seq, func() {}) {
			return ErrSuperseded
		}
		return err
	}
	if !g.Apply(seq, func() { apply(res) }) {
		return ErrSuperseded
	}
	return nil
}
