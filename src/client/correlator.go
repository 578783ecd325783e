package client

import (
	"context"
	"sync"
	"time"

	"twsclient/src/metrics"
)

// completion collects the replies to one request id until its end marker.
type completion struct {
	items []any
	err   error
	done  chan struct{}
}

// correlator matches inbound data, end markers and errors to the request id
// that asked for them. The dispatcher feeds it, callers wait on it.
type correlator struct {
	mu      sync.Mutex
	pending map[int]*completion
	metrics *metrics.Collectors
}

func newCorrelator(m *metrics.Collectors) *correlator {
	return &correlator{pending: make(map[int]*completion), metrics: m}
}

// -----------------------------------------------------------------------------

// register must run before the request is written, so that no reply can
// arrive unclaimed.
func (c *correlator) register(id int) *completion {
	p := &completion{done: make(chan struct{})}
	c.mu.Lock()
	c.pending[id] = p
	c.metrics.SetPendingCompletions(len(c.pending))
	c.mu.Unlock()
	return p
}

func (c *correlator) drop(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.metrics.SetPendingCompletions(len(c.pending))
	c.mu.Unlock()
}

// append adds items to the pending call for id. It reports whether one exists.
func (c *correlator) append(id int, items ...any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if ok {
		p.items = append(p.items, items...)
	}
	return ok
}

func (c *correlator) complete(id int) bool {
	return c.finish(id, nil)
}

func (c *correlator) fail(id int, err error) bool {
	return c.finish(id, err)
}

func (c *correlator) finish(id int, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	if !ok {
		return false
	}
	delete(c.pending, id)
	p.err = err
	close(p.done)
	c.metrics.SetPendingCompletions(len(c.pending))
	return true
}

// failAll faults every pending call. Used when the connection drops.
func (c *correlator) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, p := range c.pending {
		p.err = err
		close(p.done)
		delete(c.pending, id)
	}
	c.metrics.SetPendingCompletions(0)
}

// -----------------------------------------------------------------------------

// wait blocks until p completes, the context ends or timeout passes. On
// timeout the call succeeds with whatever arrived so far.
func (c *correlator) wait(ctx context.Context, id int, p *completion, timeout time.Duration) ([]any, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		if items, ok := c.abandon(id, p); ok {
			return items, nil
		}
		<-p.done
	case <-ctx.Done():
		if _, ok := c.abandon(id, p); ok {
			return nil, ctx.Err()
		}
		<-p.done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return p.items, p.err
}

// abandon removes p if it is still pending and returns what it gathered.
func (c *correlator) abandon(id int, p *completion) ([]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[id] != p {
		return nil, false
	}
	delete(c.pending, id)
	c.metrics.SetPendingCompletions(len(c.pending))
	return p.items, true
}

func (c *correlator) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// -----------------------------------------------------------------------------

func collect[T any](items []any) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
