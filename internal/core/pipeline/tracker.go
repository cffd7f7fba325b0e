package pipeline

import (
	"sync"
)

// Token tags one render request. Tokens increase monotonically.
type Token uint64

// RequestTracker publishes render results newest first. A result finished
// while a newer request is still running is held back; it is published only if
// every newer request fails, and dropped once a newer result is published.
type RequestTracker struct {
	mu      sync.Mutex
	latest  Token
	applied Token
	pending map[Token]struct{}

	held      Token
	heldApply func()
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{pending: make(map[Token]struct{})}
}

// Next issues a new token and supersedes every earlier one.
func (t *RequestTracker) Next() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	t.pending[t.latest] = struct{}{}
	return t.latest
}

// IsCurrent reports whether token is still the newest request.
func (t *RequestTracker) IsCurrent(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.latest
}

// Apply completes token with a result. apply runs, under the tracker lock, when
// no newer request is still running and nothing newer was published. It
// reports whether apply ran now.
func (t *RequestTracker) Apply(token Token, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, token)
	if token <= t.applied {
		return false
	}
	if t.newerPending(token) {
		if token > t.held {
			t.held, t.heldApply = token, apply
		}
		return false
	}
	t.publish(token, apply)
	return true
}

// Fail completes token without a result. A held back older result is
// published if no newer request is left running. It reports whether one was.
func (t *RequestTracker) Fail(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, token)
	if t.heldApply == nil || t.held <= t.applied || t.newerPending(t.held) {
		return false
	}
	t.publish(t.held, t.heldApply)
	return true
}

// caller holds mu
func (t *RequestTracker) newerPending(token Token) bool {
	for p := range t.pending {
		if p > token {
			return true
		}
	}
	return false
}

// caller holds mu
func (t *RequestTracker) publish(token Token, apply func()) {
	apply()
	t.applied = token
	if t.held <= token {
		t.held, t.heldApply = 0, nil
	}
}
