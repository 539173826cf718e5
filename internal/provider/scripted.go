package provider

import (
	"context"
	"sync"
)

// Scripted replays a fixed queue of decisions. It records every request
// it receives so tests can assert on the context and catalog the
// orchestrator built.
type Scripted struct {
	mu        sync.Mutex
	queue     []*Decision
	requests  []*Request
	err       error
	onRequest func(*Request)
}

// NewScripted returns a provider that replays the given decisions in
// order. Once the queue is drained it answers with an empty reply.
func NewScripted(decisions ...*Decision) *Scripted {
	return &Scripted{queue: decisions}
}

// Fail makes every subsequent Decide return err.
func (s *Scripted) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// OnRequest installs a hook invoked for each request before answering.
func (s *Scripted) OnRequest(fn func(*Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = fn
}

// Decide pops the next scripted decision.
func (s *Scripted) Decide(ctx context.Context, req *Request) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	hook := s.onRequest
	err := s.err
	var next *Decision
	if err == nil {
		if len(s.queue) > 0 {
			next = s.queue[0]
			s.queue = s.queue[1:]
		} else {
			next = &Decision{Text: "Done."}
		}
	}
	s.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Close is a no-op.
func (s *Scripted) Close() error {
	return nil
}

// Requests returns every request received so far.
func (s *Scripted) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Request, len(s.requests))
	copy(out, s.requests)
	return out
}
