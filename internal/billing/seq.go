package billing

import (
	"context"
	"sync"
)

// requestSeq serializes the fetches for one row-level concern. Starting a
// new request cancels the in-flight one and bumps the generation; a
// response is only applied while its generation is still current, so the
// last request started always wins.
type requestSeq struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// begin registers a new request and returns its context and generation.
func (s *requestSeq) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.gen++
	return ctx, s.gen
}

// current reports whether gen is still the latest started request.
func (s *requestSeq) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}
