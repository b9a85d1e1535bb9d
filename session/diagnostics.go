package session

import (
	"sync"

	"github.com/linanwx/aggrechat/aggregator"
)

// DiagnosticsStore holds the diagnostics of the most recent successful
// response. It keeps no history.
type DiagnosticsStore struct {
	mu   sync.RWMutex
	diag aggregator.Diagnostics
	set  bool
}

// Set replaces the stored record.
func (s *DiagnosticsStore) Set(d aggregator.Diagnostics) {
	s.mu.Lock()
	s.diag = d
	s.set = true
	s.mu.Unlock()
}

// Get returns the stored record and whether one has been set.
func (s *DiagnosticsStore) Get() (aggregator.Diagnostics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diag, s.set
}
