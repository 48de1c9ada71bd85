// Shared processing state: active mode and last measured duration
package core

import (
	"sync"

	"realtime-edge-detector/internal/algorithms"
)

// StateSnapshot is a consistent copy of both State fields.
type StateSnapshot struct {
	RawMode        int32
	Mode           algorithms.Mode
	LastDurationMs float64
}

// State holds the active mode and the last processing duration behind a
// single mutex, so readers always see a consistent pair.
type State struct {
	mu             sync.Mutex
	mode           int32
	lastDurationMs float64
}

// NewState creates state with mode 0 (edges) and no recorded duration.
func NewState() *State {
	return &State{}
}

// SetMode stores m verbatim. Unknown values resolve to edges at dispatch.
func (s *State) SetMode(m int32) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// RawMode returns the stored integer as written by SetMode.
func (s *State) RawMode() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Mode returns the resolved active mode.
func (s *State) Mode() algorithms.Mode {
	return algorithms.ResolveMode(s.RawMode())
}

// RecordDuration overwrites the last duration.
func (s *State) RecordDuration(ms float64) {
	s.mu.Lock()
	s.lastDurationMs = ms
	s.mu.Unlock()
}

// LastDurationMs returns the last recorded duration, or 0 if none.
func (s *State) LastDurationMs() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDurationMs
}

// Snapshot reads both fields under one lock acquisition.
func (s *State) Snapshot() StateSnapshot {
	s.mu.Lock()
	raw, last := s.mode, s.lastDurationMs
	s.mu.Unlock()
	return StateSnapshot{
		RawMode:        raw,
		Mode:           algorithms.ResolveMode(raw),
		LastDurationMs: last,
	}
}
