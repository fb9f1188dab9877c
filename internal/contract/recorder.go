package contract

import (
	"sync"
	"time"
)

// Stopwatch accumulates wall-clock time across many Start/Stop pairs.
// Nested Start calls are counted so only the outermost pair is measured.
type Stopwatch struct {
	mu      sync.Mutex
	elapsed time.Duration
	started time.Time
	depth   int
}

// Start begins or nests a timed section.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth == 0 {
		s.started = time.Now()
	}
	s.depth++
}

// Stop ends a timed section. Unbalanced calls are ignored.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth == 0 {
		return
	}
	s.depth--
	if s.depth == 0 {
		s.elapsed += time.Since(s.started)
	}
}

// Reset clears the accumulated time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = 0
	s.depth = 0
}

// Elapsed returns the accumulated time, including a running section.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth > 0 {
		return s.elapsed + time.Since(s.started)
	}
	return s.elapsed
}

// Seconds returns Elapsed in seconds.
func (s *Stopwatch) Seconds() float64 {
	return s.Elapsed().Seconds()
}

// Time runs fn inside a timed section.
func (s *Stopwatch) Time(fn func()) {
	s.Start()
	defer s.Stop()
	fn()
}

// RunRecorder holds the collision and steering timers of one RunContext.
// Timers must be reset before every timed phase; reading never resets them.
type RunRecorder struct {
	Collision Stopwatch
	Steering  Stopwatch
}

// NewRunRecorder returns a recorder with zeroed timers.
func NewRunRecorder() *RunRecorder {
	return &RunRecorder{}
}

// Reset clears both timers.
func (r *RunRecorder) Reset() {
	r.Collision.Reset()
	r.Steering.Reset()
}

// CollisionSeconds returns the accumulated collision checking time.
func (r *RunRecorder) CollisionSeconds() float64 {
	return r.Collision.Seconds()
}

// SteeringSeconds returns the accumulated steering time.
func (r *RunRecorder) SteeringSeconds() float64 {
	return r.Steering.Seconds()
}
