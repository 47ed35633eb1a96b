// Package common provides timing helpers shared by the pipeline and commands.
package common

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Timer measures one named interval.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer creates a new timer with the given name.
func NewNamedTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name (empty string if unnamed).
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

// StageDuration is the measured time of one stage.
type StageDuration struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Stages records stage durations in the order the stages were started.
type Stages struct {
	mu     sync.Mutex
	timing []StageDuration
}

// Start begins timing stage and returns the function that stops it.
func (s *Stages) Start(stage string) func() time.Duration {
	t := NewNamedTimer(stage)
	return func() time.Duration {
		d := t.Stop()
		s.mu.Lock()
		s.timing = append(s.timing, StageDuration{Stage: stage, Duration: d})
		s.mu.Unlock()
		return d
	}
}

// List returns the recorded stages.
func (s *Stages) List() []StageDuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StageDuration, len(s.timing))
	copy(out, s.timing)
	return out
}

// Total is the sum of all recorded stages.
func (s *Stages) Total() time.Duration {
	var total time.Duration
	for _, st := range s.List() {
		total += st.Duration
	}
	return total
}

// MarshalJSON renders the stages as a list.
func (s *Stages) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}
