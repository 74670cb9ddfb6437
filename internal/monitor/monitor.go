// Package monitor records recent recognition attempts and serves a small
// debugging dashboard over HTTP.
package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultHistory is the number of attempts retained when no size is given.
const defaultHistory = 256

// Attempt is one recorded recognition pass.
type Attempt struct {
	ID         string        `json:"id"`
	Time       time.Time     `json:"time"`
	FrameID    string        `json:"frame_id"`
	Candidates int           `json:"candidates"`
	Accepted   bool          `json:"accepted"`
	ModelID    uint32        `json:"model_id,omitempty"`
	ObjectName string        `json:"object_name,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Monitor keeps a bounded in-memory history of recognition attempts. It is
// safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	attempts []Attempt
	max      int
}

// NewMonitor creates a monitor retaining up to max attempts; zero or
// negative means the default history size.
func NewMonitor(max int) *Monitor {
	if max <= 0 {
		max = defaultHistory
	}
	return &Monitor{max: max}
}

// Record appends an attempt, assigning it an ID and timestamp if unset, and
// evicts the oldest entry beyond the history bound.
func (m *Monitor) Record(a Attempt) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Time.IsZero() {
		a.Time = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	if len(m.attempts) > m.max {
		m.attempts = m.attempts[len(m.attempts)-m.max:]
	}
}

// Attempts returns a copy of the recorded history, oldest first.
func (m *Monitor) Attempts() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Attempt, len(m.attempts))
	copy(out, m.attempts)
	return out
}

// AcceptanceRate returns the fraction of recorded attempts that were
// accepted, or zero with no history.
func (m *Monitor) AcceptanceRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.attempts) == 0 {
		return 0
	}
	accepted := 0
	for _, a := range m.attempts {
		if a.Accepted {
			accepted++
		}
	}
	return float64(accepted) / float64(len(m.attempts))
}
