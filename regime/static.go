package regime

import "sync"

// Static is a Provider backed by a plain map, set by the operator or a
// simulation script. Instruments without an explicit reading report Unknown
// with zero confidence, which downstream components treat as "do not trade".
type Static struct {
	mu       sync.RWMutex
	readings map[string]Reading
}

func NewStatic() *Static {
	return &Static{readings: make(map[string]Reading)}
}

// Set records the reading for one instrument.
func (s *Static) Set(instrument string, r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[instrument] = r
}

// SetAll replaces the reading for every known instrument and becomes the
// default for instruments seen later.
func (s *Static) SetAll(r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.readings {
		s.readings[k] = r
	}
	s.readings[""] = r
}

func (s *Static) Current(instrument string) Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.readings[instrument]; ok {
		return r
	}
	if r, ok := s.readings[""]; ok {
		return r
	}
	return Reading{Regime: Unknown, Confidence: 0}
}
