// Package registry is the read-only strategy metadata collaborator: a map
// from strategy id to its allowed regimes, lifecycle state, and risk profile.
// A missing entry is equivalent to a DISABLED strategy.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/riskgate/regime"
)

// ErrUnknownStrategy is returned by Require for strategies with no metadata.
// Lookups through Get never fail; boundaries that demand an entry use Require
// so missing configuration fails fast instead of defaulting silently.
var ErrUnknownStrategy = fmt.Errorf("unknown strategy")

// State is a strategy's lifecycle state.
type State string

const (
	Active    State = "ACTIVE"
	Probation State = "PROBATION"
	Paused    State = "PAUSED"
	Disabled  State = "DISABLED"
)

// Style selects which capital pool a strategy draws from.
type Style string

const (
	Directional Style = "DIRECTIONAL"
	Arbitrage   Style = "ARBITRAGE"
)

// Profile is a coarse risk-appetite label carried as strategy metadata for
// operators and journal attribution. It does not change any limit by itself.
type Profile string

const (
	Conservative Profile = "conservative"
	Balanced     Profile = "balanced"
	Aggressive   Profile = "aggressive"
)

// Meta describes one strategy.
type Meta struct {
	StrategyID     string
	AllowedRegimes []regime.Regime
	State          State
	Style          Style
	Profile        Profile
}

// AllowsRegime reports whether the strategy declared r as tradable.
func (m Meta) AllowsRegime(r regime.Regime) bool {
	for _, a := range m.AllowedRegimes {
		if a == r {
			return true
		}
	}
	return false
}

// Registry holds strategy metadata. Entries are registered at startup and
// state transitions are the only mutation afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Meta
}

func New() *Registry {
	return &Registry{entries: make(map[string]Meta)}
}

// Register adds or replaces a strategy's metadata.
func (r *Registry) Register(m Meta) error {
	if m.StrategyID == "" {
		return fmt.Errorf("register strategy: empty strategy id")
	}
	if m.Style != Directional && m.Style != Arbitrage {
		return fmt.Errorf("register strategy %q: invalid style %q", m.StrategyID, m.Style)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[m.StrategyID] = m
	return nil
}

// Get returns the metadata for a strategy. Absence of an entry is not an
// error: the zero Meta with State Disabled is returned, which every consumer
// treats as "never trade".
func (r *Registry) Get(strategyID string) Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.entries[strategyID]; ok {
		return m
	}
	return Meta{StrategyID: strategyID, State: Disabled}
}

// Require returns the metadata for a strategy, or ErrUnknownStrategy when no
// entry exists. Use at configuration boundaries where a missing strategy is a
// fault, not a denial.
func (r *Registry) Require(strategyID string) (Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.entries[strategyID]
	if !ok {
		return Meta{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategyID)
	}
	return m, nil
}

// SetState transitions a strategy's lifecycle state.
func (r *Registry) SetState(strategyID string, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.entries[strategyID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, strategyID)
	}
	m.State = s
	r.entries[strategyID] = m
	return nil
}

// IDs returns all registered strategy ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
