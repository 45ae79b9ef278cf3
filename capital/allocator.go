package capital

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/sirupsen/logrus"
)

// Config tunes the allocation cycle.
type Config struct {
	DecayRate    float64 // 0.5: probation allocation multiplier per cycle is (1 - DecayRate)
	DecayPeriods int     // 2: consecutive probation cycles until allocation hits zero

	PoolMinArbitrage     float64 // 100: minimum total allocation kept in an arbitrage pool
	StrategyMinArbitrage float64 // 50: minimum per-strategy arbitrage allocation

	ScaleMin float64 // 0.6: lower clamp on regime confidence scaling
	ScaleMax float64 // 1.5: upper clamp on regime confidence scaling
}

func DefaultConfig() Config {
	return Config{
		DecayRate:            0.5,
		DecayPeriods:         2,
		PoolMinArbitrage:     100,
		StrategyMinArbitrage: 50,
		ScaleMin:             0.6,
		ScaleMax:             1.5,
	}
}

// Request is one strategy's input to an allocation cycle.
type Request struct {
	StrategyID string
	Style      registry.Style
	State      registry.State
	Requested  float64
	Reading    regime.Reading
}

// Allocator is the sole mutation path for strategy allocations within one
// account. Strategies cannot self-allocate: the account runs allocation
// cycles through here and the execution gateway reserves headroom through
// here, both under the allocator's lock.
type Allocator struct {
	mu sync.Mutex

	accountID string
	cfg       Config
	pools     map[registry.Style]*Pool
	ledgers   map[string]*Ledger
	emit      func(journal.Event)
	log       *logrus.Entry
}

func NewAllocator(accountID string, cfg Config, directional, arbitrage *Pool) *Allocator {
	return &Allocator{
		accountID: accountID,
		cfg:       cfg,
		pools: map[registry.Style]*Pool{
			registry.Directional: directional,
			registry.Arbitrage:   arbitrage,
		},
		ledgers: make(map[string]*Ledger),
		log:     logrus.WithField("module", "capital.allocator"),
	}
}

// SetEmit installs the journal hook for capital mutations. Optional.
func (a *Allocator) SetEmit(fn func(journal.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit = fn
}

// Allocate runs one allocation cycle step for a single strategy and returns
// the granted allocation. The grant is authoritative: the ledger and pool are
// updated before returning.
func (a *Allocator) Allocate(req Request) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pool, ok := a.pools[req.Style]
	if !ok || pool == nil {
		return 0, fmt.Errorf("allocate %q: no %s pool", req.StrategyID, req.Style)
	}

	led, err := a.ledger(req.StrategyID, req.Style)
	if err != nil {
		return 0, err
	}
	led.State = req.State

	target := a.target(led, pool, req)

	// Never grant new capital once the pool's drawdown limit is hit. Existing
	// allocation is not clawed back here; decay and releases handle that.
	if pool.DrawdownPct() >= pool.MaxDrawdownPct() && target > led.Allocated {
		a.log.Warnf("pool drawdown %.2f%% >= max %.2f%%, refusing new allocation for %s",
			pool.DrawdownPct(), pool.MaxDrawdownPct(), req.StrategyID)
		target = led.Allocated
	}

	// Clamp to what the pool can actually hold for this ledger.
	if max := pool.Available() + led.Allocated; target > max {
		target = max
	}

	if err := a.apply(led, pool, target); err != nil {
		return 0, err
	}
	return target, nil
}

// target computes the unconstrained allocation for one cycle step, before
// pool availability and drawdown clamps.
func (a *Allocator) target(led *Ledger, pool *Pool, req Request) float64 {
	switch req.State {
	case registry.Disabled, registry.Paused:
		led.probationCycles = 0
		return 0

	case registry.Probation:
		led.probationCycles++
		if led.probationCycles >= a.cfg.DecayPeriods {
			return 0
		}
		return led.Allocated * (1 - a.cfg.DecayRate)
	}

	led.probationCycles = 0

	if req.Style == registry.Arbitrage {
		target := req.Requested
		if target < a.cfg.StrategyMinArbitrage {
			target = a.cfg.StrategyMinArbitrage
		}
		// Keep the pool as a whole above its floor, capital permitting.
		others := pool.Allocated() - led.Allocated
		if others+target < a.cfg.PoolMinArbitrage {
			target = a.cfg.PoolMinArbitrage - others
		}
		return target
	}

	// Directional: scale the request by regime confidence. Unknown regime
	// means no basis to deploy at all.
	if req.Reading.Regime == regime.Unknown {
		return 0
	}
	return req.Requested * regime.ScalingFactor(req.Reading.Confidence, a.cfg.ScaleMin, a.cfg.ScaleMax)
}

// apply moves the ledger to the target allocation, adjusting the pool by the
// difference.
func (a *Allocator) apply(led *Ledger, pool *Pool, target float64) error {
	delta := target - led.Allocated
	switch {
	case delta > 0:
		if err := pool.Allocate(delta); err != nil {
			return fmt.Errorf("allocate %q: %w", led.StrategyID, err)
		}
	case delta < 0:
		if err := pool.Release(-delta); err != nil {
			return fmt.Errorf("allocate %q: %w", led.StrategyID, err)
		}
	}

	prev := led.Allocated
	led.Allocated = target

	if a.emit != nil && target != prev {
		e := journal.NewEvent(journal.EventCapitalChange)
		e.AccountID = a.accountID
		e.StrategyID = led.StrategyID
		e.Allowed = true
		e.Value = target
		e.Reason = fmt.Sprintf("allocation %.2f -> %.2f (%s)", prev, target, led.Style)
		a.emit(e)
	}
	return nil
}

// Reserve commits headroom for an in-flight trade. Called only by the
// execution gateway as part of its atomic check-and-commit.
func (a *Allocator) Reserve(strategyID string, amount float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	led, ok := a.ledgers[strategyID]
	if !ok {
		return fmt.Errorf("reserve %q: no capital ledger", strategyID)
	}
	if amount > led.Headroom() {
		return fmt.Errorf("%w: reserve %.2f, headroom %.2f (strategy %s)",
			ErrOverAllocation, amount, led.Headroom(), strategyID)
	}
	led.Deployed += amount
	return nil
}

// Unreserve returns committed headroom, after a trade settles or fails.
func (a *Allocator) Unreserve(strategyID string, amount float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	led, ok := a.ledgers[strategyID]
	if !ok {
		return fmt.Errorf("unreserve %q: no capital ledger", strategyID)
	}
	if amount > led.Deployed {
		return fmt.Errorf("%w: unreserve %.2f, deployed %.2f (strategy %s)",
			ErrOverAllocation, amount, led.Deployed, strategyID)
	}
	led.Deployed -= amount
	return nil
}

// RecordOutcome applies a realized trade P&L to the strategy ledger and its
// owning pool.
func (a *Allocator) RecordOutcome(strategyID string, pnl float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	led, ok := a.ledgers[strategyID]
	if !ok {
		return fmt.Errorf("record outcome %q: no capital ledger", strategyID)
	}
	led.recordOutcome(pnl)
	a.pools[led.Style].RecordEquityChange(pnl)
	return nil
}

// Ledger returns a snapshot of the strategy's capital account.
func (a *Allocator) Ledger(strategyID string) (LedgerSnapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	led, ok := a.ledgers[strategyID]
	if !ok {
		return LedgerSnapshot{}, false
	}
	return led.snapshot(), true
}

// Ledgers returns snapshots of every ledger, sorted by strategy id.
func (a *Allocator) Ledgers() []LedgerSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]LedgerSnapshot, 0, len(a.ledgers))
	for _, led := range a.ledgers {
		out = append(out, led.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StrategyID < out[j].StrategyID })
	return out
}

func (a *Allocator) ledger(strategyID string, style registry.Style) (*Ledger, error) {
	if led, ok := a.ledgers[strategyID]; ok {
		if led.Style != style {
			return nil, fmt.Errorf("strategy %q: pool style changed %s -> %s", strategyID, led.Style, style)
		}
		return led, nil
	}
	led := &Ledger{StrategyID: strategyID, Style: style}
	a.ledgers[strategyID] = led
	return led, nil
}
