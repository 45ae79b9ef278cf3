// Package account holds the isolated tenant: each account exclusively owns
// two capital pools, one risk governor, one risk budget, and an explicit set
// of enabled strategies. No cross-account reference ever exists; the Manager
// is the only place accounts are constructed.
package account

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/riskgate/capital"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/sirupsen/logrus"
)

// State is an account's lifecycle state, independent of every other account.
type State string

const (
	Active      State = "ACTIVE"
	Probation   State = "PROBATION"
	ObserveOnly State = "OBSERVE_ONLY"
	Shutdown    State = "SHUTDOWN"
)

// Account is one isolated tenant.
type Account struct {
	mu sync.Mutex

	id     string
	state  State
	policy risk.Policy

	directional *capital.Pool
	arbitrage   *capital.Pool
	allocator   *capital.Allocator
	governor    *risk.Governor
	budget      *risk.Budget

	enabled map[string]struct{}

	equity      float64
	peakEquity  float64
	realizedPnL float64
	drawdownPct float64

	riskAllocs map[string]float64 // strategyID -> allocated risk pct

	emit func(journal.Event)
	log  *logrus.Entry
}

// newAccount is package-private: only the Manager constructs accounts.
func newAccount(id string, equity, poolCapital float64, p risk.Policy, alloCfg capital.Config) *Account {
	dir := capital.NewPool(registry.Directional, poolCapital, p.MaxSystemDrawdownPct)
	arb := capital.NewPool(registry.Arbitrage, poolCapital, p.MaxSystemDrawdownPct)

	a := &Account{
		id:          id,
		state:       Active,
		policy:      p,
		directional: dir,
		arbitrage:   arb,
		allocator:   capital.NewAllocator(id, alloCfg, dir, arb),
		governor:    risk.NewGovernor(id, p),
		budget:      risk.NewBudget(id, p),
		enabled:     make(map[string]struct{}),
		equity:      equity,
		peakEquity:  equity,
		riskAllocs:  make(map[string]float64),
		log:         logrus.WithField("module", "account").WithField("account", id),
	}
	a.governor.ObserveEquity(equity)
	return a
}

func (a *Account) ID() string { return a.id }

func (a *Account) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Pool returns the account's pool for a style. Pools are exclusively owned;
// callers get the real instance but only Account and the execution gateway
// (through the allocator) mutate it.
func (a *Account) Pool(style registry.Style) *capital.Pool {
	if style == registry.Arbitrage {
		return a.arbitrage
	}
	return a.directional
}

func (a *Account) Allocator() *capital.Allocator { return a.allocator }
func (a *Account) Governor() *risk.Governor      { return a.governor }
func (a *Account) Budget() *risk.Budget          { return a.budget }

// CanTrade is state==ACTIVE && governor not SHUTDOWN.
func (a *Account) CanTrade() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == Active && a.governor.State() != risk.Shutdown
}

// EnableStrategy opts the account into a strategy. Participation is always
// explicit; a fresh account trades nothing.
func (a *Account) EnableStrategy(strategyID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled[strategyID] = struct{}{}
}

func (a *Account) DisableStrategy(strategyID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.enabled, strategyID)
}

func (a *Account) IsEnabled(strategyID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.enabled[strategyID]
	return ok
}

// EnabledStrategies returns the opt-in set, sorted.
func (a *Account) EnabledStrategies() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.enabled))
	for id := range a.enabled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (a *Account) Equity() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.equity
}

func (a *Account) DrawdownPct() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drawdownPct
}

// RecordEquityChange applies a P&L delta to the account: equity, peak,
// drawdown, the budget's drawdown penalty, the governor's limit checks, and
// the account's own lifecycle transitions all update here, in that order.
func (a *Account) RecordEquityChange(delta float64) {
	a.mu.Lock()

	a.equity += delta
	a.realizedPnL += delta
	if a.equity > a.peakEquity {
		a.peakEquity = a.equity
	}

	prevDD := a.drawdownPct
	if a.peakEquity > 0 {
		a.drawdownPct = (a.peakEquity - a.equity) / a.peakEquity * 100
	}

	if increase := a.drawdownPct - prevDD; increase > 0 {
		a.budget.ApplyDrawdownPenalty(increase)
		a.emitLocked(journal.EventRiskBudgetChange, "", true, a.budget.Effective(),
			fmt.Sprintf("drawdown penalty applied for %.2f%% drawdown increase", increase))
	}

	dd, equity := a.drawdownPct, a.equity
	a.transitionOnDrawdownLocked(dd)
	a.mu.Unlock()

	// Governor observations take the governor's own lock; keep them outside
	// ours so the governor's transition hook can safely call back into the
	// journal emit path.
	a.governor.ObserveEquity(equity)
	a.governor.ObserveDrawdown(dd)
}

// ApplyRecovery restores risk budget for calm days. Recovery is gated on the
// account's own lifecycle state as well as the regime: a non-ACTIVE account
// does not heal its budget.
func (a *Account) ApplyRecovery(daysSinceDrawdown float64, r regime.Regime) {
	a.mu.Lock()
	if a.state != Active {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.budget.ApplyRecovery(daysSinceDrawdown, r)
}

// SetRiskAllocations replaces the per-strategy risk split, produced by the
// strategy risk allocator.
func (a *Account) SetRiskAllocations(allocs []risk.Allocation) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.riskAllocs = make(map[string]float64, len(allocs))
	for _, al := range allocs {
		a.riskAllocs[al.StrategyID] = al.RiskPct
	}
}

// RiskAllocation returns the risk percentage allocated to one strategy.
func (a *Account) RiskAllocation(strategyID string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.riskAllocs[strategyID]
}

// SetEmit installs the journal hook for this account and its owned
// components.
func (a *Account) SetEmit(fn func(journal.Event)) {
	a.mu.Lock()
	a.emit = fn
	a.mu.Unlock()

	a.allocator.SetEmit(fn)
	a.governor.SetOnTransition(func(tr risk.Transition) {
		e := journal.NewEvent(journal.EventStateTransition)
		e.AccountID = a.id
		e.Reason = fmt.Sprintf("governor %s -> %s: %s", tr.From, tr.To, tr.Reason)
		fn(e)
	})
}

// transitionOnDrawdownLocked applies the account lifecycle thresholds:
// probation at the probation threshold, shutdown at the kill switch. Both
// fire automatically; there is no automatic path back from SHUTDOWN.
func (a *Account) transitionOnDrawdownLocked(dd float64) {
	switch {
	case a.state == Shutdown:
		return
	case a.policy.KillSwitchDrawdownPct > 0 && dd >= a.policy.KillSwitchDrawdownPct:
		a.setStateLocked(Shutdown, fmt.Sprintf("drawdown %.2f%% crossed kill switch %.2f%%", dd, a.policy.KillSwitchDrawdownPct))
	case a.state == Active && a.policy.ProbationDrawdownPct > 0 && dd >= a.policy.ProbationDrawdownPct:
		a.setStateLocked(Probation, fmt.Sprintf("drawdown %.2f%% crossed probation threshold %.2f%%", dd, a.policy.ProbationDrawdownPct))
	case a.state == Probation && a.policy.ProbationDrawdownPct > 0 && dd < a.policy.ProbationDrawdownPct:
		a.setStateLocked(Active, fmt.Sprintf("drawdown %.2f%% back under probation threshold", dd))
	}
}

// SetObserveOnly moves the account in or out of OBSERVE_ONLY. Refused once
// the account is SHUTDOWN.
func (a *Account) SetObserveOnly(on bool, reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Shutdown {
		return fmt.Errorf("account %s: %w", a.id, risk.ErrShutdown)
	}
	if on && a.state != ObserveOnly {
		a.setStateLocked(ObserveOnly, reason)
	} else if !on && a.state == ObserveOnly {
		a.setStateLocked(Active, reason)
	}
	return nil
}

func (a *Account) setStateLocked(to State, reason string) {
	from := a.state
	a.state = to
	a.log.Warnf("account %s -> %s: %s", from, to, reason)
	a.emitLocked(journal.EventStateTransition, "", true, 0,
		fmt.Sprintf("account %s -> %s: %s", from, to, reason))
}

func (a *Account) emitLocked(typ journal.EventType, strategyID string, allowed bool, value float64, reason string) {
	if a.emit == nil {
		return
	}
	e := journal.NewEvent(typ)
	e.AccountID = a.id
	e.StrategyID = strategyID
	e.Allowed = allowed
	e.Value = value
	e.Reason = reason
	a.emit(e)
}

// Summary is the persisted account state layout.
type Summary struct {
	AccountID         string               `json:"accountId"`
	State             State                `json:"state"`
	Equity            float64              `json:"equity"`
	PnL               float64              `json:"pnl"`
	DrawdownPct       float64              `json:"drawdownPct"`
	EnabledStrategies []string             `json:"enabledStrategies"`
	Directional       capital.PoolSnapshot `json:"directionalPool"`
	Arbitrage         capital.PoolSnapshot `json:"arbitragePool"`
	RiskBudget        risk.BudgetSnapshot  `json:"riskBudget"`
}

func (a *Account) Summary() Summary {
	a.mu.Lock()
	enabled := make([]string, 0, len(a.enabled))
	for id := range a.enabled {
		enabled = append(enabled, id)
	}
	sort.Strings(enabled)

	s := Summary{
		AccountID:         a.id,
		State:             a.state,
		Equity:            a.equity,
		PnL:               a.realizedPnL,
		DrawdownPct:       a.drawdownPct,
		EnabledStrategies: enabled,
	}
	a.mu.Unlock()

	s.Directional = a.directional.Snapshot()
	s.Arbitrage = a.arbitrage.Snapshot()
	s.RiskBudget = a.budget.Snapshot()
	return s
}
