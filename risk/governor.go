package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GovernorState is the risk governor's finite-state machine state.
type GovernorState string

const (
	Active    GovernorState = "ACTIVE"
	Probation GovernorState = "PROBATION"
	Paused    GovernorState = "PAUSED"
	Shutdown  GovernorState = "SHUTDOWN"
)

// ErrShutdown is returned for operator actions that are meaningless once the
// governor is in SHUTDOWN. There is no code path out of SHUTDOWN; recovery is
// an explicit operator action outside this core (state reconstruction).
var ErrShutdown = fmt.Errorf("risk governor is in SHUTDOWN")

// Transition is one recorded state change with its reason.
type Transition struct {
	From   GovernorState
	To     GovernorState
	Reason string
	At     time.Time
}

// Approval is the governor's answer to "may this trade proceed".
type Approval struct {
	Allowed  bool
	Reason   string
	Warnings []string
}

// Governor enforces hard limits for one account. The instant any configured
// hard limit is breached (system drawdown, strategy drawdown, daily loss) it
// transitions to SHUTDOWN automatically and without human approval. PAUSED
// and SHUTDOWN deny every request unconditionally.
type Governor struct {
	mu sync.Mutex

	state  GovernorState
	reason string
	policy Policy

	dayKey         int64 // YYYYMMDD, local time is fine for risk purposes
	dayStartEquity float64
	dailyTrades    int

	history      []Transition
	onTransition func(Transition)

	log *logrus.Entry
}

func NewGovernor(accountID string, p Policy) *Governor {
	return &Governor{
		state:  Active,
		policy: p,
		log:    logrus.WithField("module", "risk.governor").WithField("account", accountID),
	}
}

// SetOnTransition installs the journal hook for state changes. Optional.
func (g *Governor) SetOnTransition(fn func(Transition)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onTransition = fn
}

func (g *Governor) State() GovernorState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reason returns the reason for the current state, "" while ACTIVE.
func (g *Governor) Reason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// History returns every recorded transition, oldest first.
func (g *Governor) History() []Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Transition, len(g.history))
	copy(out, g.history)
	return out
}

// Approve answers whether a trade may proceed right now. SHUTDOWN and PAUSED
// deny everything; the daily trade budget denies once exhausted. Warnings
// flag the budget at 80% without denying.
func (g *Governor) Approve() Approval {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Shutdown:
		return Approval{Reason: fmt.Sprintf("risk governor SHUTDOWN: %s", g.reason)}
	case Paused:
		return Approval{Reason: fmt.Sprintf("risk governor PAUSED: %s", g.reason)}
	}

	g.rollDayLocked(time.Now())

	if g.policy.MaxDailyTrades > 0 && g.dailyTrades >= g.policy.MaxDailyTrades {
		return Approval{Reason: fmt.Sprintf("daily trade budget exhausted (%d/%d)", g.dailyTrades, g.policy.MaxDailyTrades)}
	}

	a := Approval{Allowed: true}
	if g.policy.MaxDailyTrades > 0 && float64(g.dailyTrades) >= 0.8*float64(g.policy.MaxDailyTrades) {
		a.Warnings = append(a.Warnings, fmt.Sprintf("approaching daily trade budget (%d/%d)", g.dailyTrades, g.policy.MaxDailyTrades))
	}
	return a
}

// RecordTrade counts one executed trade against the daily budget.
func (g *Governor) RecordTrade() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDayLocked(time.Now())
	g.dailyTrades++
}

// DailyTrades reports trades counted so far today.
func (g *Governor) DailyTrades() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dailyTrades
}

// ObserveEquity feeds the current account equity. The first observation of a
// day fixes the day-start equity; any later observation that breaches the
// daily loss limit trips SHUTDOWN.
func (g *Governor) ObserveEquity(equity float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDayLocked(time.Now())
	if g.dayStartEquity == 0 {
		g.dayStartEquity = equity
		return
	}
	if g.state == Shutdown || g.policy.MaxDailyLossPct <= 0 || g.dayStartEquity <= 0 {
		return
	}

	lossPct := (g.dayStartEquity - equity) / g.dayStartEquity * 100
	if lossPct >= g.policy.MaxDailyLossPct {
		g.tripLocked(fmt.Sprintf("daily loss %.2f%% breached limit %.2f%%", lossPct, g.policy.MaxDailyLossPct))
	}
}

// ObserveDrawdown feeds the account-level drawdown percentage.
func (g *Governor) ObserveDrawdown(systemPct float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Shutdown || g.policy.MaxSystemDrawdownPct <= 0 {
		return
	}
	if systemPct >= g.policy.MaxSystemDrawdownPct {
		g.tripLocked(fmt.Sprintf("system drawdown %.2f%% breached limit %.2f%%", systemPct, g.policy.MaxSystemDrawdownPct))
	}
}

// ObserveStrategyDrawdown feeds one strategy's drawdown percentage.
func (g *Governor) ObserveStrategyDrawdown(strategyID string, pct float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Shutdown || g.policy.MaxStrategyDrawdownPct <= 0 {
		return
	}
	if pct >= g.policy.MaxStrategyDrawdownPct {
		g.tripLocked(fmt.Sprintf("strategy %s drawdown %.2f%% breached limit %.2f%%", strategyID, pct, g.policy.MaxStrategyDrawdownPct))
	}
}

// Pause is the operator's manual halt. Refused once in SHUTDOWN.
func (g *Governor) Pause(reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Shutdown {
		return ErrShutdown
	}
	if reason == "" {
		reason = "manual pause"
	}
	g.transitionLocked(Paused, reason)
	return nil
}

// Resume exits PAUSED back to ACTIVE. Refused in SHUTDOWN; a no-op in other
// states.
func (g *Governor) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Shutdown {
		return ErrShutdown
	}
	if g.state == Paused {
		g.transitionLocked(Active, "manual resume")
	}
	return nil
}

// EnterProbation moves ACTIVE to PROBATION.
func (g *Governor) EnterProbation(reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Shutdown:
		return ErrShutdown
	case Active:
		g.transitionLocked(Probation, reason)
	}
	return nil
}

// ClearProbation moves PROBATION back to ACTIVE.
func (g *Governor) ClearProbation() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Shutdown {
		return ErrShutdown
	}
	if g.state == Probation {
		g.transitionLocked(Active, "probation cleared")
	}
	return nil
}

func (g *Governor) tripLocked(reason string) {
	if g.state == Shutdown {
		return
	}
	g.log.Errorf("hard limit breached, shutting down: %s", reason)
	g.transitionLocked(Shutdown, reason)
}

func (g *Governor) transitionLocked(to GovernorState, reason string) {
	tr := Transition{From: g.state, To: to, Reason: reason, At: time.Now().UTC()}
	g.state = to
	g.reason = reason
	g.history = append(g.history, tr)
	g.log.Warnf("governor %s -> %s: %s", tr.From, tr.To, reason)
	if g.onTransition != nil {
		g.onTransition(tr)
	}
}

func (g *Governor) rollDayLocked(now time.Time) {
	key := int64(now.Year()*10000 + int(now.Month())*100 + now.Day())
	if g.dayKey == key {
		return
	}
	g.dayKey = key
	g.dailyTrades = 0
	g.dayStartEquity = 0
}
