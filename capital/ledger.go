package capital

import "github.com/rustyeddy/riskgate/registry"

// Ledger is one strategy's capital account within a pool: its current
// allocation, the capital deployed into open positions, and its equity curve
// expressed as cumulative P&L against the allocation peak.
//
// Ledgers are created lazily on first allocation and never deleted; a
// terminated strategy simply decays to a zero-allocation ledger. All fields
// are guarded by the owning Allocator's lock.
type Ledger struct {
	StrategyID string
	Style      registry.Style
	State      registry.State

	Allocated float64
	Deployed  float64 // committed to in-flight trades by the execution gateway

	PnL         float64
	PeakPnL     float64
	DrawdownPct float64

	probationCycles int
}

// Headroom is the capital still available for new trades: allocation minus
// what the gateway has already committed.
func (l *Ledger) Headroom() float64 {
	return l.Allocated - l.Deployed
}

// recordOutcome applies a realized P&L delta and recomputes the strategy's
// drawdown from its P&L peak, scaled against the current allocation.
func (l *Ledger) recordOutcome(pnl float64) {
	l.PnL += pnl
	if l.PnL > l.PeakPnL {
		l.PeakPnL = l.PnL
	}
	if l.Allocated > 0 {
		l.DrawdownPct = (l.PeakPnL - l.PnL) / l.Allocated * 100
	}
}

// LedgerSnapshot is a copy of a ledger safe to hand outside the allocator.
type LedgerSnapshot struct {
	StrategyID  string
	Style       registry.Style
	State       registry.State
	Allocated   float64
	Deployed    float64
	PnL         float64
	DrawdownPct float64
}

func (l *Ledger) snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		StrategyID:  l.StrategyID,
		Style:       l.Style,
		State:       l.State,
		Allocated:   l.Allocated,
		Deployed:    l.Deployed,
		PnL:         l.PnL,
		DrawdownPct: l.DrawdownPct,
	}
}
