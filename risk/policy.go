// Package risk holds the per-account risk budget, the performance-weighted
// strategy risk allocator, and the risk governor state machine.
package risk

// Policy collects every risk tunable and hard limit for one account. Hard
// limits trip the governor to SHUTDOWN automatically; tunables shape the
// budget's decay and recovery. Percentages are in points (2.0 means 2%).
type Policy struct {
	// Budget envelope
	BaselineRiskPct float64 // 2.0
	MaxRiskPct      float64 // 5.0

	// Decay and recovery
	PenaltyFactor      float64 // 1.5: budget points lost per drawdown point
	RecoveryRatePerDay float64 // 0.1: budget points regained per calm day

	// Regime scaling clamp for the budget (boost never exceeds 1.0)
	ScaleMin float64 // 0.6
	ScaleMax float64 // 1.0

	// Hard limits: breach trips the governor to SHUTDOWN, no human approval.
	MaxSystemDrawdownPct   float64 // 20
	MaxStrategyDrawdownPct float64 // 15
	MaxDailyLossPct        float64 // 5
	MaxDailyTrades         int     // 50

	// Account lifecycle thresholds
	ProbationDrawdownPct  float64 // 10: account enters PROBATION
	KillSwitchDrawdownPct float64 // 20: account enters SHUTDOWN

	// Strategy risk allocation
	NewStrategyWeight float64 // 0.001: fixed weight for strategies with no history
}

func DefaultPolicy() Policy {
	return Policy{
		BaselineRiskPct:        2.0,
		MaxRiskPct:             5.0,
		PenaltyFactor:          1.5,
		RecoveryRatePerDay:     0.1,
		ScaleMin:               0.6,
		ScaleMax:               1.0,
		MaxSystemDrawdownPct:   20,
		MaxStrategyDrawdownPct: 15,
		MaxDailyLossPct:        5,
		MaxDailyTrades:         50,
		ProbationDrawdownPct:   10,
		KillSwitchDrawdownPct:  20,
		NewStrategyWeight:      0.001,
	}
}
