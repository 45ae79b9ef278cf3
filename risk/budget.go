package risk

import (
	"sync"

	"github.com/rustyeddy/riskgate/regime"
)

// Budget is one account's bounded risk envelope. The current percentage
// decays immediately on drawdown and recovers slowly over calm days; regime
// scaling can only trim it, never boost it past the baseline or max.
//
// Effective() is the only value other components may read.
type Budget struct {
	mu sync.Mutex

	accountID string
	baseline  float64
	max       float64
	current   float64
	scaling   float64

	penaltyFactor      float64
	recoveryPerDay     float64
	scaleMin, scaleMax float64
}

func NewBudget(accountID string, p Policy) *Budget {
	return &Budget{
		accountID:      accountID,
		baseline:       p.BaselineRiskPct,
		max:            p.MaxRiskPct,
		current:        p.BaselineRiskPct,
		scaling:        1.0,
		penaltyFactor:  p.PenaltyFactor,
		recoveryPerDay: p.RecoveryRatePerDay,
		scaleMin:       p.ScaleMin,
		scaleMax:       p.ScaleMax,
	}
}

// ApplyRegimeScaling adjusts the scaling factor. Only a FAVORABLE regime
// moves it, through the shared confidence clamp; UNFAVORABLE and UNKNOWN
// reset the factor to 1.0 — this mechanism never penalizes, the drawdown
// penalty does that.
func (b *Budget) ApplyRegimeScaling(r regime.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Regime == regime.Favorable {
		b.scaling = regime.ScalingFactor(r.Confidence, b.scaleMin, b.scaleMax)
		return
	}
	b.scaling = 1.0
}

// ApplyDrawdownPenalty cuts the current budget by the drawdown increase times
// the penalty factor, floored at zero. Applied immediately on any equity
// decline.
func (b *Budget) ApplyDrawdownPenalty(drawdownIncreasePct float64) {
	if drawdownIncreasePct <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current -= drawdownIncreasePct * b.penaltyFactor
	if b.current < 0 {
		b.current = 0
	}
}

// ApplyRecovery restores budget at the configured daily rate, capped at the
// baseline. No recovery happens in an UNFAVORABLE regime. Recovery is
// deliberately slower than the decay path and never instantaneous.
func (b *Budget) ApplyRecovery(daysSinceDrawdown float64, r regime.Regime) {
	if daysSinceDrawdown <= 0 || r == regime.Unfavorable {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current += daysSinceDrawdown * b.recoveryPerDay
	if b.current > b.baseline {
		b.current = b.baseline
	}
}

// Effective is the bounded risk percentage other components read:
// min(max, current * scaling).
func (b *Budget) Effective() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	eff := b.current * b.scaling
	if eff > b.max {
		eff = b.max
	}
	return eff
}

// BudgetSnapshot is the persisted risk-budget summary.
type BudgetSnapshot struct {
	AccountID           string  `json:"accountId"`
	BaselineRiskPct     float64 `json:"baselineRiskPct"`
	MaxRiskPct          float64 `json:"maxRiskPct"`
	CurrentRiskPct      float64 `json:"currentRiskPct"`
	EffectiveRiskPct    float64 `json:"effectiveRiskPct"`
	RegimeScalingFactor float64 `json:"regimeScalingFactor"`
}

func (b *Budget) Snapshot() BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	eff := b.current * b.scaling
	if eff > b.max {
		eff = b.max
	}
	return BudgetSnapshot{
		AccountID:           b.accountID,
		BaselineRiskPct:     b.baseline,
		MaxRiskPct:          b.max,
		CurrentRiskPct:      b.current,
		EffectiveRiskPct:    eff,
		RegimeScalingFactor: b.scaling,
	}
}
