package risk

import (
	"math/rand"
	"testing"

	"github.com/rustyeddy/riskgate/regime"
	"github.com/stretchr/testify/assert"
)

func TestDrawdownPenaltyScenario(t *testing.T) {
	t.Parallel()

	// baseline 2%, max 5%, penalty 1.5: a 0% -> 10% drawdown jump floors the
	// budget at zero, then 10 favorable days at 0.1%/day recover to 1.0%.
	b := NewBudget("acct-1", DefaultPolicy())

	b.ApplyDrawdownPenalty(10)
	assert.Zero(t, b.Snapshot().CurrentRiskPct)

	b.ApplyRecovery(10, regime.Favorable)
	assert.InDelta(t, 1.0, b.Snapshot().CurrentRiskPct, 1e-9)
}

func TestRegimeScalingScenario(t *testing.T) {
	t.Parallel()

	// FAVORABLE confidence 0.7 with baseline 2% gives factor 0.8 and
	// effective 1.6%.
	b := NewBudget("acct-1", DefaultPolicy())

	b.ApplyRegimeScaling(regime.Reading{Regime: regime.Favorable, Confidence: 0.7})
	assert.InDelta(t, 1.6, b.Effective(), 1e-9)

	snap := b.Snapshot()
	assert.InDelta(t, 0.8, snap.RegimeScalingFactor, 1e-9)
	assert.InDelta(t, 2.0, snap.CurrentRiskPct, 1e-9)
}

func TestUnfavorableAndUnknownResetScaling(t *testing.T) {
	t.Parallel()

	b := NewBudget("acct-1", DefaultPolicy())
	b.ApplyRegimeScaling(regime.Reading{Regime: regime.Favorable, Confidence: 0.5})
	assert.Less(t, b.Snapshot().RegimeScalingFactor, 1.0)

	b.ApplyRegimeScaling(regime.Reading{Regime: regime.Unfavorable, Confidence: 0.9})
	assert.InDelta(t, 1.0, b.Snapshot().RegimeScalingFactor, 1e-9)

	b.ApplyRegimeScaling(regime.Reading{Regime: regime.Unknown})
	assert.InDelta(t, 1.0, b.Snapshot().RegimeScalingFactor, 1e-9)
}

func TestNoRecoveryInUnfavorableRegime(t *testing.T) {
	t.Parallel()

	b := NewBudget("acct-1", DefaultPolicy())
	b.ApplyDrawdownPenalty(1.0) // 2.0 -> 0.5

	b.ApplyRecovery(30, regime.Unfavorable)
	assert.InDelta(t, 0.5, b.Snapshot().CurrentRiskPct, 1e-9)

	b.ApplyRecovery(1, regime.Favorable)
	assert.InDelta(t, 0.6, b.Snapshot().CurrentRiskPct, 1e-9)
}

func TestRecoveryCappedAtBaseline(t *testing.T) {
	t.Parallel()

	b := NewBudget("acct-1", DefaultPolicy())
	b.ApplyDrawdownPenalty(0.2) // 2.0 -> 1.7

	b.ApplyRecovery(1000, regime.Favorable)
	assert.InDelta(t, 2.0, b.Snapshot().CurrentRiskPct, 1e-9)
}

func TestRecoverySlowerThanDecay(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	// One penalty step for a 1-point drawdown increase vs one day of
	// recovery: the penalty must move the budget further.
	b := NewBudget("acct-1", p)
	before := b.Snapshot().CurrentRiskPct
	b.ApplyDrawdownPenalty(1.0)
	decayStep := before - b.Snapshot().CurrentRiskPct

	mid := b.Snapshot().CurrentRiskPct
	b.ApplyRecovery(1, regime.Favorable)
	recoveryStep := b.Snapshot().CurrentRiskPct - mid

	assert.Greater(t, decayStep, recoveryStep)
}

// Monotonic risk bound: current stays within [0, baseline] and effective
// never exceeds max across arbitrary penalty/recovery/scaling sequences.
func TestBudgetBoundsUnderRandomSequences(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(42))

	b := NewBudget("acct-1", p)
	regimes := []regime.Regime{regime.Favorable, regime.Unfavorable, regime.Unknown}

	for i := 0; i < 5000; i++ {
		switch rng.Intn(3) {
		case 0:
			b.ApplyDrawdownPenalty(rng.Float64() * 5)
		case 1:
			b.ApplyRecovery(rng.Float64()*10, regimes[rng.Intn(len(regimes))])
		case 2:
			b.ApplyRegimeScaling(regime.Reading{
				Regime:     regimes[rng.Intn(len(regimes))],
				Confidence: rng.Float64(),
			})
		}

		snap := b.Snapshot()
		assert.GreaterOrEqual(t, snap.CurrentRiskPct, 0.0)
		assert.LessOrEqual(t, snap.CurrentRiskPct, p.BaselineRiskPct)
		assert.LessOrEqual(t, b.Effective(), p.MaxRiskPct)
	}
}
