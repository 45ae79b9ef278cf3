package gates

import (
	"testing"

	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passingView returns a view that clears all five gates for a 100-value
// request against 10000 equity.
func passingView(t *testing.T) View {
	t.Helper()
	return View{
		Mode:             ModeLive,
		Equity:           10000,
		EffectiveRiskPct: 2.0,
		StrategyRiskPct:  1.5,
		HasLedger:        true,
		CapitalHeadroom:  500,
		Strategy: registry.Meta{
			StrategyID:     "momentum",
			AllowedRegimes: []regime.Regime{regime.Favorable},
			State:          registry.Active,
			Style:          registry.Directional,
		},
		Reading:  regime.Reading{Regime: regime.Favorable, Confidence: 0.8},
		Governor: risk.NewGovernor("acct-1", risk.DefaultPolicy()),
	}
}

func testRequest() Request {
	return Request{
		ID:             "req-1",
		StrategyID:     "momentum",
		Pair:           "BTC/USD",
		Side:           Buy,
		Size:           0.01,
		EstimatedValue: 100,
	}
}

func TestAllGatesPass(t *testing.T) {
	t.Parallel()

	v := NewPipeline().Check(testRequest(), passingView(t))
	assert.True(t, v.Allowed)
	assert.Empty(t, v.Reason)
}

func TestFirstDenialWins(t *testing.T) {
	t.Parallel()

	// Fails both the capital gate and the governor: attribution must name
	// CAPITAL, the earlier gate in the fixed order.
	view := passingView(t)
	view.CapitalHeadroom = 0
	view.Governor.ObserveDrawdown(99) // SHUTDOWN

	v := NewPipeline().Check(testRequest(), view)
	require.False(t, v.Allowed)
	assert.Equal(t, LayerCapital, v.Layer)
}

func TestGovernorNeverEvaluatedAfterEarlierDenial(t *testing.T) {
	t.Parallel()

	view := passingView(t)
	view.CapitalHeadroom = 0
	view.Governor.ObserveDrawdown(99)

	var layers []Layer
	NewPipeline().Each(testRequest(), view, func(v Verdict) {
		layers = append(layers, v.Layer)
	})

	// Short-circuit at CAPITAL: regime, permission, governor never run.
	assert.Equal(t, []Layer{LayerRiskBudget, LayerCapital}, layers)
}

func TestRiskBudgetGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*View, *Request)
		wantAllow bool
	}{
		{"within budget", func(v *View, r *Request) {}, true},
		{"exceeds strategy allocation", func(v *View, r *Request) {
			v.StrategyRiskPct = 0.5
			r.EstimatedValue = 100 // 1% > 0.5%
		}, false},
		{"exceeds account budget", func(v *View, r *Request) {
			v.StrategyRiskPct = 5.0
			v.EffectiveRiskPct = 0.5
			r.EstimatedValue = 100
		}, false},
		{"zero equity", func(v *View, r *Request) { v.Equity = 0 }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			view, req := passingView(t), testRequest()
			tt.mutate(&view, &req)

			v := CheckRiskBudget(req, view)
			assert.Equal(t, tt.wantAllow, v.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, LayerRiskBudget, v.Layer)
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestRiskBudgetWarning(t *testing.T) {
	t.Parallel()

	view, req := passingView(t), testRequest()
	view.StrategyRiskPct = 2.0
	req.EstimatedValue = 190 // 1.9% of 10000 = 95% of the 2% budget

	v := CheckRiskBudget(req, view)
	require.True(t, v.Allowed)
	assert.NotEmpty(t, v.Warnings)
}

func TestCapitalGate(t *testing.T) {
	t.Parallel()

	view, req := passingView(t), testRequest()

	view.HasLedger = false
	v := CheckCapital(req, view)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "no capital account")

	view.HasLedger = true
	view.CapitalHeadroom = 0
	v = CheckCapital(req, view)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "no capital allocated")

	view.CapitalHeadroom = 50 // below the 100 estimated value
	v = CheckCapital(req, view)
	assert.False(t, v.Allowed)
	assert.Contains(t, v.Reason, "exceeds capital headroom")
}

func TestRegimeGate(t *testing.T) {
	t.Parallel()

	view, req := passingView(t), testRequest()

	view.Reading = regime.Reading{Regime: regime.Unknown}
	v := CheckRegime(req, view)
	assert.False(t, v.Allowed)
	assert.Equal(t, LayerRegime, v.Layer)

	view.Reading = regime.Reading{Regime: regime.Unfavorable, Confidence: 0.9}
	v = CheckRegime(req, view)
	assert.False(t, v.Allowed)

	view.Strategy.AllowedRegimes = []regime.Regime{regime.Favorable, regime.Unfavorable}
	v = CheckRegime(req, view)
	assert.True(t, v.Allowed)
}

func TestPermissionGateObserveOnly(t *testing.T) {
	t.Parallel()

	view, req := passingView(t), testRequest()
	view.Mode = ModeObserveOnly

	v := CheckPermission(req, view)
	require.False(t, v.Allowed)
	assert.Equal(t, LayerPermission, v.Layer)
	assert.Contains(t, v.Reason, "OBSERVE_ONLY")
}

func TestGovernorGateDeniesWhenPaused(t *testing.T) {
	t.Parallel()

	view, req := passingView(t), testRequest()
	require.NoError(t, view.Governor.Pause("ops"))

	v := CheckGovernor(req, view)
	assert.False(t, v.Allowed)
	assert.Equal(t, LayerGovernor, v.Layer)
	assert.Contains(t, v.Reason, "PAUSED")
}
