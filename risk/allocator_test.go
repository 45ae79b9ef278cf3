package risk

import (
	"testing"

	"github.com/rustyeddy/riskgate/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateAll(s registry.State) func(string) registry.State {
	return func(string) registry.State { return s }
}

func TestDistributeByPerformance(t *testing.T) {
	t.Parallel()

	a := NewAllocator(DefaultPolicy())
	perf := map[string]Performance{
		"winner": {RecentPnL: 100, WinRate: 0.7, Stability: 0.8, DrawdownContribution: 0.1, Trades: 40},
		"loser":  {RecentPnL: -50, WinRate: 0.3, Stability: 0.4, DrawdownContribution: 0.6, Trades: 35},
	}

	allocs, err := a.Distribute(2.0, perf, stateAll(registry.Active))
	require.NoError(t, err)
	require.Len(t, allocs, 2)

	byID := make(map[string]Allocation)
	var sum float64
	for _, al := range allocs {
		byID[al.StrategyID] = al
		sum += al.RiskPct
	}

	assert.Greater(t, byID["winner"].RiskPct, byID["loser"].RiskPct)
	assert.LessOrEqual(t, sum, 2.0+1e-9)
	assert.InDelta(t, 1.0, byID["winner"].Weight+byID["loser"].Weight, 1e-9)
}

func TestProbationAndDisabledGetZero(t *testing.T) {
	t.Parallel()

	a := NewAllocator(DefaultPolicy())
	perf := map[string]Performance{
		"ok":    {RecentPnL: 10, WinRate: 0.5, Stability: 0.5, Trades: 10},
		"probe": {RecentPnL: 90, WinRate: 0.9, Stability: 0.9, Trades: 50},
	}
	states := map[string]registry.State{
		"ok":    registry.Active,
		"probe": registry.Probation,
	}

	allocs, err := a.Distribute(2.0, perf, func(id string) registry.State { return states[id] })
	require.NoError(t, err)

	for _, al := range allocs {
		if al.StrategyID == "probe" {
			assert.Zero(t, al.RiskPct, "probation strategy must get zero risk")
		} else {
			assert.Greater(t, al.RiskPct, 0.0)
		}
	}
}

func TestNewStrategyGetsMinimalWeight(t *testing.T) {
	t.Parallel()

	a := NewAllocator(DefaultPolicy())
	perf := map[string]Performance{
		"veteran": {RecentPnL: 60, WinRate: 0.6, Stability: 0.7, Trades: 100},
		"rookie":  {Trades: 0},
	}

	allocs, err := a.Distribute(2.0, perf, stateAll(registry.Active))
	require.NoError(t, err)

	var sum float64
	for _, al := range allocs {
		sum += al.RiskPct
		if al.StrategyID == "rookie" {
			// fixed 0.1% weight, not zero and not an estimate
			assert.InDelta(t, 0.001, al.Weight, 1e-12)
			assert.InDelta(t, 2.0*0.001, al.RiskPct, 1e-12)
		}
	}
	assert.LessOrEqual(t, sum, 2.0+1e-9)
}

func TestEqualPnLSplitsEvenly(t *testing.T) {
	t.Parallel()

	a := NewAllocator(DefaultPolicy())
	perf := map[string]Performance{
		"a": {RecentPnL: 25, WinRate: 0.5, Stability: 0.5, Trades: 10},
		"b": {RecentPnL: 25, WinRate: 0.5, Stability: 0.5, Trades: 10},
	}

	allocs, err := a.Distribute(3.0, perf, stateAll(registry.Active))
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.InDelta(t, allocs[0].RiskPct, allocs[1].RiskPct, 1e-9)
	assert.InDelta(t, 1.5, allocs[0].RiskPct, 1e-9)
}

func TestDistributeEmpty(t *testing.T) {
	t.Parallel()

	a := NewAllocator(DefaultPolicy())
	allocs, err := a.Distribute(2.0, map[string]Performance{}, stateAll(registry.Active))
	require.NoError(t, err)
	assert.Empty(t, allocs)
}
