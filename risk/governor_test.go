package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownSupremacy(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())
	g.ObserveDrawdown(25) // past 20% system limit

	require.Equal(t, Shutdown, g.State())
	assert.NotEmpty(t, g.Reason())

	// Every approval is denied, forever.
	for i := 0; i < 10; i++ {
		a := g.Approve()
		assert.False(t, a.Allowed)
		assert.Contains(t, a.Reason, "SHUTDOWN")
	}

	// No way back: resume, pause, probation all refuse.
	assert.ErrorIs(t, g.Resume(), ErrShutdown)
	assert.ErrorIs(t, g.Pause("x"), ErrShutdown)
	assert.ErrorIs(t, g.EnterProbation("x"), ErrShutdown)
	assert.ErrorIs(t, g.ClearProbation(), ErrShutdown)
	assert.Equal(t, Shutdown, g.State())
}

func TestDailyLossTripsShutdown(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())

	g.ObserveEquity(10000) // fixes day-start equity
	g.ObserveEquity(9600)  // -4%, under the 5% limit
	assert.Equal(t, Active, g.State())

	g.ObserveEquity(9400) // -6%
	assert.Equal(t, Shutdown, g.State())
	assert.Contains(t, g.Reason(), "daily loss")
}

func TestStrategyDrawdownTripsShutdown(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())
	g.ObserveStrategyDrawdown("momentum", 16)

	assert.Equal(t, Shutdown, g.State())
	assert.Contains(t, g.Reason(), "momentum")
}

func TestPauseResume(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())

	require.NoError(t, g.Pause("maintenance window"))
	assert.Equal(t, Paused, g.State())

	a := g.Approve()
	assert.False(t, a.Allowed)
	assert.Contains(t, a.Reason, "maintenance window")

	require.NoError(t, g.Resume())
	assert.Equal(t, Active, g.State())
	assert.True(t, g.Approve().Allowed)
}

func TestProbationLifecycle(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())

	require.NoError(t, g.EnterProbation("underperforming"))
	assert.Equal(t, Probation, g.State())

	// Probation still allows trading; capital decay handles the squeeze.
	assert.True(t, g.Approve().Allowed)

	require.NoError(t, g.ClearProbation())
	assert.Equal(t, Active, g.State())
}

func TestDailyTradeBudget(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	p.MaxDailyTrades = 5
	g := NewGovernor("acct-1", p)

	for i := 0; i < 4; i++ {
		require.True(t, g.Approve().Allowed)
		g.RecordTrade()
	}

	// 4 of 5 used: still allowed but with a warning.
	a := g.Approve()
	require.True(t, a.Allowed)
	require.NotEmpty(t, a.Warnings)
	g.RecordTrade()

	a = g.Approve()
	assert.False(t, a.Allowed)
	assert.Contains(t, a.Reason, "daily trade budget")
}

func TestTransitionHistoryAndHook(t *testing.T) {
	t.Parallel()

	g := NewGovernor("acct-1", DefaultPolicy())

	var seen []Transition
	g.SetOnTransition(func(tr Transition) { seen = append(seen, tr) })

	require.NoError(t, g.Pause("p"))
	require.NoError(t, g.Resume())
	g.ObserveDrawdown(50)

	hist := g.History()
	require.Len(t, hist, 3)
	assert.Equal(t, Paused, hist[0].To)
	assert.Equal(t, Active, hist[1].To)
	assert.Equal(t, Shutdown, hist[2].To)
	assert.Len(t, seen, 3)

	for _, tr := range hist {
		assert.NotEmpty(t, tr.Reason, "every transition carries a reason")
	}
}
