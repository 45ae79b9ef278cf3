package govern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerSummarizesOutcomes(t *testing.T) {
	t.Parallel()

	tr := NewTracker(10)
	tr.Observe("acct-a", "momentum", 100)
	tr.Observe("acct-a", "momentum", -50)
	tr.Observe("acct-a", "momentum", 100)

	perf := tr.Performance("acct-a", []string{"momentum", "fresh"})

	m := perf["momentum"]
	assert.Equal(t, 3, m.Trades)
	assert.InDelta(t, 150, m.RecentPnL, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-9)
	assert.Greater(t, m.Stability, 0.0)
	assert.LessOrEqual(t, m.Stability, 1.0)
	// Worst loss 50 against 250 gross traded.
	assert.InDelta(t, 0.2, m.DrawdownContribution, 1e-9)

	// No history reports the zero value, which downstream reads as new.
	assert.Zero(t, perf["fresh"].Trades)
}

func TestTrackerWindowBounds(t *testing.T) {
	t.Parallel()

	tr := NewTracker(3)
	for i := 0; i < 10; i++ {
		tr.Observe("acct-a", "momentum", 10)
	}

	perf := tr.Performance("acct-a", []string{"momentum"})
	require.Contains(t, perf, "momentum")
	// Trade count is lifetime; the P&L window is bounded.
	assert.Equal(t, 10, perf["momentum"].Trades)
	assert.InDelta(t, 30, perf["momentum"].RecentPnL, 1e-9)
}
