package capital

import (
	"testing"

	"github.com/rustyeddy/riskgate/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocateRelease(t *testing.T) {
	t.Parallel()

	p := NewPool(registry.Directional, 1000, 20)

	require.NoError(t, p.Allocate(400))
	assert.InDelta(t, 400, p.Allocated(), 1e-9)
	assert.InDelta(t, 600, p.Available(), 1e-9)

	// available = total - allocated, always.
	require.NoError(t, p.Release(150))
	assert.InDelta(t, 250, p.Allocated(), 1e-9)
	assert.InDelta(t, 750, p.Available(), 1e-9)
}

func TestPoolOverAllocationIsFatal(t *testing.T) {
	t.Parallel()

	p := NewPool(registry.Directional, 100, 20)

	err := p.Allocate(150)
	assert.ErrorIs(t, err, ErrOverAllocation)
	// Aborted, not clamped.
	assert.Zero(t, p.Allocated())

	err = p.Release(1)
	assert.ErrorIs(t, err, ErrOverAllocation)
}

func TestPoolDrawdownFromPeak(t *testing.T) {
	t.Parallel()

	p := NewPool(registry.Arbitrage, 1000, 25)

	p.RecordEquityChange(200) // 1200, new peak
	assert.InDelta(t, 0, p.DrawdownPct(), 1e-9)

	p.RecordEquityChange(-300) // 900 against peak 1200
	assert.InDelta(t, 25.0, p.DrawdownPct(), 1e-9)

	// Recovery above peak resets drawdown.
	p.RecordEquityChange(400) // 1300, new peak
	assert.InDelta(t, 0, p.DrawdownPct(), 1e-9)

	snap := p.Snapshot()
	assert.InDelta(t, 1300, snap.Total, 1e-9)
	assert.InDelta(t, 1300, snap.Peak, 1e-9)
}
