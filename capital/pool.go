// Package capital holds the isolated per-account capital pools, the
// per-strategy capital ledgers, and the allocator that is the only path by
// which a strategy's allocation may change.
package capital

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/riskgate/registry"
)

// ErrOverAllocation indicates an attempted pool mutation that exceeds
// availability. Callers are expected to clamp before calling; seeing this
// error means a programming defect, not a business condition, and the
// operation is aborted rather than clamped silently.
var ErrOverAllocation = fmt.Errorf("allocation exceeds pool availability")

// Pool is one isolated capital bucket. Each account owns exactly two pools
// (directional and arbitrage); instances are never shared across accounts.
type Pool struct {
	mu sync.Mutex

	style          registry.Style
	total          float64
	allocated      float64
	peak           float64
	maxDrawdownPct float64
	drawdownPct    float64
}

// NewPool creates a pool holding total capital with a max drawdown limit in
// percent (e.g. 20 means the pool refuses new allocations at 20% drawdown).
func NewPool(style registry.Style, total, maxDrawdownPct float64) *Pool {
	return &Pool{
		style:          style,
		total:          total,
		peak:           total,
		maxDrawdownPct: maxDrawdownPct,
	}
}

func (p *Pool) Style() registry.Style { return p.style }

func (p *Pool) Total() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Pool) Allocated() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}

// Available is always total minus allocated.
func (p *Pool) Available() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total - p.allocated
}

func (p *Pool) DrawdownPct() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawdownPct
}

func (p *Pool) MaxDrawdownPct() float64 { return p.maxDrawdownPct }

// Allocate reserves amount from the pool's available capital.
func (p *Pool) Allocate(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("allocate: negative amount %.2f", amount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if amount > p.total-p.allocated {
		return fmt.Errorf("%w: requested %.2f, available %.2f (%s pool)",
			ErrOverAllocation, amount, p.total-p.allocated, p.style)
	}
	p.allocated += amount
	return nil
}

// Release returns amount to the pool's available capital.
func (p *Pool) Release(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("release: negative amount %.2f", amount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if amount > p.allocated {
		return fmt.Errorf("%w: releasing %.2f with only %.2f allocated (%s pool)",
			ErrOverAllocation, amount, p.allocated, p.style)
	}
	p.allocated -= amount
	return nil
}

// RecordEquityChange applies a P&L delta to the pool's total capital, updates
// the peak, and recomputes drawdown as (peak - total) / peak.
func (p *Pool) RecordEquityChange(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total += delta
	if p.total > p.peak {
		p.peak = p.total
	}
	if p.peak > 0 {
		p.drawdownPct = (p.peak - p.total) / p.peak * 100
	}
}

// Snapshot is a point-in-time copy of the pool's metrics.
type PoolSnapshot struct {
	Style          registry.Style
	Total          float64
	Allocated      float64
	Available      float64
	Peak           float64
	DrawdownPct    float64
	MaxDrawdownPct float64
}

func (p *Pool) Snapshot() PoolSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolSnapshot{
		Style:          p.style,
		Total:          p.total,
		Allocated:      p.allocated,
		Available:      p.total - p.allocated,
		Peak:           p.peak,
		DrawdownPct:    p.drawdownPct,
		MaxDrawdownPct: p.maxDrawdownPct,
	}
}
