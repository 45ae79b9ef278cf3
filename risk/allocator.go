package risk

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/riskgate/registry"
)

// ErrOverAllocated indicates the sum of strategy risk allocations exceeded
// the account's effective budget. This is a programming defect in the weight
// math, never a business condition, so the recomputation aborts.
var ErrOverAllocated = fmt.Errorf("strategy risk allocations exceed effective budget")

// Performance is one strategy's trailing stats, fed by the outcome tracker.
// WinRate, Stability, and DrawdownContribution are all in [0, 1].
type Performance struct {
	RecentPnL            float64
	WinRate              float64
	Stability            float64
	DrawdownContribution float64
	Trades               int // 0 means no history yet
}

// Allocation is one strategy's share of the account risk budget.
type Allocation struct {
	StrategyID string
	Weight     float64
	RiskPct    float64
	Score      float64
}

// Allocator distributes an account's effective risk percentage across its
// enabled, non-probation strategies by performance score.
type Allocator struct {
	newStrategyWeight float64
}

func NewAllocator(p Policy) *Allocator {
	return &Allocator{newStrategyWeight: p.NewStrategyWeight}
}

// Distribute recomputes the risk split. stateOf reports each strategy's
// lifecycle state; probation and disabled strategies always get zero. The
// invariant sum(RiskPct) <= effective is asserted on every recomputation.
func (a *Allocator) Distribute(effective float64, perf map[string]Performance, stateOf func(string) registry.State) ([]Allocation, error) {
	ids := make([]string, 0, len(perf))
	for id := range perf {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var eligible, fresh []string
	for _, id := range ids {
		switch stateOf(id) {
		case registry.Active:
			if perf[id].Trades == 0 {
				fresh = append(fresh, id)
			} else {
				eligible = append(eligible, id)
			}
		}
	}

	scores := a.scores(eligible, perf)
	var totalScore float64
	for _, s := range scores {
		totalScore += s
	}

	// New strategies take a fixed minimal slice; scored strategies share the
	// remainder so the weights still sum to at most one.
	remainder := 1.0 - float64(len(fresh))*a.newStrategyWeight
	if remainder < 0 {
		remainder = 0
	}

	out := make([]Allocation, 0, len(ids))
	var sum float64
	for _, id := range ids {
		alloc := Allocation{StrategyID: id}

		switch stateOf(id) {
		case registry.Active:
			if perf[id].Trades == 0 {
				alloc.Weight = a.newStrategyWeight
			} else if totalScore > 0 {
				alloc.Score = scores[id]
				alloc.Weight = scores[id] / totalScore * remainder
			}
			alloc.RiskPct = effective * alloc.Weight
		default:
			// probation, paused, disabled: zero allocation
		}

		sum += alloc.RiskPct
		out = append(out, alloc)
	}

	const eps = 1e-9
	if sum > effective+eps {
		return nil, fmt.Errorf("%w: sum %.6f, effective %.6f", ErrOverAllocated, sum, effective)
	}
	return out, nil
}

// scores computes performance scores for strategies with history:
//
//	0.4*normalize(recentPnL) + 0.3*winRate + 0.2*stability - 0.1*drawdownContribution
//
// Negative scores floor at zero so a badly losing strategy cannot invert the
// weighting of the others.
func (a *Allocator) scores(ids []string, perf map[string]Performance) map[string]float64 {
	out := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return out
	}

	minPnL, maxPnL := perf[ids[0]].RecentPnL, perf[ids[0]].RecentPnL
	for _, id := range ids[1:] {
		p := perf[id].RecentPnL
		if p < minPnL {
			minPnL = p
		}
		if p > maxPnL {
			maxPnL = p
		}
	}

	for _, id := range ids {
		p := perf[id]

		norm := 0.5 // all strategies equal
		if maxPnL > minPnL {
			norm = (p.RecentPnL - minPnL) / (maxPnL - minPnL)
		}

		score := 0.4*norm + 0.3*p.WinRate + 0.2*p.Stability - 0.1*p.DrawdownContribution
		if score < 0 {
			score = 0
		}
		out[id] = score
	}
	return out
}
