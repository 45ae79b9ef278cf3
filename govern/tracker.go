package govern

import (
	"math"
	"sync"

	"github.com/rustyeddy/riskgate/risk"
)

// Tracker accumulates per-(account, strategy) trade outcomes and summarizes
// them as the performance inputs the risk allocator consumes. It keeps a
// bounded window of recent P&L values per strategy.
type Tracker struct {
	mu     sync.Mutex
	window int
	stats  map[string]map[string]*strategyStats // accountID -> strategyID
}

type strategyStats struct {
	pnls   []float64
	wins   int
	trades int
	worst  float64 // most negative single P&L seen
}

func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = 50
	}
	return &Tracker{window: window, stats: make(map[string]map[string]*strategyStats)}
}

// Observe records one realized trade outcome.
func (t *Tracker) Observe(accountID, strategyID string, pnl float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	byStrategy, ok := t.stats[accountID]
	if !ok {
		byStrategy = make(map[string]*strategyStats)
		t.stats[accountID] = byStrategy
	}
	s, ok := byStrategy[strategyID]
	if !ok {
		s = &strategyStats{}
		byStrategy[strategyID] = s
	}

	s.pnls = append(s.pnls, pnl)
	if len(s.pnls) > t.window {
		s.pnls = s.pnls[len(s.pnls)-t.window:]
	}
	s.trades++
	if pnl > 0 {
		s.wins++
	}
	if pnl < s.worst {
		s.worst = pnl
	}
}

// Performance summarizes one account's strategies for the risk allocator.
// Strategies with no observed trades report Trades 0, which the allocator
// treats as "no history yet".
func (t *Tracker) Performance(accountID string, strategyIDs []string) map[string]risk.Performance {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]risk.Performance, len(strategyIDs))
	for _, sid := range strategyIDs {
		s := t.stats[accountID][sid]
		if s == nil || s.trades == 0 {
			out[sid] = risk.Performance{}
			continue
		}
		out[sid] = risk.Performance{
			RecentPnL:            sum(s.pnls),
			WinRate:              float64(s.wins) / float64(s.trades),
			Stability:            stability(s.pnls),
			DrawdownContribution: ddContribution(s.worst, s.pnls),
			Trades:               s.trades,
		}
	}
	return out
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// stability maps P&L variance into [0,1]: 1 for a perfectly steady stream,
// falling toward 0 as outcomes get noisier relative to their mean magnitude.
func stability(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0.5
	}
	mean := sum(pnls) / float64(len(pnls))
	var variance float64
	for _, x := range pnls {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(pnls))

	scale := math.Abs(mean)
	if scale < 1 {
		scale = 1
	}
	return 1 / (1 + math.Sqrt(variance)/scale)
}

// ddContribution maps the worst single loss into [0,1] relative to the total
// magnitude traded through the window.
func ddContribution(worst float64, pnls []float64) float64 {
	if worst >= 0 {
		return 0
	}
	var gross float64
	for _, x := range pnls {
		gross += math.Abs(x)
	}
	if gross == 0 {
		return 0
	}
	c := math.Abs(worst) / gross
	if c > 1 {
		c = 1
	}
	return c
}
