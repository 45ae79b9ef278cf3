// Package gates implements the ordered admission pipeline. Each gate is a
// pure function over (request, view) answering allow/deny with a reason; the
// pipeline runs them in a fixed order and the first denial wins, tagged with
// the layer that produced it.
package gates

import (
	"fmt"
	"time"

	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/rustyeddy/riskgate/risk"
)

// Layer identifies which check produced a verdict.
type Layer string

const (
	LayerRiskBudget Layer = "RISK_BUDGET"
	LayerCapital    Layer = "CAPITAL"
	LayerRegime     Layer = "REGIME"
	LayerPermission Layer = "PERMISSION"
	LayerGovernor   Layer = "GOVERNOR"
	LayerExecution  Layer = "EXECUTION"
)

// Mode is the system operating mode. OBSERVE_ONLY keeps every pipeline
// running but denies all execution at the permission gate.
type Mode string

const (
	ModeLive        Mode = "LIVE"
	ModeObserveOnly Mode = "OBSERVE_ONLY"
)

// Request is one candidate trade. Immutable once created.
type Request struct {
	ID             string
	StrategyID     string
	Pair           string
	Side           Side
	Size           float64
	EstimatedValue float64
	CreatedAt      time.Time
}

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// RequestedRiskPct is the risk the request would consume, as a percentage of
// account equity.
func (r Request) RequestedRiskPct(equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return r.EstimatedValue / equity * 100
}

// View is everything the gates may read for one (request, account)
// evaluation. It is assembled by the governance core and never mutated by a
// gate.
type View struct {
	Mode   Mode
	Equity float64

	// risk budget
	EffectiveRiskPct float64
	StrategyRiskPct  float64

	// capital
	HasLedger       bool
	CapitalHeadroom float64

	// regime
	Strategy registry.Meta
	Reading  regime.Reading

	Governor *risk.Governor
}

// Verdict is one gate's (or the whole pipeline's) answer.
type Verdict struct {
	Allowed  bool
	Layer    Layer
	Reason   string
	Warnings []string
}

func allow(layer Layer, warnings ...string) Verdict {
	return Verdict{Allowed: true, Layer: layer, Warnings: warnings}
}

func deny(layer Layer, format string, args ...interface{}) Verdict {
	return Verdict{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}
