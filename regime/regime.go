// Package regime carries the market-regime classification consumed by the
// admission pipeline. The detector itself lives outside this module; the core
// only ever reads {regime, confidence} pairs through the Provider interface.
package regime

// Regime is the system-wide market condition classification.
type Regime string

const (
	Favorable   Regime = "FAVORABLE"
	Unfavorable Regime = "UNFAVORABLE"
	Unknown     Regime = "UNKNOWN"
)

// Valid reports whether r is one of the three known classifications.
func (r Regime) Valid() bool {
	switch r {
	case Favorable, Unfavorable, Unknown:
		return true
	}
	return false
}

// Reading is one regime observation for an instrument.
type Reading struct {
	Regime     Regime
	Confidence float64 // [0, 1]
}

// Provider is the read-only regime collaborator. Implementations must be safe
// for concurrent use; the core never writes through this interface.
type Provider interface {
	Current(instrument string) Reading
}

// ScalingFactor maps a regime confidence to a capital/risk scaling factor:
//
//	0.6 + (confidence - 0.4) * (0.4 / 0.6)
//
// clamped to [min, max]. Confidence 0.4 is the neutral point (factor 1.0 at
// confidence 1.0); callers pick the clamp range (capital allocation allows a
// boost up to 1.5, the risk budget caps at 1.0).
func ScalingFactor(confidence, min, max float64) float64 {
	f := 0.6 + (confidence-0.4)*(0.4/0.6)
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
