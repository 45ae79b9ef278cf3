package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalingFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		min, max   float64
		want       float64
	}{
		{"neutral point", 0.4, 0.6, 1.5, 0.6},
		{"confidence 0.7", 0.7, 0.6, 1.5, 0.8},
		{"full confidence", 1.0, 0.6, 1.5, 1.0},
		{"zero confidence clamps low", 0.0, 0.6, 1.5, 0.6},
		{"budget clamp caps at one", 1.0, 0.6, 1.0, 1.0},
		{"confidence 0.7 budget range", 0.7, 0.6, 1.0, 0.8},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScalingFactor(tt.confidence, tt.min, tt.max)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	s := NewStatic()

	// Unseen instrument reports Unknown.
	got := s.Current("BTC/USD")
	assert.Equal(t, Unknown, got.Regime)
	assert.Zero(t, got.Confidence)

	s.Set("BTC/USD", Reading{Regime: Favorable, Confidence: 0.7})
	got = s.Current("BTC/USD")
	assert.Equal(t, Favorable, got.Regime)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)

	// SetAll becomes the fallback for instruments seen later.
	s.SetAll(Reading{Regime: Unfavorable, Confidence: 0.9})
	assert.Equal(t, Unfavorable, s.Current("BTC/USD").Regime)
	assert.Equal(t, Unfavorable, s.Current("ETH/USD").Regime)
}
