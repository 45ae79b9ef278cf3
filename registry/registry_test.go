package registry

import (
	"testing"

	"github.com/rustyeddy/riskgate/regime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingEntryIsDisabled(t *testing.T) {
	t.Parallel()

	r := New()
	m := r.Get("ghost")
	assert.Equal(t, Disabled, m.State)
	assert.False(t, m.AllowsRegime(regime.Favorable))

	_, err := r.Require("ghost")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRegisterAndState(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(Meta{
		StrategyID:     "momentum",
		AllowedRegimes: []regime.Regime{regime.Favorable},
		State:          Active,
		Style:          Directional,
		Profile:        Aggressive,
	}))

	m := r.Get("momentum")
	assert.Equal(t, Active, m.State)
	assert.True(t, m.AllowsRegime(regime.Favorable))
	assert.False(t, m.AllowsRegime(regime.Unknown))

	require.NoError(t, r.SetState("momentum", Probation))
	assert.Equal(t, Probation, r.Get("momentum").State)

	assert.ErrorIs(t, r.SetState("ghost", Paused), ErrUnknownStrategy)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	r := New()
	assert.Error(t, r.Register(Meta{StrategyID: ""}))
	assert.Error(t, r.Register(Meta{StrategyID: "x", Style: "SIDEWAYS"}))
}
