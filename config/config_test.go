package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskgate/registry"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Default().SaveToFile(path))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, "LIVE", cfg.System.Mode)
		assert.Len(t, cfg.Strategies, 2)
		assert.Len(t, cfg.Simulation.Steps, 4)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.System.Mode = "HALF_LIVE" }},
		{"no accounts", func(c *Config) { c.Accounts = nil }},
		{"duplicate account", func(c *Config) { c.Accounts = append(c.Accounts, c.Accounts[0]) }},
		{"unknown strategy ref", func(c *Config) { c.Accounts[0].Strategies = []string{"ghost"} }},
		{"kill switch below probation", func(c *Config) { c.Risk.KillSwitchDDPct = 5 }},
		{"sentinel without cap", func(c *Config) { c.Execution = ExecutionConfig{Mode: "SENTINEL"} }},
		{"csv without path", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"bad style", func(c *Config) { c.Strategies[0].Style = "SIDEWAYS" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadUnparsableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not config"), 0644))
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestRegistryEntries(t *testing.T) {
	t.Parallel()

	entries := Default().RegistryEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, registry.Directional, entries[0].Style)
	assert.Equal(t, registry.Active, entries[0].State)
	assert.Len(t, entries[1].AllowedRegimes, 3)
}

func TestPolicyOverrides(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Risk.BaselineRiskPct = 1.0
	cfg.Risk.MaxDailyTrades = 10

	p := cfg.Policy()
	assert.InDelta(t, 1.0, p.BaselineRiskPct, 1e-9)
	assert.Equal(t, 10, p.MaxDailyTrades)
	// Unset knobs keep their defaults.
	assert.InDelta(t, 1.5, p.PenaltyFactor, 1e-9)
}
