package config

import (
	"github.com/rustyeddy/riskgate/capital"
	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/rustyeddy/riskgate/risk"
)

// Policy converts the risk section into a risk policy, filling unset knobs
// from the defaults.
func (c *Config) Policy() risk.Policy {
	p := risk.DefaultPolicy()
	if c.Risk.BaselineRiskPct > 0 {
		p.BaselineRiskPct = c.Risk.BaselineRiskPct
	}
	if c.Risk.MaxRiskPct > 0 {
		p.MaxRiskPct = c.Risk.MaxRiskPct
	}
	if c.Risk.MaxSystemDDPct > 0 {
		p.MaxSystemDrawdownPct = c.Risk.MaxSystemDDPct
	}
	if c.Risk.MaxStrategyDDPct > 0 {
		p.MaxStrategyDrawdownPct = c.Risk.MaxStrategyDDPct
	}
	if c.Risk.MaxDailyLossPct > 0 {
		p.MaxDailyLossPct = c.Risk.MaxDailyLossPct
	}
	if c.Risk.MaxDailyTrades > 0 {
		p.MaxDailyTrades = c.Risk.MaxDailyTrades
	}
	if c.Risk.ProbationDDPct > 0 {
		p.ProbationDrawdownPct = c.Risk.ProbationDDPct
	}
	if c.Risk.KillSwitchDDPct > 0 {
		p.KillSwitchDrawdownPct = c.Risk.KillSwitchDDPct
	}
	if c.Risk.RecoveryPerDayPct > 0 {
		p.RecoveryRatePerDay = c.Risk.RecoveryPerDayPct
	}
	return p
}

// CapitalRules converts the capital section into allocator config, filling
// unset knobs from the defaults.
func (c *Config) CapitalRules() capital.Config {
	cc := capital.DefaultConfig()
	if c.Capital.ProbationDecayRate > 0 {
		cc.DecayRate = c.Capital.ProbationDecayRate
	}
	if c.Capital.ProbationDecayCycles > 0 {
		cc.DecayPeriods = c.Capital.ProbationDecayCycles
	}
	if c.Capital.PoolMinArbitrage > 0 {
		cc.PoolMinArbitrage = c.Capital.PoolMinArbitrage
	}
	if c.Capital.StrategyMinArbitrage > 0 {
		cc.StrategyMinArbitrage = c.Capital.StrategyMinArbitrage
	}
	return cc
}

// RegistryEntries converts the strategies section into registry metadata.
func (c *Config) RegistryEntries() []registry.Meta {
	out := make([]registry.Meta, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		regimes := make([]regime.Regime, 0, len(s.AllowedRegimes))
		for _, r := range s.AllowedRegimes {
			regimes = append(regimes, regime.Regime(r))
		}
		out = append(out, registry.Meta{
			StrategyID:     s.ID,
			AllowedRegimes: regimes,
			State:          registry.Active,
			Style:          registry.Style(s.Style),
			Profile:        registry.Profile(s.Profile),
		})
	}
	return out
}
