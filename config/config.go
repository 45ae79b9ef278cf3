package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete governance configuration: system mode, risk policy,
// capital rules, execution adapter, journal sink, logging, and the accounts
// and strategies to load at startup.
type Config struct {
	System     SystemConfig     `json:"system" yaml:"system"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Capital    CapitalConfig    `json:"capital" yaml:"capital"`
	Execution  ExecutionConfig  `json:"execution" yaml:"execution"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Accounts   []AccountConfig  `json:"accounts" yaml:"accounts"`
	Strategies []StrategyConfig `json:"strategies" yaml:"strategies"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// SystemConfig selects the operating mode at startup.
type SystemConfig struct {
	Mode       string `json:"mode" yaml:"mode"` // "LIVE" or "OBSERVE_ONLY"
	Instrument string `json:"instrument" yaml:"instrument"`
}

// RiskConfig mirrors the risk policy knobs. Percentages are in points:
// 2.0 means 2%.
type RiskConfig struct {
	BaselineRiskPct   float64 `json:"baseline_risk_pct" yaml:"baseline_risk_pct"`
	MaxRiskPct        float64 `json:"max_risk_pct" yaml:"max_risk_pct"`
	MaxSystemDDPct    float64 `json:"max_system_drawdown_pct" yaml:"max_system_drawdown_pct"`
	MaxStrategyDDPct  float64 `json:"max_strategy_drawdown_pct" yaml:"max_strategy_drawdown_pct"`
	MaxDailyLossPct   float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxDailyTrades    int     `json:"max_daily_trades" yaml:"max_daily_trades"`
	ProbationDDPct    float64 `json:"probation_drawdown_pct" yaml:"probation_drawdown_pct"`
	KillSwitchDDPct   float64 `json:"kill_switch_drawdown_pct" yaml:"kill_switch_drawdown_pct"`
	RecoveryPerDayPct float64 `json:"recovery_per_day_pct" yaml:"recovery_per_day_pct"`
}

// CapitalConfig carries the allocator rules.
type CapitalConfig struct {
	ProbationDecayRate   float64 `json:"probation_decay_rate" yaml:"probation_decay_rate"`
	ProbationDecayCycles int     `json:"probation_decay_cycles" yaml:"probation_decay_cycles"`
	PoolMinArbitrage     float64 `json:"pool_min_arbitrage" yaml:"pool_min_arbitrage"`
	StrategyMinArbitrage float64 `json:"strategy_min_arbitrage" yaml:"strategy_min_arbitrage"`
}

// ExecutionConfig selects the adapter behind the gateway.
type ExecutionConfig struct {
	Mode        string  `json:"mode" yaml:"mode"` // "REAL", "SIMULATED", "SHADOW", "SENTINEL"
	SentinelCap float64 `json:"sentinel_cap,omitempty" yaml:"sentinel_cap,omitempty"`
}

// JournalConfig selects the decision journal sink.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv" or "sqlite"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	JSON       bool   `json:"json" yaml:"json"`
}

// AccountConfig declares one isolated account and the strategies it opts
// into. Nothing trades on an account that does not list it here.
type AccountConfig struct {
	ID          string   `json:"id" yaml:"id"`
	Equity      float64  `json:"equity" yaml:"equity"`
	PoolCapital float64  `json:"pool_capital" yaml:"pool_capital"`
	Strategies  []string `json:"strategies" yaml:"strategies"`
}

// StrategyConfig declares one strategy's registry entry.
type StrategyConfig struct {
	ID             string   `json:"id" yaml:"id"`
	Style          string   `json:"style" yaml:"style"` // "DIRECTIONAL" or "ARBITRAGE"
	Profile        string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	AllowedRegimes []string `json:"allowed_regimes" yaml:"allowed_regimes"`
	Capital        float64  `json:"capital" yaml:"capital"`
}

// SimulationConfig scripts the scenario the run command replays: a regime
// per step and a signal with its simulated outcome.
type SimulationConfig struct {
	Steps []SimStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// SimStep is one scripted event.
type SimStep struct {
	Regime     string  `json:"regime" yaml:"regime"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	StrategyID string  `json:"strategy_id" yaml:"strategy_id"`
	Pair       string  `json:"pair" yaml:"pair"`
	Side       string  `json:"side" yaml:"side"`
	Value      float64 `json:"value" yaml:"value"`
	PnL        float64 `json:"pnl" yaml:"pnl"`
	Delay      string  `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "1s", "30m"
}

// ParseDelay converts the delay string to a duration.
func (s SimStep) ParseDelay() (time.Duration, error) {
	if s.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Delay)
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON, then validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.System.Mode != "LIVE" && c.System.Mode != "OBSERVE_ONLY" {
		return fmt.Errorf("system.mode must be LIVE or OBSERVE_ONLY")
	}
	if c.System.Instrument == "" {
		return fmt.Errorf("system.instrument is required")
	}

	if c.Risk.BaselineRiskPct <= 0 {
		return fmt.Errorf("risk.baseline_risk_pct must be positive")
	}
	if c.Risk.MaxRiskPct < c.Risk.BaselineRiskPct {
		return fmt.Errorf("risk.max_risk_pct must be at least the baseline")
	}
	if c.Risk.KillSwitchDDPct <= c.Risk.ProbationDDPct {
		return fmt.Errorf("risk.kill_switch_drawdown_pct must exceed probation_drawdown_pct")
	}

	switch c.Execution.Mode {
	case "REAL", "SIMULATED", "SHADOW":
	case "SENTINEL":
		if c.Execution.SentinelCap <= 0 {
			return fmt.Errorf("execution.sentinel_cap must be positive for SENTINEL mode")
		}
	default:
		return fmt.Errorf("execution.mode must be REAL, SIMULATED, SHADOW, or SENTINEL")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.Path == "" {
			return fmt.Errorf("journal.path required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}

	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	seen := make(map[string]bool, len(c.Accounts))
	known := make(map[string]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		if s.ID == "" {
			return fmt.Errorf("strategy id is required")
		}
		if s.Style != "DIRECTIONAL" && s.Style != "ARBITRAGE" {
			return fmt.Errorf("strategy %s: style must be DIRECTIONAL or ARBITRAGE", s.ID)
		}
		if len(s.AllowedRegimes) == 0 {
			return fmt.Errorf("strategy %s: allowed_regimes is required", s.ID)
		}
		known[s.ID] = true
	}
	for _, a := range c.Accounts {
		if a.ID == "" {
			return fmt.Errorf("account id is required")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate account id %s", a.ID)
		}
		seen[a.ID] = true
		if a.Equity <= 0 {
			return fmt.Errorf("account %s: equity must be positive", a.ID)
		}
		if a.PoolCapital <= 0 {
			return fmt.Errorf("account %s: pool_capital must be positive", a.ID)
		}
		for _, sid := range a.Strategies {
			if !known[sid] {
				return fmt.Errorf("account %s: unknown strategy %s", a.ID, sid)
			}
		}
	}
	return nil
}

// Default returns a runnable configuration: one account, two strategies, a
// simulated adapter, and a short scripted scenario.
func Default() *Config {
	return &Config{
		System: SystemConfig{
			Mode:       "LIVE",
			Instrument: "EUR/USD",
		},
		Risk: RiskConfig{
			BaselineRiskPct:   2.0,
			MaxRiskPct:        5.0,
			MaxSystemDDPct:    20,
			MaxStrategyDDPct:  15,
			MaxDailyLossPct:   5,
			MaxDailyTrades:    50,
			ProbationDDPct:    10,
			KillSwitchDDPct:   20,
			RecoveryPerDayPct: 0.1,
		},
		Capital: CapitalConfig{
			ProbationDecayRate:   0.5,
			ProbationDecayCycles: 2,
			PoolMinArbitrage:     100,
			StrategyMinArbitrage: 50,
		},
		Execution: ExecutionConfig{Mode: "SIMULATED"},
		Journal:   JournalConfig{Type: "csv", Path: "./journal.csv"},
		Log:       LogConfig{Level: "info"},
		Accounts: []AccountConfig{
			{
				ID:          "ACC-001",
				Equity:      100000,
				PoolCapital: 50000,
				Strategies:  []string{"momentum", "arb-spread"},
			},
		},
		Strategies: []StrategyConfig{
			{
				ID:             "momentum",
				Style:          "DIRECTIONAL",
				Profile:        "balanced",
				AllowedRegimes: []string{"FAVORABLE"},
				Capital:        10000,
			},
			{
				ID:             "arb-spread",
				Style:          "ARBITRAGE",
				Profile:        "conservative",
				AllowedRegimes: []string{"FAVORABLE", "UNFAVORABLE", "UNKNOWN"},
				Capital:        2000,
			},
		},
		Simulation: SimulationConfig{
			Steps: []SimStep{
				{Regime: "FAVORABLE", Confidence: 0.9, StrategyID: "momentum", Pair: "EUR/USD", Side: "BUY", Value: 1500, PnL: 300},
				{Regime: "FAVORABLE", Confidence: 0.7, StrategyID: "momentum", Pair: "EUR/USD", Side: "SELL", Value: 1200, PnL: -150},
				{Regime: "UNFAVORABLE", Confidence: 0.8, StrategyID: "momentum", Pair: "EUR/USD", Side: "BUY", Value: 1000, PnL: 0},
				{Regime: "UNFAVORABLE", Confidence: 0.8, StrategyID: "arb-spread", Pair: "EUR/USD", Side: "BUY", Value: 400, PnL: 40},
			},
		},
	}
}
