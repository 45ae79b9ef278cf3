package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/account"
	"github.com/rustyeddy/riskgate/config"
	"github.com/rustyeddy/riskgate/execution"
	"github.com/rustyeddy/riskgate/gates"
	"github.com/rustyeddy/riskgate/govern"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/logs"
	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted governance scenario from a config file",
	Long: `Run the full governance core against the scripted scenario in a
configuration file. Each step sets the market regime, runs an allocation
cycle, and feeds one signal through the admission pipeline; admitted
requests execute through the configured adapter.

Example:
  riskgate run -f governance.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("file")
}

// scriptedPnL lets each simulation step choose the fill outcome before its
// signal is dispatched.
type scriptedPnL struct {
	mu  sync.Mutex
	pnl float64
}

func (s *scriptedPnL) set(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pnl = v
}

func (s *scriptedPnL) get(gates.Request) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pnl
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logs.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logs.Close()

	rec, closeJournal, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer closeJournal()

	core, script, err := buildCore(cfg, rec)
	if err != nil {
		return err
	}

	fmt.Printf("Running governance scenario: %s\n", runConfigPath)
	fmt.Printf("  Mode: %s, accounts: %d, strategies: %d\n\n",
		cfg.System.Mode, len(cfg.Accounts), len(cfg.Strategies))

	regimes := core.Regimes().(*regime.Static)
	targets := capitalTargets(cfg)

	ctx := context.Background()
	for i, step := range cfg.Simulation.Steps {
		if d, derr := step.ParseDelay(); derr == nil && d > 0 {
			time.Sleep(d)
		}

		regimes.SetAll(regime.Reading{
			Regime:     regime.Regime(step.Regime),
			Confidence: step.Confidence,
		})
		if err := core.AllocationCycle(cfg.System.Instrument, targets); err != nil {
			return fmt.Errorf("allocation cycle: %w", err)
		}

		script.set(step.PnL)
		outcomes := core.EvaluateSignal(ctx, govern.Signal{
			StrategyID:     step.StrategyID,
			Pair:           step.Pair,
			Side:           gates.Side(step.Side),
			Size:           1,
			EstimatedValue: step.Value,
		})

		fmt.Printf("step %d: %s %s %s %.2f [regime %s %.2f]\n",
			i+1, step.StrategyID, step.Side, step.Pair, step.Value, step.Regime, step.Confidence)
		for _, out := range outcomes {
			if out.Executed {
				fmt.Printf("  %s: executed, pnl %+.2f\n", out.AccountID, out.Result.PnL)
			} else if out.Admitted {
				fmt.Printf("  %s: admitted but blocked at execution [%s] %s\n",
					out.AccountID, out.Result.Layer, out.Result.Reason)
			} else {
				fmt.Printf("  %s: blocked [%s] %s\n",
					out.AccountID, out.Verdict.Layer, out.Verdict.Reason)
			}
		}
	}

	fmt.Println("\nFinal account state:")
	for _, a := range core.Accounts().List() {
		s := a.Summary()
		fmt.Printf("  %s: state=%s equity=%.2f pnl=%+.2f drawdown=%.2f%% budget=%.3f%%\n",
			s.AccountID, s.State, s.Equity, s.PnL, s.DrawdownPct, s.RiskBudget.EffectiveRiskPct)
	}
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Recorder, func(), error) {
	switch jc.Type {
	case "csv":
		j, err := journal.NewCSV(jc.Path)
		if err != nil {
			return nil, nil, err
		}
		return j, func() { j.Close() }, nil
	default:
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return j, func() { j.Close() }, nil
	}
}

func buildCore(cfg *config.Config, rec journal.Recorder) (*govern.Core, *scriptedPnL, error) {
	reg := registry.New()
	for _, m := range cfg.RegistryEntries() {
		if err := reg.Register(m); err != nil {
			return nil, nil, fmt.Errorf("register strategy: %w", err)
		}
	}

	regimes := regime.NewStatic()
	regimes.SetAll(regime.Reading{Regime: regime.Unknown})

	policy := cfg.Policy()
	rules := cfg.CapitalRules()

	mgr := account.NewManager()
	for _, ac := range cfg.Accounts {
		a, err := mgr.Create(account.Spec{
			AccountID:   ac.ID,
			Equity:      ac.Equity,
			PoolCapital: ac.PoolCapital,
			Policy:      policy,
			Capital:     rules,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create account %s: %w", ac.ID, err)
		}
		for _, sid := range ac.Strategies {
			a.EnableStrategy(sid)
		}
	}

	script := &scriptedPnL{}
	adapter, err := buildAdapter(cfg.Execution, script)
	if err != nil {
		return nil, nil, err
	}
	gw, err := execution.NewGateway(execution.Mode(cfg.Execution.Mode), adapter, rec)
	if err != nil {
		return nil, nil, err
	}

	core, err := govern.New(govern.Options{
		Mode:     gates.Mode(cfg.System.Mode),
		Registry: reg,
		Regimes:  regimes,
		Accounts: mgr,
		Gateway:  gw,
		Journal:  rec,
		Policy:   policy,
	})
	if err != nil {
		return nil, nil, err
	}
	return core, script, nil
}

func buildAdapter(ec config.ExecutionConfig, script *scriptedPnL) (execution.Adapter, error) {
	switch execution.Mode(ec.Mode) {
	case execution.ModeSimulated:
		return execution.NewSim(script.get), nil
	case execution.ModeShadow:
		return execution.NewShadow(), nil
	case execution.ModeSentinel:
		return execution.NewSentinel(execution.NewSim(script.get), ec.SentinelCap)
	case execution.ModeReal:
		return nil, fmt.Errorf("REAL execution requires a broker binding; use SIMULATED, SHADOW, or SENTINEL here")
	default:
		return nil, fmt.Errorf("unknown execution mode %q", ec.Mode)
	}
}

func capitalTargets(cfg *config.Config) map[string]float64 {
	targets := make(map[string]float64, len(cfg.Strategies))
	for _, s := range cfg.Strategies {
		if s.Capital > 0 {
			targets[s.ID] = s.Capital
		}
	}
	return targets
}
