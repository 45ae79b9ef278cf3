package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskgate",
	Short: "Risk governance and capital admission core for automated trading",
	Long: `Riskgate is the risk-governance and capital-admission core of an
automated trading platform.

It provides:
  - An ordered admission pipeline every trade request must clear
  - Per-account risk budgets that decay on drawdown and recover slowly
  - Isolated capital pools with performance-weighted strategy allocation
  - A risk governor state machine with automatic hard-limit shutdown
  - A single execution gateway with simulated, shadow, and sentinel modes
  - An append-only decision journal (CSV or SQLite)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Local overrides (journal paths, log level) may live in a .env file;
	// absence is fine.
	_ = godotenv.Load()
}
