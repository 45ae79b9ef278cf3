package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/riskgate/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the decision journal",
	Long: `Query and display governance decision records from a SQLite journal.

Subcommands:
  account - List events for one account
  blocked - List blocked requests
  counts  - Count events by type

Examples:
  riskgate journal account ACC-001
  riskgate journal blocked --since 24h
  riskgate journal counts`,
}

var journalAccountCmd = &cobra.Command{
	Use:   "account <account-id>",
	Short: "List events for one account",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalAccount,
}

var journalBlockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List blocked requests",
	Args:  cobra.NoArgs,
	RunE:  runJournalBlocked,
}

var journalCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count events by type",
	Args:  cobra.NoArgs,
	RunE:  runJournalCounts,
}

var (
	journalDBPath string
	journalSince  time.Duration
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAccountCmd)
	journalCmd.AddCommand(journalBlockedCmd)
	journalCmd.AddCommand(journalCountsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./riskgate.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().DurationVar(&journalSince, "since", 24*time.Hour, "how far back to query")
}

func journalWindow() (time.Time, time.Time) {
	end := time.Now().UTC()
	return end.Add(-journalSince), end
}

func runJournalAccount(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end := journalWindow()
	events, err := j.ListByAccount(args[0], start, end)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	fmt.Printf("Events for %s (last %s): %d\n\n", args[0], journalSince, len(events))
	for _, ev := range events {
		printEvent(ev)
	}
	return nil
}

func runJournalBlocked(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end := journalWindow()
	events, err := j.ListBlocked(start, end)
	if err != nil {
		return fmt.Errorf("list blocked: %w", err)
	}

	fmt.Printf("Blocked requests (last %s): %d\n\n", journalSince, len(events))
	for _, ev := range events {
		printEvent(ev)
	}
	return nil
}

func runJournalCounts(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end := journalWindow()
	counts, err := j.CountByType(start, end)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}

	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, string(typ))
	}
	sort.Strings(types)

	fmt.Printf("Event counts (last %s):\n", journalSince)
	for _, typ := range types {
		fmt.Printf("  %-20s %d\n", typ, counts[journal.EventType(typ)])
	}
	return nil
}

func printEvent(ev journal.Event) {
	line := fmt.Sprintf("%s  %-20s", ev.Time.Format(time.RFC3339), ev.Type)
	if ev.AccountID != "" {
		line += " account=" + ev.AccountID
	}
	if ev.StrategyID != "" {
		line += " strategy=" + ev.StrategyID
	}
	if ev.Layer != "" {
		line += " layer=" + ev.Layer
	}
	if ev.Value != 0 {
		line += fmt.Sprintf(" value=%.2f", ev.Value)
	}
	if ev.Reason != "" {
		line += " reason=" + ev.Reason
	}
	fmt.Println(line)
}
