package cmd

import (
	"fmt"
	"os"
	"time"

	"billwatch/internal/cli"
	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/recur"
	"billwatch/internal/spendable"
	"billwatch/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDBPath        string
	flagQuiet         bool
	flagIncludeCredit bool
)

var rootCmd = &cobra.Command{
	Use:   "billwatch",
	Short: "Bill tracking and safe-to-spend CLI",
	Long:  "Track bills and accounts, project upcoming obligations, and see what is actually safe to spend.",
	RunE:  runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDBPath, "db", "d", store.DefaultPath(), "Database path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolVar(&flagIncludeCredit, "include-credit", false, "Include credit accounts in the aggregate")
}

// loadConfig returns saved settings, falling back to defaults on first run.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// openStore is the shared database opening path used by all commands.
func openStore() (*store.Store, error) {
	s, err := store.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", flagDBPath, err)
	}
	return s, nil
}

func runOverview(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	accounts, err := s.ListAccounts()
	if err != nil {
		return err
	}
	bills, err := s.RefreshBills(now)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		fmt.Println("\n  No accounts yet. Run `billwatch setup` to get started.")
		return nil
	}

	cfg := loadConfig()
	calc := spendable.New(cfg.Budget)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BILLWATCH  %s", cli.FormatDay(now))))
	fmt.Println()

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		res := calc.ForAccount(a, bills, spendable.Opts{Now: now})
		rows = append(rows, []string{
			a.Name,
			string(a.Type),
			cli.FormatMoney(a.BalanceCurrent),
			cli.FormatMoney(res.DueToday),
			cli.FormatMoney(res.ObligationsWindow),
			cli.StyleMoney(res.SafeToSpend),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Type", "Balance", "Due today", fmt.Sprintf("Next %dd", cfg.Budget.SpendWindowDays), "Safe to spend"},
		Rows:    rows,
	}))

	aggregate := calc.Aggregate(accounts, bills, flagIncludeCredit, now)
	fmt.Printf("\n  Safe to spend overall: %s\n", cli.StyleMoney(aggregate))

	upcoming := countUpcoming(bills, now, cfg.Budget.SpendWindowDays)
	if upcoming > 0 {
		fmt.Printf("  %d bill(s) due in the next %d days. See `billwatch bills`.\n", upcoming, cfg.Budget.SpendWindowDays)
	}
	fmt.Println()

	return nil
}

func countUpcoming(bills []model.Bill, now time.Time, windowDays int) int {
	windowEnd := now.AddDate(0, 0, windowDays)
	n := 0
	for _, b := range bills {
		if !b.Active() {
			continue
		}
		if occ, ok := recur.NextOccurrenceOnOrAfter(b, now); ok && occ.Before(windowEnd) {
			n++
		}
	}
	return n
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
