package cmd

import (
	"fmt"
	"time"

	"billwatch/internal/advice"
	"billwatch/internal/cli"
	"billwatch/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagAdviseMonth string

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Spending recommendations for the month",
	RunE:  runAdvise,
}

var adviseDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Hide a recommendation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdviseDismiss,
}

func init() {
	adviseCmd.Flags().StringVarP(&flagAdviseMonth, "month", "m", "", "Month to analyze, YYYY-MM (default current)")

	adviseCmd.AddCommand(adviseDismissCmd)
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(_ *cobra.Command, _ []string) error {
	now := time.Now()
	month := now
	if flagAdviseMonth != "" {
		parsed, err := time.ParseInLocation("2006-01", flagAdviseMonth, time.Local)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", flagAdviseMonth)
		}
		month = parsed
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	accounts, err := s.ListAccounts()
	if err != nil {
		return err
	}
	bills, err := s.RefreshBills(now)
	if err != nil {
		return err
	}
	// Two months of history covers the prior-month comparisons.
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.Local)
	txns, err := s.ListTransactions(monthStart.AddDate(0, -1, 0), monthStart.AddDate(0, 1, 0))
	if err != nil {
		return err
	}

	recs := advice.Compute(month, now, txns, accounts, bills, loadConfig())

	shown := 0
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ADVICE  %s", month.Format("January 2006"))))
	fmt.Println()
	for _, r := range recs {
		dismissed, err := s.IsRecommendationDismissed(r.ID)
		if err != nil {
			return err
		}
		if dismissed {
			continue
		}
		shown++
		fmt.Printf("  %s %s\n", severityBadge(r.Severity), r.Title)
		fmt.Printf("    %s\n", cli.Muted.Render(r.Body))
		fmt.Printf("    %s\n\n", cli.Muted.Render("dismiss: billwatch advise dismiss "+r.ID))
	}

	if shown == 0 {
		fmt.Println("  Nothing to flag. Spending looks on track.")
		fmt.Println()
	}
	return nil
}

func runAdviseDismiss(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.DismissRecommendation(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Dismissed %s\n", args[0])
	return nil
}

func severityBadge(sev model.Severity) string {
	switch sev {
	case model.SeverityDanger:
		return cli.MoneyBad.Render("[!]")
	case model.SeverityWarning:
		return cli.Warn.Render("[~]")
	default:
		return lipgloss.NewStyle().Foreground(cli.ColorBlue).Render("[i]")
	}
}
