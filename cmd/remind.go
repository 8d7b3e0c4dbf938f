package cmd

import (
	"context"
	"fmt"
	"time"

	"billwatch/internal/cli"
	"billwatch/internal/schedule"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Rebuild the reminder schedule from the current bill set",
	RunE:  runRemind,
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending reminders",
	RunE:  runRemindList,
}

func init() {
	remindCmd.AddCommand(remindListCmd)
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
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

	cfg := loadConfig()
	sched := schedule.New(s.Registry(), s, cfg)
	plan, err := sched.RescheduleAll(cmd.Context(), accounts, bills, now)
	if err != nil {
		// Best-effort: the schedule may be partially applied, report and
		// move on rather than retrying.
		fmt.Printf("  %s %v\n", cli.Warn.Render("Warning:"), err)
		return nil
	}

	if !cfg.Notifications.Enabled {
		fmt.Printf("  Notifications are disabled; cleared %d reminder(s).\n", plan.Cancelled)
		return nil
	}

	fmt.Printf("  Scheduled %d reminder(s), replaced %d.\n", len(plan.Desired), plan.Cancelled)
	if len(plan.Overspent) > 0 {
		fmt.Printf("  %s %d account(s) have negative safe-to-spend.\n",
			cli.Warn.Render("Over budget:"), len(plan.Overspent))
	}
	return nil
}

func runRemindList(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	pending, err := s.Registry().Pending(context.Background())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("\n  No pending reminders. Run `billwatch remind` to rebuild.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(pending))
	for _, r := range pending {
		rows = append(rows, []string{
			r.FireAt.Format("Jan 2 15:04"),
			cli.FormatRelativeDays(r.FireAt, now),
			truncate(r.Title, 34),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Fires", "", "Reminder"},
		Rows:    rows,
	}))
	return nil
}
