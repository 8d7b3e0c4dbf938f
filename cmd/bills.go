package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"billwatch/internal/cli"
	"billwatch/internal/model"
	"billwatch/internal/recur"
	"billwatch/internal/spendable"

	"github.com/spf13/cobra"
)

var (
	flagBillRepeat   string
	flagBillAccount  string
	flagBillOverride string
	flagBillDue      string
	flagBillAll      bool
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "List bills with their next due dates",
	RunE:  runBills,
}

var billsAddCmd = &cobra.Command{
	Use:   "add <name> <amount>",
	Short: "Add a bill",
	Args:  cobra.ExactArgs(2),
	RunE:  runBillsAdd,
}

var billsPayCmd = &cobra.Command{
	Use:   "pay <bill>",
	Short: "Mark a bill paid from its funding account",
	Args:  cobra.ExactArgs(1),
	RunE:  runBillsPay,
}

func init() {
	billsAddCmd.Flags().StringVarP(&flagBillRepeat, "repeat", "r", "none", "Repeat cycle (none, monthly, yearly)")
	billsAddCmd.Flags().StringVarP(&flagBillAccount, "account", "a", "", "Funding account (name or id)")
	billsAddCmd.Flags().StringVar(&flagBillOverride, "pay-from", "", "One-off override account for the next payment")
	billsAddCmd.Flags().StringVar(&flagBillDue, "due", "", "Due date, YYYY-MM-DD (default today)")

	billsCmd.Flags().BoolVar(&flagBillAll, "all", false, "Include paid bills")

	billsCmd.AddCommand(billsAddCmd)
	billsCmd.AddCommand(billsPayCmd)
	rootCmd.AddCommand(billsCmd)
}

func runBills(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	bills, err := s.RefreshBills(now)
	if err != nil {
		return err
	}
	if len(bills) == 0 {
		fmt.Println("\n  No bills. Add one with `billwatch bills add <name> <amount>`.")
		return nil
	}
	type row struct {
		bill model.Bill
		next time.Time
		ok   bool
	}
	rows := make([]row, 0, len(bills))
	for _, b := range bills {
		if !flagBillAll && !b.Active() {
			continue
		}
		occ, ok := recur.NextOccurrenceOnOrAfter(b, now)
		rows = append(rows, row{bill: b, next: occ, ok: ok})
	}

	// Soonest first; bills with no future occurrence sink to the bottom.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ok != rows[j].ok {
			return rows[i].ok
		}
		return rows[i].next.Before(rows[j].next)
	})

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		due := "expired"
		when := ""
		if r.ok {
			due = cli.FormatDay(r.next)
			when = cli.FormatRelativeDays(r.next, now)
		} else if r.bill.Status == model.BillPaid {
			due = "paid"
		}
		out = append(out, []string{
			truncate(r.bill.Name, 22),
			cli.FormatMoney(r.bill.Amount),
			string(r.bill.Repeat),
			due,
			when,
			string(r.bill.Status),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Bill", "Amount", "Repeat", "Next due", "", "Status"},
		Rows:    out,
	}))
	return nil
}

func runBillsAdd(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("invalid amount %q", args[1])
	}

	repeat := model.Repeat(flagBillRepeat)
	switch repeat {
	case model.RepeatNone, model.RepeatMonthly, model.RepeatYearly:
	default:
		return fmt.Errorf("unknown repeat cycle %q", flagBillRepeat)
	}

	due := time.Now()
	if flagBillDue != "" {
		due, err = time.ParseInLocation("2006-01-02", flagBillDue, time.Local)
		if err != nil {
			return fmt.Errorf("invalid due date %q, want YYYY-MM-DD", flagBillDue)
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	bill := model.Bill{
		Name:    args[0],
		Amount:  amount,
		DueDate: due,
		Repeat:  repeat,
	}
	if flagBillAccount != "" {
		a, err := s.GetAccount(flagBillAccount)
		if err != nil {
			return err
		}
		bill.AccountID = a.ID
	}
	if flagBillOverride != "" {
		a, err := s.GetAccount(flagBillOverride)
		if err != nil {
			return err
		}
		bill.OverrideAccountID = a.ID
	}

	b, err := s.CreateBill(bill)
	if err != nil {
		return err
	}

	fmt.Printf("  Added %s bill %q (%s), next due %s\n",
		b.Repeat, b.Name, cli.FormatMoney(b.Amount), cli.FormatDay(b.DueDate))
	return nil
}

func runBillsPay(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	b, err := s.GetBill(args[0])
	if err != nil {
		return err
	}
	if b.Status == model.BillPaid && b.Repeat == model.RepeatNone {
		fmt.Printf("  %s is already paid.\n", b.Name)
		return nil
	}

	accountID := b.EffectiveAccountID()
	if accountID == "" {
		return fmt.Errorf("bill %q has no funding account; set one with bills add --account", b.Name)
	}
	a, err := s.GetAccount(accountID)
	if err != nil {
		return err
	}

	bills, err := s.ListBills()
	if err != nil {
		return err
	}

	now := time.Now()
	cfg := loadConfig()
	if !spendable.New(cfg.Budget).CanCover(a, b, bills, now) && !flagQuiet {
		fmt.Printf("  %s paying %s drops %s below its safe-to-spend line.\n",
			cli.Warn.Render("Heads up:"), b.Name, a.Name)
	}

	if err := s.UpdateAccountBalance(a.ID, spendable.Round2(a.BalanceCurrent-b.Amount)); err != nil {
		return err
	}
	if _, err := s.RecordTransaction(model.Transaction{
		AccountID:  a.ID,
		Category:   "Bills",
		Amount:     b.Amount,
		Kind:       model.TxnExpense,
		OccurredAt: now,
		Note:       b.Name,
	}); err != nil {
		return err
	}
	// Recurring bills flip back to unpaid automatically once the covered
	// occurrence passes; see store.RefreshBills.
	if err := s.SetBillStatus(b.ID, model.BillPaid, now); err != nil {
		return err
	}

	fmt.Printf("  Paid %s (%s) from %s\n", b.Name, cli.FormatMoney(b.Amount), a.Name)
	return nil
}
