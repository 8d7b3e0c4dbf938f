package cmd

import (
	"fmt"
	"strconv"
	"time"

	"billwatch/internal/cli"
	"billwatch/internal/model"
	"billwatch/internal/spendable"

	"github.com/spf13/cobra"
)

var (
	flagTxnDays     int
	flagTxnCategory string
	flagTxnNote     string
	flagTxnIncome   bool
)

var txnsCmd = &cobra.Command{
	Use:   "txns",
	Short: "List recent transactions",
	RunE:  runTxns,
}

var txnsAddCmd = &cobra.Command{
	Use:   "add <account> <amount>",
	Short: "Record a transaction and adjust the account balance",
	Args:  cobra.ExactArgs(2),
	RunE:  runTxnsAdd,
}

func init() {
	txnsCmd.Flags().IntVarP(&flagTxnDays, "days", "n", 30, "Time window in days")

	txnsAddCmd.Flags().StringVarP(&flagTxnCategory, "category", "c", "Misc", "Spending category")
	txnsAddCmd.Flags().StringVar(&flagTxnNote, "note", "", "Free-form note")
	txnsAddCmd.Flags().BoolVar(&flagTxnIncome, "income", false, "Record income instead of an expense")

	txnsCmd.AddCommand(txnsAddCmd)
	rootCmd.AddCommand(txnsCmd)
}

func runTxns(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	txns, err := s.ListTransactions(now.AddDate(0, 0, -flagTxnDays), time.Time{})
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Printf("\n  No transactions in the last %d days.\n", flagTxnDays)
		return nil
	}

	accounts, err := s.ListAccounts()
	if err != nil {
		return err
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	rows := make([][]string, 0, len(txns))
	for _, tx := range txns {
		amount := cli.FormatMoney(tx.Amount)
		if tx.Kind == model.TxnExpense {
			amount = cli.MoneyBad.Render("-" + amount)
		} else {
			amount = cli.MoneyGood.Render("+" + amount)
		}
		rows = append(rows, []string{
			tx.OccurredAt.Format("Jan 2"),
			truncate(names[tx.AccountID], 16),
			truncate(tx.Category, 14),
			amount,
			truncate(tx.Note, 24),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Last %d days", flagTxnDays),
		Headers: []string{"Date", "Account", "Category", "Amount", "Note"},
		Rows:    rows,
	}))
	return nil
}

func runTxnsAdd(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("invalid amount %q", args[1])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	a, err := s.GetAccount(args[0])
	if err != nil {
		return err
	}

	kind := model.TxnExpense
	delta := -amount
	if flagTxnIncome {
		kind = model.TxnIncome
		delta = amount
	}

	if _, err := s.RecordTransaction(model.Transaction{
		AccountID:  a.ID,
		Category:   flagTxnCategory,
		Amount:     amount,
		Kind:       kind,
		OccurredAt: time.Now(),
		Note:       flagTxnNote,
	}); err != nil {
		return err
	}
	newBalance := spendable.Round2(a.BalanceCurrent + delta)
	if err := s.UpdateAccountBalance(a.ID, newBalance); err != nil {
		return err
	}

	fmt.Printf("  Recorded %s %s on %s (balance now %s)\n",
		kind, cli.FormatMoney(amount), a.Name, cli.FormatMoney(newBalance))
	return nil
}
