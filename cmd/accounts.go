package cmd

import (
	"fmt"
	"strconv"

	"billwatch/internal/cli"
	"billwatch/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagAccountType    string
	flagAccountLimit   float64
	flagAccountBalance float64
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts and balances",
	RunE:  runAccounts,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsAdd,
}

var accountsBalanceCmd = &cobra.Command{
	Use:   "balance <account> <amount>",
	Short: "Set an account's current balance",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsBalance,
}

func init() {
	accountsAddCmd.Flags().StringVarP(&flagAccountType, "type", "t", "bank", "Account type (bank, ewallet, cash, credit)")
	accountsAddCmd.Flags().Float64VarP(&flagAccountBalance, "balance", "b", 0, "Opening balance")
	accountsAddCmd.Flags().Float64Var(&flagAccountLimit, "limit", 0, "Credit limit (credit accounts)")

	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsBalanceCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	accounts, err := s.ListAccounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts. Add one with `billwatch accounts add <name>`.")
		return nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		limit := ""
		if a.Type == model.AccountCredit && a.CreditLimit > 0 {
			limit = cli.FormatMoney(a.CreditLimit)
		}
		rows = append(rows, []string{
			truncate(a.Name, 24),
			string(a.Type),
			cli.StyleMoney(a.BalanceCurrent),
			limit,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Type", "Balance", "Limit"},
		Rows:    rows,
	}))
	return nil
}

func runAccountsAdd(_ *cobra.Command, args []string) error {
	kind := model.AccountType(flagAccountType)
	switch kind {
	case model.AccountBank, model.AccountEwallet, model.AccountCash, model.AccountCredit:
	default:
		return fmt.Errorf("unknown account type %q", flagAccountType)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	a, err := s.CreateAccount(model.Account{
		Name:           args[0],
		Type:           kind,
		BalanceCurrent: flagAccountBalance,
		CreditLimit:    flagAccountLimit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("  Added %s account %q with balance %s\n", a.Type, a.Name, cli.FormatMoney(a.BalanceCurrent))
	return nil
}

func runAccountsBalance(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
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
	if err := s.UpdateAccountBalance(a.ID, amount); err != nil {
		return err
	}

	fmt.Printf("  %s balance is now %s\n", a.Name, cli.FormatMoney(amount))
	return nil
}
