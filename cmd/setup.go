package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"billwatch/internal/config"
	"billwatch/internal/model"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg := loadConfig()

	fmt.Println()
	fmt.Println("  Welcome to billwatch!")
	fmt.Println()

	// 1. Spend window
	fmt.Println("  1. Safe-to-spend window")
	fmt.Println("     Bills due within this many days count against your balance.")
	fmt.Printf("     Current: %d days\n", cfg.Budget.SpendWindowDays)
	fmt.Print("     > ")
	days, _ := reader.ReadString('\n')
	days = strings.TrimSpace(days)
	if n, err := strconv.Atoi(days); err == nil && n > 0 {
		cfg.Budget.SpendWindowDays = n
	}
	fmt.Println()

	// 2. Buffer
	fmt.Println("  2. Balance buffer")
	fmt.Println("     (1) None [default]")
	fmt.Println("     (2) Fixed amount")
	fmt.Println("     (3) Percent of balance")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "2":
		cfg.Budget.BufferMode = "fixed"
		fmt.Print("     Amount > ")
		v, _ := reader.ReadString('\n')
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 {
			cfg.Budget.BufferValue = f
		}
	case "3":
		cfg.Budget.BufferMode = "percent"
		fmt.Print("     Percent > ")
		v, _ := reader.ReadString('\n')
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 {
			cfg.Budget.BufferPercent = f
		}
	default:
		cfg.Budget.BufferMode = "none"
	}
	fmt.Println()

	// 3. Reminder time
	fmt.Println("  3. Daily reminder time (HH:MM)")
	fmt.Printf("     Current: %s\n", cfg.Notifications.ReminderTime)
	fmt.Print("     > ")
	at, _ := reader.ReadString('\n')
	at = strings.TrimSpace(at)
	if at != "" {
		if _, err := config.ParseTimeOfDay(at); err == nil {
			cfg.Notifications.ReminderTime = at
		} else {
			fmt.Printf("     Keeping %s (%v)\n", cfg.Notifications.ReminderTime, err)
		}
	}
	fmt.Println()

	// 4. Quiet hours
	fmt.Println("  4. Quiet hours (reminders inside this range move to its end)")
	fmt.Println("     Leave blank to disable.")
	fmt.Print("     Start (HH:MM) > ")
	qs, _ := reader.ReadString('\n')
	qs = strings.TrimSpace(qs)
	fmt.Print("     End (HH:MM) > ")
	qe, _ := reader.ReadString('\n')
	qe = strings.TrimSpace(qe)
	if qs != "" && qe != "" {
		_, errS := config.ParseTimeOfDay(qs)
		_, errE := config.ParseTimeOfDay(qe)
		if errS == nil && errE == nil {
			cfg.Notifications.QuietHoursStart = qs
			cfg.Notifications.QuietHoursEnd = qe
		} else {
			fmt.Println("     Invalid range, quiet hours unchanged.")
		}
	} else if qs == "" && qe == "" {
		cfg.Notifications.QuietHoursStart = ""
		cfg.Notifications.QuietHoursEnd = ""
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())

	// Offer a first account when the book is empty.
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
		fmt.Println()
		fmt.Println("  No accounts yet. Add your first one? Leave blank to skip.")
		fmt.Print("     Name > ")
		name, _ := reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if name != "" {
			fmt.Print("     Balance > ")
			bal, _ := reader.ReadString('\n')
			balance, _ := strconv.ParseFloat(strings.TrimSpace(bal), 64)
			if _, err := s.CreateAccount(model.Account{Name: name, BalanceCurrent: balance}); err != nil {
				return err
			}
			fmt.Printf("  Added account %q.\n", name)
		}
	}

	fmt.Println()
	fmt.Println("  Run `billwatch setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
