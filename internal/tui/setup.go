package tui

import (
	"fmt"
	"strconv"

	"billwatch/internal/config"

	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run wizard's answers until the form completes.
type setupValues struct {
	windowDays   string
	bufferMode   string
	bufferAmount string
	remindAt     string
}

func newSetupForm(vals *setupValues, cfg config.Config) *huh.Form {
	vals.windowDays = strconv.Itoa(cfg.Budget.SpendWindowDays)
	vals.bufferMode = cfg.Budget.BufferMode
	if vals.bufferMode == "" {
		vals.bufferMode = "none"
	}
	vals.remindAt = cfg.Notifications.ReminderTime

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to billwatch!").
				Description("A couple of questions and you're set."),

			huh.NewInput().
				Title("Safe-to-spend window (days)").
				Description("Bills due within this many days count against your balance.").
				Value(&vals.windowDays).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number of days")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Balance buffer").
				Options(
					huh.NewOption("None", "none"),
					huh.NewOption("Fixed amount", "fixed"),
					huh.NewOption("Percent of balance", "percent"),
				).
				Value(&vals.bufferMode),

			huh.NewInput().
				Title("Buffer amount (or percent)").
				Placeholder("0").
				Value(&vals.bufferAmount).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if f, err := strconv.ParseFloat(s, 64); err != nil || f < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}),

			huh.NewInput().
				Title("Daily reminder time").
				Placeholder("09:00").
				Value(&vals.remindAt).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := config.ParseTimeOfDay(s)
					return err
				}),
		),
	)
}

// apply folds the wizard answers into the config.
func (v setupValues) apply(cfg config.Config) config.Config {
	if n, err := strconv.Atoi(v.windowDays); err == nil && n > 0 {
		cfg.Budget.SpendWindowDays = n
	}
	cfg.Budget.BufferMode = v.bufferMode
	if f, err := strconv.ParseFloat(v.bufferAmount, 64); err == nil && f >= 0 {
		switch v.bufferMode {
		case "fixed":
			cfg.Budget.BufferValue = f
		case "percent":
			cfg.Budget.BufferPercent = f
		}
	}
	if v.remindAt != "" {
		if _, err := config.ParseTimeOfDay(v.remindAt); err == nil {
			cfg.Notifications.ReminderTime = v.remindAt
		}
	}
	return cfg
}
