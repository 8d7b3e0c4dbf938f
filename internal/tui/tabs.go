package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"billwatch/internal/cli"
	"billwatch/internal/model"
	"billwatch/internal/recur"
	"billwatch/internal/spendable"

	"github.com/charmbracelet/lipgloss"
)

var (
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.ColorText).
			Background(cli.ColorAccent).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(cli.ColorTextMuted).
				Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(cli.ColorTextDim)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.ColorAccent)
)

func (a App) renderTabBar() string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if i == a.activeTab {
			parts = append(parts, tabActiveStyle.Render(name))
		} else {
			parts = append(parts, tabInactiveStyle.Render(name))
		}
	}
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderStatusBar() string {
	return statusBarStyle.Render("  tab/1-3 switch · r reload · q quit")
}

func (a App) viewOverview() string {
	if len(a.accounts) == 0 {
		return "  No accounts yet. Run `billwatch accounts add` to get started."
	}

	rows := make([][]string, 0, len(a.accounts))
	var aggregate float64
	for i, acct := range a.accounts {
		res := a.results[i]
		if acct.Type != model.AccountCredit {
			aggregate += res.SafeToSpend
		}
		rows = append(rows, []string{
			acct.Name,
			string(acct.Type),
			cli.FormatMoney(acct.BalanceCurrent),
			cli.FormatMoney(res.DueToday),
			cli.FormatMoney(res.ObligationsWindow),
			cli.StyleMoney(res.SafeToSpend),
		})
	}

	var b strings.Builder
	b.WriteString(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Type", "Balance", "Due today", fmt.Sprintf("Next %dd", a.cfg.Budget.SpendWindowDays), "Safe to spend"},
		Rows:    rows,
	}))
	b.WriteString("\n  ")
	b.WriteString(sectionStyle.Render("Safe to spend overall: "))
	b.WriteString(cli.StyleMoney(spendable.Round2(aggregate)))
	b.WriteString("\n")
	return b.String()
}

func (a App) viewBills() string {
	if len(a.bills) == 0 {
		return "  No bills yet. Run `billwatch bills add` to get started."
	}

	now := time.Now()
	type entry struct {
		bill model.Bill
		next time.Time
		ok   bool
	}
	entries := make([]entry, 0, len(a.bills))
	for _, b := range a.bills {
		occ, ok := recur.NextOccurrenceOnOrAfter(b, now)
		entries = append(entries, entry{bill: b, next: occ, ok: ok})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ok != entries[j].ok {
			return entries[i].ok
		}
		return entries[i].next.Before(entries[j].next)
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		due := "expired"
		when := ""
		if e.ok {
			due = cli.FormatDay(e.next)
			when = cli.FormatRelativeDays(e.next, now)
		} else if e.bill.Status == model.BillPaid {
			due = "paid"
		}
		rows = append(rows, []string{
			e.bill.Name,
			cli.FormatMoney(e.bill.Amount),
			string(e.bill.Repeat),
			due,
			when,
			string(e.bill.Status),
		})
	}

	return cli.RenderTable(cli.Table{
		Headers: []string{"Bill", "Amount", "Repeat", "Next due", "", "Status"},
		Rows:    rows,
	})
}

func (a App) viewAdvice() string {
	if len(a.advice) == 0 {
		return "  Nothing to flag. Spending looks on track."
	}

	var b strings.Builder
	for _, r := range a.advice {
		badge := "[i]"
		style := lipgloss.NewStyle().Foreground(cli.ColorBlue)
		switch r.Severity {
		case model.SeverityWarning:
			badge, style = "[~]", cli.Warn
		case model.SeverityDanger:
			badge, style = "[!]", cli.MoneyBad
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render(badge), r.Title))
		b.WriteString("    " + cli.Muted.Render(r.Body) + "\n\n")
	}
	return b.String()
}
