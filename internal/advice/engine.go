// Package advice derives informational, warning, and danger recommendations
// from transactions, accounts, and bills for one calendar month.
package advice

import (
	"fmt"
	"sort"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/spendable"
)

// Category spike thresholds: the month-over-month ratio and the absolute
// increase must both be met before a spike is reported.
const (
	spikeRatio    = 1.5
	spikeAbsolute = 50.0
)

// Compute derives recommendations for the given month. now supplies the
// month-to-date boundary for budget-drift pro-rating. Pure and synchronous;
// an empty result is a normal outcome.
func Compute(month, now time.Time, txns []model.Transaction, accounts []model.Account, bills []model.Bill, cfg config.Config) []model.Recommendation {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	var recs []model.Recommendation

	if r, ok := budgetDrift(monthStart, now, txns); ok {
		recs = append(recs, r)
	}
	recs = append(recs, categorySpikes(monthStart, txns)...)
	if r, ok := lowSpendable(monthStart, now, accounts, bills, cfg.Budget); ok {
		recs = append(recs, r)
	}
	return recs
}

// budgetDrift treats the prior month's total expenses as an implicit budget
// and warns when month-to-date spend runs ahead of the pro-rated share.
func budgetDrift(monthStart, now time.Time, txns []model.Transaction) (model.Recommendation, bool) {
	prior := expenseTotal(txns, monthStart.AddDate(0, -1, 0), monthStart)
	if prior <= 0 {
		return model.Recommendation{}, false
	}

	nextMonth := monthStart.AddDate(0, 1, 0)
	daysInMonth := nextMonth.AddDate(0, 0, -1).Day()

	daysElapsed := daysInMonth
	if now.After(monthStart) && now.Before(nextMonth) {
		daysElapsed = now.Day()
	}

	mtd := expenseTotal(txns, monthStart, nextMonth)
	allowed := prior * float64(daysElapsed) / float64(daysInMonth)
	if mtd <= allowed {
		return model.Recommendation{}, false
	}

	remainingDays := daysInMonth - daysElapsed
	dailyCap := 0.0
	if remainingDays > 0 {
		dailyCap = spendable.Round2(max(0, prior-mtd) / float64(remainingDays))
	}

	return model.Recommendation{
		ID:       recID(monthStart, "budget-drift", ""),
		Severity: model.SeverityWarning,
		Title:    "Spending ahead of last month's pace",
		Body: fmt.Sprintf("You've spent %.2f so far against a pro-rated %.2f. Keeping to %.2f per day stays within last month's total.",
			mtd, spendable.Round2(allowed), dailyCap),
		Month: monthStart,
	}, true
}

// categorySpikes reports categories whose spend jumped versus the prior
// month: the ratio and absolute thresholds must both hold, so a category
// rising from 10 to 20 stays quiet.
func categorySpikes(monthStart time.Time, txns []model.Transaction) []model.Recommendation {
	nextMonth := monthStart.AddDate(0, 1, 0)
	priorStart := monthStart.AddDate(0, -1, 0)

	current := expenseByCategory(txns, monthStart, nextMonth)
	prior := expenseByCategory(txns, priorStart, monthStart)

	cats := make([]string, 0, len(current))
	for cat := range current {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var recs []model.Recommendation
	for _, cat := range cats {
		cur, prev := current[cat], prior[cat]
		if prev <= 0 {
			continue
		}
		if cur < prev*spikeRatio || cur-prev < spikeAbsolute {
			continue
		}
		pct := (cur/prev - 1) * 100
		recs = append(recs, model.Recommendation{
			ID:       recID(monthStart, "category-spike", cat),
			Severity: model.SeverityInfo,
			Title:    fmt.Sprintf("%s spending up %.0f%%", cat, pct),
			Body: fmt.Sprintf("%s went from %.2f last month to %.2f this month.",
				cat, prev, cur),
			Month: monthStart,
		})
	}
	return recs
}

// lowSpendable surfaces the single worst over-committed account paired with
// the best-funded donor, suggesting a transfer of the shortfall. Only one
// pair is reported, not every negative account.
func lowSpendable(monthStart, now time.Time, accounts []model.Account, bills []model.Bill, budget config.BudgetConfig) (model.Recommendation, bool) {
	calc := spendable.New(budget)

	var (
		worst, best         *model.Account
		worstSafe, bestSafe float64
	)
	for i := range accounts {
		safe := calc.ForAccount(accounts[i], bills, spendable.Opts{Now: now}).SafeToSpend
		switch {
		case safe < 0 && (worst == nil || safe < worstSafe):
			worst, worstSafe = &accounts[i], safe
		case safe > 0 && (best == nil || safe > bestSafe):
			best, bestSafe = &accounts[i], safe
		}
	}
	if worst == nil || best == nil {
		return model.Recommendation{}, false
	}

	shortfall := spendable.Round2(-worstSafe)
	return model.Recommendation{
		ID:       recID(monthStart, "low-spendable", worst.Name),
		Severity: model.SeverityDanger,
		Title:    fmt.Sprintf("%s can't cover its upcoming bills", worst.Name),
		Body: fmt.Sprintf("Transfer %.2f from %s to %s to cover the shortfall.",
			shortfall, best.Name, worst.Name),
		Month: monthStart,
	}, true
}

func expenseTotal(txns []model.Transaction, from, to time.Time) float64 {
	var total float64
	for _, t := range txns {
		if t.Kind != model.TxnExpense {
			continue
		}
		if t.OccurredAt.Before(from) || !t.OccurredAt.Before(to) {
			continue
		}
		total += t.Amount
	}
	return total
}

func expenseByCategory(txns []model.Transaction, from, to time.Time) map[string]float64 {
	byCat := make(map[string]float64)
	for _, t := range txns {
		if t.Kind != model.TxnExpense {
			continue
		}
		if t.OccurredAt.Before(from) || !t.OccurredAt.Before(to) {
			continue
		}
		byCat[t.Category] += t.Amount
	}
	return byCat
}

// recID builds the stable month+type(+name) identifier used for
// dismissal-by-id across recomputation.
func recID(monthStart time.Time, kind, name string) string {
	id := monthStart.Format("2006-01") + ":" + kind
	if name != "" {
		id += ":" + name
	}
	return id
}
