// Package spendable computes due-today, obligations-in-window, and
// safe-to-spend figures per account from the bill set and budget settings.
package spendable

import (
	"math"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/recur"
)

// Result holds the derived figures for one account. Recomputed on every
// call, never cached; a negative SafeToSpend is a meaningful signal (the
// account is over-committed), not an error.
type Result struct {
	AccountID         string
	SpendableNow      float64
	SafeToSpend       float64
	DueToday          float64
	ObligationsWindow float64
}

// Opts carries caller-supplied adjustments. Zero values are valid.
type Opts struct {
	HoldsToday  float64
	HoldsWindow float64
	Earmarks    float64
	Now         time.Time // zero means time.Now()
}

// Calculator derives spendable figures from a settings snapshot. The
// snapshot is read at call time, not live-subscribed.
type Calculator struct {
	Settings config.BudgetConfig
}

// New returns a calculator over the given budget settings.
func New(settings config.BudgetConfig) Calculator {
	return Calculator{Settings: settings}
}

// ForAccount computes the spendable figures for one account against the
// full bill set. Only unpaid/scheduled bills whose effective account matches
// count; bills with no future occurrence are dropped from aggregation.
func (c Calculator) ForAccount(acct model.Account, bills []model.Bill, opts Opts) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	windowEnd := recur.Midnight(now).AddDate(0, 0, c.Settings.SpendWindowDays)

	res := Result{AccountID: acct.ID}
	for _, b := range bills {
		if !b.Active() || b.EffectiveAccountID() != acct.ID {
			continue
		}
		occ, ok := recur.NextOccurrenceOnOrAfter(b, now)
		if !ok {
			continue
		}
		if recur.SameDay(occ, now) {
			res.DueToday += b.Amount
		}
		if occ.Before(windowEnd) {
			res.ObligationsWindow += b.Amount
		}
	}

	buffer := c.buffer(acct.BalanceCurrent)
	res.DueToday = Round2(res.DueToday)
	res.ObligationsWindow = Round2(res.ObligationsWindow)
	res.SpendableNow = Round2(acct.BalanceCurrent - opts.HoldsToday - res.DueToday)
	res.SafeToSpend = Round2(acct.BalanceCurrent - res.ObligationsWindow - opts.HoldsWindow - opts.Earmarks - buffer)
	return res
}

// Aggregate sums SafeToSpend across accounts, optionally excluding credit
// accounts.
func (c Calculator) Aggregate(accounts []model.Account, bills []model.Bill, includeCredit bool, now time.Time) float64 {
	var total float64
	for _, a := range accounts {
		if !includeCredit && a.Type == model.AccountCredit {
			continue
		}
		total += c.ForAccount(a, bills, Opts{Now: now}).SafeToSpend
	}
	return Round2(total)
}

// CanCover reports whether the account's safe-to-spend covers the bill.
func (c Calculator) CanCover(acct model.Account, bill model.Bill, bills []model.Bill, now time.Time) bool {
	return c.ForAccount(acct, bills, Opts{Now: now}).SafeToSpend-bill.Amount >= 0
}

func (c Calculator) buffer(balance float64) float64 {
	switch c.Settings.BufferMode {
	case "fixed":
		return c.Settings.BufferValue
	case "percent":
		return balance * c.Settings.BufferPercent / 100
	default:
		return 0
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
