package spendable

import (
	"testing"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
)

var testNow = time.Date(2026, time.August, 10, 11, 0, 0, 0, time.Local)

func settings(mode string, value, percent float64) config.BudgetConfig {
	return config.BudgetConfig{
		SpendWindowDays: 14,
		BufferMode:      mode,
		BufferValue:     value,
		BufferPercent:   percent,
	}
}

func acct(id string, balance float64) model.Account {
	return model.Account{ID: id, Name: id, BalanceCurrent: balance, Type: model.AccountBank}
}

func dueIn(days int, amount float64, acctID string) model.Bill {
	return model.Bill{
		ID:        "bill-" + acctID,
		Amount:    amount,
		DueDate:   testNow.AddDate(0, 0, days),
		Repeat:    model.RepeatMonthly,
		AccountID: acctID,
		Status:    model.BillUnpaid,
	}
}

func TestForAccount_WorkedExample(t *testing.T) {
	// Balance 500, one monthly 1200 bill due in 5 days, 14-day window,
	// fixed buffer 50: obligations 1200, safeToSpend -750.
	c := New(settings("fixed", 50, 0))
	bills := []model.Bill{dueIn(5, 1200, "a1")}

	res := c.ForAccount(acct("a1", 500), bills, Opts{Now: testNow})
	if res.ObligationsWindow != 1200 {
		t.Fatalf("ObligationsWindow = %.2f, want 1200", res.ObligationsWindow)
	}
	if res.SafeToSpend != -750 {
		t.Fatalf("SafeToSpend = %.2f, want -750", res.SafeToSpend)
	}
	if res.DueToday != 0 {
		t.Fatalf("DueToday = %.2f, want 0", res.DueToday)
	}
	if res.SpendableNow != 500 {
		t.Fatalf("SpendableNow = %.2f, want 500", res.SpendableNow)
	}
}

func TestForAccount_DueToday(t *testing.T) {
	c := New(settings("none", 0, 0))
	bills := []model.Bill{dueIn(0, 80, "a1"), dueIn(3, 40, "a1")}

	res := c.ForAccount(acct("a1", 300), bills, Opts{Now: testNow})
	if res.DueToday != 80 {
		t.Fatalf("DueToday = %.2f, want 80", res.DueToday)
	}
	if res.ObligationsWindow != 120 {
		t.Fatalf("ObligationsWindow = %.2f, want 120", res.ObligationsWindow)
	}
	if res.SpendableNow != 220 {
		t.Fatalf("SpendableNow = %.2f, want 220", res.SpendableNow)
	}
}

func TestForAccount_WindowExcludesBeyondHorizon(t *testing.T) {
	c := New(settings("none", 0, 0))
	bills := []model.Bill{
		dueIn(13, 100, "a1"), // inside the 14-day window
		dueIn(14, 100, "a1"), // on the boundary: window end is exclusive
		dueIn(20, 100, "a1"),
	}

	res := c.ForAccount(acct("a1", 1000), bills, Opts{Now: testNow})
	if res.ObligationsWindow != 100 {
		t.Fatalf("ObligationsWindow = %.2f, want 100", res.ObligationsWindow)
	}
}

func TestForAccount_OverrideAccountWins(t *testing.T) {
	c := New(settings("none", 0, 0))
	b := dueIn(2, 60, "a1")
	b.OverrideAccountID = "a2"

	res := c.ForAccount(acct("a1", 100), []model.Bill{b}, Opts{Now: testNow})
	if res.ObligationsWindow != 0 {
		t.Fatalf("primary account charged %.2f, override should win", res.ObligationsWindow)
	}

	res = c.ForAccount(acct("a2", 100), []model.Bill{b}, Opts{Now: testNow})
	if res.ObligationsWindow != 60 {
		t.Fatalf("override account ObligationsWindow = %.2f, want 60", res.ObligationsWindow)
	}
}

func TestForAccount_PaidAndExpiredBillsIgnored(t *testing.T) {
	c := New(settings("none", 0, 0))
	paid := dueIn(2, 60, "a1")
	paid.Status = model.BillPaid

	expired := model.Bill{
		ID:        "old",
		Amount:    45,
		DueDate:   testNow.AddDate(0, 0, -10),
		Repeat:    model.RepeatNone,
		AccountID: "a1",
		Status:    model.BillUnpaid,
	}

	res := c.ForAccount(acct("a1", 100), []model.Bill{paid, expired}, Opts{Now: testNow})
	if res.ObligationsWindow != 0 {
		t.Fatalf("ObligationsWindow = %.2f, want 0", res.ObligationsWindow)
	}
}

func TestForAccount_PercentBuffer(t *testing.T) {
	c := New(settings("percent", 0, 10))
	res := c.ForAccount(acct("a1", 250), nil, Opts{Now: testNow})
	if res.SafeToSpend != 225 {
		t.Fatalf("SafeToSpend = %.2f, want 225 (10%% buffer)", res.SafeToSpend)
	}
}

func TestForAccount_MonotoneInDeductions(t *testing.T) {
	c := New(settings("fixed", 25, 0))
	bills := []model.Bill{dueIn(4, 100, "a1")}
	a := acct("a1", 500)

	base := c.ForAccount(a, bills, Opts{Now: testNow}).SafeToSpend
	withHolds := c.ForAccount(a, bills, Opts{Now: testNow, HoldsWindow: 50}).SafeToSpend
	withEarmarks := c.ForAccount(a, bills, Opts{Now: testNow, Earmarks: 75}).SafeToSpend

	if withHolds > base {
		t.Fatalf("SafeToSpend rose with holds: %.2f > %.2f", withHolds, base)
	}
	if withEarmarks > base {
		t.Fatalf("SafeToSpend rose with earmarks: %.2f > %.2f", withEarmarks, base)
	}
}

func TestAggregate(t *testing.T) {
	c := New(settings("none", 0, 0))
	accounts := []model.Account{
		acct("a1", 400),
		acct("a2", 100),
		{ID: "cc", BalanceCurrent: -200, Type: model.AccountCredit},
	}

	got := c.Aggregate(accounts, nil, false, testNow)
	if got != 500 {
		t.Fatalf("Aggregate without credit = %.2f, want 500", got)
	}

	got = c.Aggregate(accounts, nil, true, testNow)
	if got != 300 {
		t.Fatalf("Aggregate with credit = %.2f, want 300", got)
	}
}

func TestCanCover(t *testing.T) {
	c := New(settings("none", 0, 0))
	a := acct("a1", 150)
	target := model.Bill{ID: "tv", Amount: 100, AccountID: "a1"}

	if !c.CanCover(a, target, nil, testNow) {
		t.Fatal("150 balance should cover a 100 bill")
	}

	bills := []model.Bill{dueIn(3, 100, "a1")}
	if c.CanCover(a, target, bills, testNow) {
		t.Fatal("obligations should shrink cover capacity")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(2.346); got != 2.35 {
		t.Fatalf("Round2(2.346) = %v, want 2.35", got)
	}
	if got := Round2(-2.346); got != -2.35 {
		t.Fatalf("Round2(-2.346) = %v, want -2.35", got)
	}
	if got := Round2(100.1 + 0.2); got != 100.3 {
		t.Fatalf("Round2(100.1+0.2) = %v, want 100.3", got)
	}
}
