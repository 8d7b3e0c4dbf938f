// Package model defines domain types for billwatch bills, accounts, and reminders.
package model

import "time"

// Repeat is a bill's recurrence rule.
type Repeat string

// Recurrence rules.
const (
	RepeatNone    Repeat = "none"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

// BillStatus tracks where a bill is in its pay cycle.
type BillStatus string

// Bill statuses. Only unpaid and scheduled bills count toward obligations
// and reminders; paid bills are inert until their next recurrence.
const (
	BillUnpaid    BillStatus = "unpaid"
	BillScheduled BillStatus = "scheduled"
	BillPaid      BillStatus = "paid"
)

// Bill is a recurring or one-off obligation. DueDate is the anchor: the
// first occurrence reference, immutable in meaning even for repeating bills.
type Bill struct {
	ID                string
	Name              string
	Amount            float64
	DueDate           time.Time
	Repeat            Repeat
	AccountID         string
	OverrideAccountID string
	Status            BillStatus
	LastPaidAt        time.Time
}

// EffectiveAccountID resolves the account actually charged: the one-off
// override when present, otherwise the primary account. Resolved fresh on
// every call, never cached on the bill.
func (b Bill) EffectiveAccountID() string {
	if b.OverrideAccountID != "" {
		return b.OverrideAccountID
	}
	return b.AccountID
}

// Active reports whether the bill counts toward obligations and reminders.
func (b Bill) Active() bool {
	return b.Status == BillUnpaid || b.Status == BillScheduled
}
