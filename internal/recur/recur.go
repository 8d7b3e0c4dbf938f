// Package recur computes the next occurrence of a bill's recurrence rule.
//
// Day-of-month overflow clamps: a bill anchored on the 31st falls due on the
// last day of shorter months (Jan 31 -> Feb 28, or Feb 29 in leap years).
// The same clamp applies to yearly bills anchored on Feb 29.
package recur

import (
	"time"

	"billwatch/internal/model"
)

// NextOccurrenceOnOrAfter returns the bill's next occurrence on or after ref.
// The reference is normalized to local midnight and compared at day
// granularity; the returned instant carries the anchor's time of day.
// ok is false only for non-recurring bills whose anchor has passed.
func NextOccurrenceOnOrAfter(b model.Bill, ref time.Time) (time.Time, bool) {
	refDay := dayOf(ref)
	anchor := b.DueDate

	switch b.Repeat {
	case model.RepeatMonthly:
		cand := onDayOfMonth(refDay.Year(), refDay.Month(), anchor)
		if cand.Before(refDay) {
			next := refDay.AddDate(0, 1, -refDay.Day()+1) // first of next month
			cand = onDayOfMonth(next.Year(), next.Month(), anchor)
		}
		return cand, true

	case model.RepeatYearly:
		cand := clampedDate(refDay.Year(), anchor.Month(), anchor.Day(), anchor)
		if dayOf(cand).Before(refDay) {
			cand = clampedDate(refDay.Year()+1, anchor.Month(), anchor.Day(), anchor)
		}
		return cand, true

	default: // one-off
		if dayOf(anchor).Before(refDay) {
			return time.Time{}, false
		}
		return anchor, true
	}
}

// onDayOfMonth applies the anchor's day of month to the given year/month,
// clamping when the month is shorter.
func onDayOfMonth(year int, month time.Month, anchor time.Time) time.Time {
	return clampedDate(year, month, anchor.Day(), anchor)
}

// clampedDate builds a date in year/month on the requested day, clamped to
// the month's last day, carrying tod's time of day and location.
func clampedDate(year int, month time.Month, day int, tod time.Time) time.Time {
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day,
		tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), tod.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dayOf truncates t to local midnight.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PaidCycleOver reports whether a paid recurring bill's covered occurrence
// has passed, meaning its next cycle should count again. A payment covers
// the occurrence that was current when it was made.
func PaidCycleOver(b model.Bill, now time.Time) bool {
	if b.Repeat == model.RepeatNone || b.Status != model.BillPaid {
		return false
	}
	ref := b.LastPaidAt
	if ref.IsZero() {
		ref = b.DueDate
	}
	occ, ok := NextOccurrenceOnOrAfter(b, ref)
	if !ok {
		return false
	}
	return dayOf(now).After(dayOf(occ))
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Midnight returns t truncated to local midnight.
func Midnight(t time.Time) time.Time {
	return dayOf(t)
}
