package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/recur"
	"billwatch/internal/spendable"
)

// Reminders beyond this horizon are dropped regardless of how far bills
// recur.
const horizonDays = 60

// Lead time for the pre-due reminder.
const preDueLeadDays = 3

const overspendMarkerKey = "overspend_last_notified"

// Plan summarizes one reconciliation run.
type Plan struct {
	Desired   []model.Reminder
	Cancelled int
	Overspent []string // account names with negative safe-to-spend
}

// Scheduler owns the reminder schedule. Invocations are serialized by an
// internal mutex: a reschedule started before the previous one completes
// would race on fetch-cancel-submit.
type Scheduler struct {
	notifier Notifier
	markers  MarkerStore
	cfg      config.Config

	mu sync.Mutex
}

// New returns a scheduler over the given notifier, marker store, and
// settings snapshot.
func New(notifier Notifier, markers MarkerStore, cfg config.Config) *Scheduler {
	return &Scheduler{notifier: notifier, markers: markers, cfg: cfg}
}

// RescheduleAll replaces the scheduler's reminders with a fresh set computed
// from the current accounts and bills: fetch pending, cancel everything
// carrying our marker, then submit the desired set as one batch.
//
// Platform failures are best-effort: no retry, no rollback of an already
// completed cancel. The returned plan reflects what was attempted; the
// caller surfaces the error as a soft warning at most.
func (s *Scheduler) RescheduleAll(ctx context.Context, accounts []model.Account, bills []model.Bill, now time.Time) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now()
	}

	var plan Plan

	pending, err := s.notifier.Pending(ctx)
	if err != nil {
		return plan, fmt.Errorf("fetching pending reminders: %w", err)
	}

	var mine []uint32
	for _, r := range pending {
		if r.Marker == Marker {
			mine = append(mine, r.ID)
		}
	}
	if len(mine) > 0 {
		if err := s.notifier.Cancel(ctx, mine); err != nil {
			return plan, fmt.Errorf("cancelling stale reminders: %w", err)
		}
	}
	plan.Cancelled = len(mine)

	if !s.cfg.Notifications.Enabled {
		return plan, nil
	}

	desired, overspendIncluded := s.buildDesired(accounts, bills, now, &plan)
	plan.Desired = desired

	if len(desired) == 0 {
		return plan, nil
	}
	if err := s.notifier.Schedule(ctx, desired); err != nil {
		return plan, fmt.Errorf("scheduling reminders: %w", err)
	}

	if overspendIncluded {
		if err := s.markers.SetMarker(overspendMarkerKey, dayKey(now)); err != nil {
			return plan, fmt.Errorf("recording overspend marker: %w", err)
		}
	}
	return plan, nil
}

func (s *Scheduler) buildDesired(accounts []model.Account, bills []model.Bill, now time.Time, plan *Plan) ([]model.Reminder, bool) {
	horizon := now.AddDate(0, 0, horizonDays)
	remindAt := s.cfg.Notifications.ReminderTimeOfDay()

	var desired []model.Reminder
	add := func(r model.Reminder) {
		r.FireAt = s.adjustQuietHours(r.FireAt)
		if r.FireAt.After(horizon) {
			return
		}
		desired = append(desired, r)
	}

	for _, b := range bills {
		if !b.Active() {
			continue
		}

		occ, ok := recur.NextOccurrenceOnOrAfter(b, now)
		if !ok {
			// Expired one-off bill, still unpaid: surface it the next
			// morning rather than dropping it silently.
			add(model.Reminder{
				ID:     ReminderID(b.ID, dayKey(b.DueDate), string(model.RemindOverdue)),
				Title:  fmt.Sprintf("%s is overdue", b.Name),
				Body:   fmt.Sprintf("%s (%.2f) was due on %s.", b.Name, b.Amount, b.DueDate.Format("Jan 2")),
				FireAt: remindAt.On(now.AddDate(0, 0, 1)),
				Marker: Marker,
			})
			continue
		}

		occDay := dayKey(occ)
		add(model.Reminder{
			ID:     ReminderID(b.ID, occDay, string(model.RemindDue)),
			Title:  fmt.Sprintf("%s due today", b.Name),
			Body:   fmt.Sprintf("%s (%.2f) is due today.", b.Name, b.Amount),
			FireAt: remindAt.On(occ),
			Marker: Marker,
		})

		preDue := remindAt.On(occ.AddDate(0, 0, -preDueLeadDays))
		if preDue.After(now) {
			add(model.Reminder{
				ID:     ReminderID(b.ID, occDay, string(model.RemindPreDue)),
				Title:  fmt.Sprintf("%s due in %d days", b.Name, preDueLeadDays),
				Body:   fmt.Sprintf("%s (%.2f) is due on %s.", b.Name, b.Amount, occ.Format("Jan 2")),
				FireAt: preDue,
				Marker: Marker,
			})
		}
	}

	overspendIncluded := false
	calc := spendable.New(s.cfg.Budget)
	for _, a := range accounts {
		if calc.ForAccount(a, bills, spendable.Opts{Now: now}).SafeToSpend < 0 {
			plan.Overspent = append(plan.Overspent, a.Name)
		}
	}
	if len(plan.Overspent) > 0 {
		// The alert id is keyed by day, so a rerun replaces the pending
		// alert under the same id rather than dropping it. The marker gates
		// only the first record of the day.
		overspendIncluded = !s.overspendNotifiedToday(now)
		add(model.Reminder{
			ID:     ReminderID(string(model.RemindOverspend), dayKey(now)),
			Title:  "Spending is over budget",
			Body:   fmt.Sprintf("%d account(s) have negative safe-to-spend. Review upcoming bills.", len(plan.Overspent)),
			FireAt: now.Add(2 * time.Minute),
			Marker: Marker,
		})
	}

	sort.Slice(desired, func(i, j int) bool {
		if desired[i].FireAt.Equal(desired[j].FireAt) {
			return desired[i].ID < desired[j].ID
		}
		return desired[i].FireAt.Before(desired[j].FireAt)
	})
	return desired, overspendIncluded
}

// adjustQuietHours pushes a fire time falling inside [start, end) to the
// quiet-hours end, rolling one day forward when the end on the same day is
// not after the original instant. The range wraps past midnight when
// start > end. No-op unless both bounds are configured.
func (s *Scheduler) adjustQuietHours(t time.Time) time.Time {
	start, end, ok := s.cfg.Notifications.QuietHours()
	if !ok || start.MinuteOfDay() == end.MinuteOfDay() {
		return t
	}
	if !inQuietHours(t, start, end) {
		return t
	}

	adjusted := end.On(t)
	if !adjusted.After(t) {
		adjusted = adjusted.AddDate(0, 0, 1)
	}
	return adjusted
}

func inQuietHours(t time.Time, start, end config.TimeOfDay) bool {
	minute := t.Hour()*60 + t.Minute()
	if start.MinuteOfDay() < end.MinuteOfDay() {
		return minute >= start.MinuteOfDay() && minute < end.MinuteOfDay()
	}
	// Wrapped range, e.g. 22:00-07:00.
	return minute >= start.MinuteOfDay() || minute < end.MinuteOfDay()
}

func (s *Scheduler) overspendNotifiedToday(now time.Time) bool {
	last, err := s.markers.GetMarker(overspendMarkerKey)
	if err != nil {
		return false
	}
	return last == dayKey(now)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
