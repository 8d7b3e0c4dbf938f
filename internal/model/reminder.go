package model

import "time"

// ReminderKind names the reminder variants the scheduler produces.
type ReminderKind string

// Reminder kinds.
const (
	RemindPreDue    ReminderKind = "predue"
	RemindDue       ReminderKind = "due"
	RemindOverdue   ReminderKind = "overdue"
	RemindOverspend ReminderKind = "overspend"
)

// Reminder is one entry in the platform notification registry. ID is
// deterministic for a given logical reminder, so repeated reconciliation
// runs map the same reminder to the same identifier.
type Reminder struct {
	ID     uint32
	Title  string
	Body   string
	FireAt time.Time
	Marker string
}

// Severity grades a recommendation.
type Severity string

// Recommendation severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Recommendation is one derived insight for a calendar month. ID is stable
// across recomputation so dismissal-by-id survives re-renders.
type Recommendation struct {
	ID       string
	Severity Severity
	Title    string
	Body     string
	Month    time.Time
}
