// Package schedule builds the reminder set for the bill book and reconciles
// it against the platform notification registry.
package schedule

import (
	"context"
	"hash/fnv"
	"strings"

	"billwatch/internal/model"
)

// Marker tags every reminder the scheduler owns, so it can tell its own
// entries apart from reminders created elsewhere and replace them wholesale.
const Marker = "billwatch"

// Notifier is the platform notification capability. The registry is
// exclusively owned by the scheduler: read-modify-write happens here only.
type Notifier interface {
	Pending(ctx context.Context) ([]model.Reminder, error)
	Cancel(ctx context.Context, ids []uint32) error
	Schedule(ctx context.Context, reminders []model.Reminder) error
}

// MarkerStore persists small dedup markers (e.g. the date the overspend
// alert last fired) under the caller's storage scheme.
type MarkerStore interface {
	GetMarker(key string) (string, error)
	SetMarker(key, value string) error
}

// ReminderID derives a stable uint32 identifier from a composite key. The
// same logical reminder always maps to the same identifier across runs,
// which is what makes cancel-then-recreate idempotent instead of
// accumulating duplicates.
func ReminderID(parts ...string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.Join(parts, "|")))
	return h.Sum32()
}
