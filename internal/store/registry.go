package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billwatch/internal/model"
)

// Registry is the local reminder registry backing the scheduler's Notifier
// interface. On a mobile platform this would be the OS notification center;
// here reminders sit in a table until the scheduler cancels or replaces
// them. Delivery is out of scope.
type Registry struct {
	store *Store
}

// Registry returns the notification registry view of the store.
func (s *Store) Registry() *Registry {
	return &Registry{store: s}
}

// Pending returns every registered reminder.
func (r *Registry) Pending(ctx context.Context) ([]model.Reminder, error) {
	rows, err := r.store.db.QueryContext(ctx,
		"SELECT id, title, body, fire_at, marker FROM reminders ORDER BY fire_at")
	if err != nil {
		return nil, fmt.Errorf("reading reminder registry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []model.Reminder
	for rows.Next() {
		var rem model.Reminder
		var fireAt string
		if err := rows.Scan(&rem.ID, &rem.Title, &rem.Body, &fireAt, &rem.Marker); err != nil {
			return nil, err
		}
		rem.FireAt, _ = time.ParseInLocation(time.RFC3339, fireAt, time.Local)
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// Cancel removes the given reminder ids.
func (r *Registry) Cancel(ctx context.Context, ids []uint32) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.store.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("cancelling reminders: %w", err)
	}
	return nil
}

// Schedule registers a batch of reminders. Re-registering an existing id
// replaces it.
func (r *Registry) Schedule(ctx context.Context, reminders []model.Reminder) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scheduling reminders: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rem := range reminders {
		_, err := tx.Exec(`INSERT OR REPLACE INTO reminders (id, title, body, fire_at, marker)
			VALUES (?, ?, ?, ?, ?)`,
			rem.ID, rem.Title, rem.Body, rem.FireAt.Format(time.RFC3339), rem.Marker)
		if err != nil {
			return fmt.Errorf("scheduling reminder %d: %w", rem.ID, err)
		}
	}
	return tx.Commit()
}
