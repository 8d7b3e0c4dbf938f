package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"billwatch/internal/model"
)

// RecordTransaction inserts a transaction, assigning an id when empty.
func (s *Store) RecordTransaction(t model.Transaction) (model.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Kind == "" {
		t.Kind = model.TxnExpense
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO transactions
		(id, account_id, category, amount, kind, occurred_at, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Category, t.Amount, string(t.Kind),
		t.OccurredAt.Format(time.RFC3339), t.Note)
	if err != nil {
		return t, fmt.Errorf("inserting transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns transactions in [since, until), newest first.
// Zero bounds are open.
func (s *Store) ListTransactions(since, until time.Time) ([]model.Transaction, error) {
	query := `SELECT id, account_id, category, amount, kind, occurred_at, note
		FROM transactions WHERE 1=1`
	var args []any
	if !since.IsZero() {
		query += " AND occurred_at >= ?"
		args = append(args, since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		query += " AND occurred_at < ?"
		args = append(args, until.Format(time.RFC3339))
	}
	query += " ORDER BY occurred_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, occurred string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Category, &t.Amount, &kind, &occurred, &t.Note); err != nil {
			return nil, err
		}
		t.Kind = model.TxnKind(kind)
		t.OccurredAt, _ = time.ParseInLocation(time.RFC3339, occurred, time.Local)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
