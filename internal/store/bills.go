package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"billwatch/internal/model"
	"billwatch/internal/recur"
)

// CreateBill inserts a new bill, assigning an id when empty. New bills
// start unpaid unless a status is provided.
func (s *Store) CreateBill(b model.Bill) (model.Bill, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Repeat == "" {
		b.Repeat = model.RepeatNone
	}
	if b.Status == "" {
		b.Status = model.BillUnpaid
	}

	var override any
	if b.OverrideAccountID != "" {
		override = b.OverrideAccountID
	}
	_, err := s.db.Exec(`INSERT INTO bills
		(id, name, amount, due_date, repeat, account_id, override_account_id, status, last_paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Amount, b.DueDate.Format(time.RFC3339), string(b.Repeat),
		b.AccountID, override, string(b.Status), timeOrNil(b.LastPaidAt))
	if err != nil {
		return b, fmt.Errorf("inserting bill: %w", err)
	}
	return b, nil
}

// SetBillStatus updates a bill's status; marking paid also stamps
// last_paid_at.
func (s *Store) SetBillStatus(id string, status model.BillStatus, at time.Time) error {
	var res sql.Result
	var err error
	if status == model.BillPaid {
		res, err = s.db.Exec("UPDATE bills SET status = ?, last_paid_at = ? WHERE id = ?",
			string(status), at.Format(time.RFC3339), id)
	} else {
		res, err = s.db.Exec("UPDATE bills SET status = ? WHERE id = ?", string(status), id)
	}
	if err != nil {
		return fmt.Errorf("updating bill status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("bill %s not found", id)
	}
	return nil
}

// ListBills returns all bills ordered by anchor due date.
func (s *Store) ListBills() ([]model.Bill, error) {
	rows, err := s.db.Query(`SELECT id, name, amount, due_date, repeat,
		account_id, override_account_id, status, last_paid_at
		FROM bills ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// RefreshBills flips paid recurring bills back to unpaid once the occurrence
// covered by their last payment has passed, then returns the current bill
// set. Read paths use this instead of ListBills so the next cycle starts
// counting without user intervention.
func (s *Store) RefreshBills(now time.Time) ([]model.Bill, error) {
	bills, err := s.ListBills()
	if err != nil {
		return nil, err
	}

	for i, b := range bills {
		if !recur.PaidCycleOver(b, now) {
			continue
		}
		if err := s.SetBillStatus(b.ID, model.BillUnpaid, now); err != nil {
			return nil, err
		}
		bills[i].Status = model.BillUnpaid
	}
	return bills, nil
}

// GetBill looks a bill up by id or name prefix.
func (s *Store) GetBill(ref string) (model.Bill, error) {
	row := s.db.QueryRow(`SELECT id, name, amount, due_date, repeat,
		account_id, override_account_id, status, last_paid_at
		FROM bills WHERE id = ? OR name LIKE ? || '%' LIMIT 1`, ref, ref)
	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return b, fmt.Errorf("bill %q not found", ref)
	}
	if err != nil {
		return b, fmt.Errorf("looking up bill: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (model.Bill, error) {
	var b model.Bill
	var due string
	var repeat, status string
	var override, lastPaid sql.NullString

	err := row.Scan(&b.ID, &b.Name, &b.Amount, &due, &repeat,
		&b.AccountID, &override, &status, &lastPaid)
	if err != nil {
		return b, err
	}

	b.Repeat = model.Repeat(repeat)
	b.Status = model.BillStatus(status)
	if override.Valid {
		b.OverrideAccountID = override.String
	}
	b.DueDate, _ = time.ParseInLocation(time.RFC3339, due, time.Local)
	if lastPaid.Valid && lastPaid.String != "" {
		b.LastPaidAt, _ = time.ParseInLocation(time.RFC3339, lastPaid.String, time.Local)
	}
	return b, nil
}

func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
