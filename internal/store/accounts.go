package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"billwatch/internal/model"
)

// CreateAccount inserts a new account, assigning an id when empty.
func (s *Store) CreateAccount(a model.Account) (model.Account, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Type == "" {
		a.Type = model.AccountBank
	}
	_, err := s.db.Exec(`INSERT INTO accounts (id, name, balance_current, type, credit_limit)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.BalanceCurrent, string(a.Type), a.CreditLimit)
	if err != nil {
		return a, fmt.Errorf("inserting account: %w", err)
	}
	return a, nil
}

// UpdateAccountBalance sets the current balance for an account.
func (s *Store) UpdateAccountBalance(id string, balance float64) error {
	res, err := s.db.Exec("UPDATE accounts SET balance_current = ? WHERE id = ?", balance, id)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts() ([]model.Account, error) {
	rows, err := s.db.Query(`SELECT id, name, balance_current, type, credit_limit
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Name, &a.BalanceCurrent, &typ, &a.CreditLimit); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typ)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetAccount looks an account up by id or name prefix.
func (s *Store) GetAccount(ref string) (model.Account, error) {
	var a model.Account
	var typ string
	err := s.db.QueryRow(`SELECT id, name, balance_current, type, credit_limit
		FROM accounts WHERE id = ? OR name LIKE ? || '%' LIMIT 1`, ref, ref).
		Scan(&a.ID, &a.Name, &a.BalanceCurrent, &typ, &a.CreditLimit)
	if err == sql.ErrNoRows {
		return a, fmt.Errorf("account %q not found", ref)
	}
	if err != nil {
		return a, fmt.Errorf("looking up account: %w", err)
	}
	a.Type = model.AccountType(typ)
	return a, nil
}
