package model

import "time"

// TxnKind separates money leaving an account from money entering it.
type TxnKind string

// Transaction kinds.
const (
	TxnExpense TxnKind = "expense"
	TxnIncome  TxnKind = "income"
)

// Transaction is a single recorded movement, used by the recommendation
// engine for month-over-month comparisons.
type Transaction struct {
	ID         string
	AccountID  string
	Category   string
	Amount     float64
	Kind       TxnKind
	OccurredAt time.Time
	Note       string
}
