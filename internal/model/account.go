package model

// AccountType classifies an account for aggregation purposes.
type AccountType string

// Account types.
const (
	AccountBank    AccountType = "bank"
	AccountEwallet AccountType = "ewallet"
	AccountCash    AccountType = "cash"
	AccountCredit  AccountType = "credit"
)

// Account holds a balance the engine reads. BalanceCurrent is the only
// mutable figure consumed; the engine never writes it.
type Account struct {
	ID             string
	Name           string
	BalanceCurrent float64
	Type           AccountType
	CreditLimit    float64
}
