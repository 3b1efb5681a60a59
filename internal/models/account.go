package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind mirrors domain.AccountKind for storage.
type AccountKind string

const (
	Bank AccountKind = "BANK"
	Cash AccountKind = "CASH"
)

// Account is the database representation of a balance-bearing account.
type Account struct {
	AccountID           string          `db:"account_id"`
	CompanyID           string          `db:"company_id"`
	Name                string          `db:"name"`
	Kind                AccountKind     `db:"kind"`
	AccountNumber       string          `db:"account_number"`
	OpeningBalance      decimal.Decimal `db:"opening_balance"`
	CurrentBalance      decimal.Decimal `db:"current_balance"`
	AllowOverdraft      bool            `db:"allow_overdraft"`
	TotalTransactions   int64           `db:"total_transactions"`
	TotalCredits        decimal.Decimal `db:"total_credits"`
	TotalDebits         decimal.Decimal `db:"total_debits"`
	LastTransactionDate *time.Time      `db:"last_transaction_date"`
	IsActive            bool            `db:"is_active"`
	AuditFields
}
