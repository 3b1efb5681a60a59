package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes balance-tracked bank accounts from cash boxes.
type AccountKind string

const (
	Bank AccountKind = "BANK"
	Cash AccountKind = "CASH"
)

// Account represents a balance-bearing bank or cash account.
// CurrentBalance is mutated exclusively through the account repository's
// atomic delta primitive; it must always equal OpeningBalance plus the sum of
// completed ledger entries affecting the account.
type Account struct {
	AccountID           string          `json:"accountID"`
	CompanyID           string          `json:"companyID"`
	Name                string          `json:"name"`
	Kind                AccountKind     `json:"kind"`
	AccountNumber       string          `json:"accountNumber"` // bank-assigned number, optional
	OpeningBalance      decimal.Decimal `json:"openingBalance"`
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	AllowOverdraft      bool            `json:"allowOverdraft"`
	TotalTransactions   int64           `json:"totalTransactions"`
	TotalCredits        decimal.Decimal `json:"totalCredits"`
	TotalDebits         decimal.Decimal `json:"totalDebits"`
	LastTransactionDate *time.Time      `json:"lastTransactionDate"` // nil until first movement
	IsActive            bool            `json:"isActive"`
	AuditFields
}

// BalanceChange is the result of one atomic balance mutation.
type BalanceChange struct {
	Before decimal.Decimal
	After  decimal.Decimal
}
