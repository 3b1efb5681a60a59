package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction mirrors domain.Direction for storage.
type Direction string

const (
	In  Direction = "IN"
	Out Direction = "OUT"
)

// EntryStatus mirrors domain.EntryStatus for storage.
type EntryStatus string

const (
	Pending   EntryStatus = "PENDING"
	Completed EntryStatus = "COMPLETED"
	Failed    EntryStatus = "FAILED"
	Cancelled EntryStatus = "CANCELLED"
)

// LedgerEntry is the database representation of one monetary movement.
type LedgerEntry struct {
	EntryID         string          `db:"entry_id"`
	CompanyID       string          `db:"company_id"`
	AccountID       *string         `db:"account_id"` // NULL for cash entries
	Amount          decimal.Decimal `db:"amount"`
	Direction       Direction       `db:"direction"`
	IsCash          bool            `db:"is_cash"`
	BalanceBefore   decimal.Decimal `db:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	Status          EntryStatus     `db:"status"`
	Description     string          `db:"description"`
	Reconciled      bool            `db:"reconciled"`
	ReconciledAt    *time.Time      `db:"reconciled_at"`
	ReconciledBy    string          `db:"reconciled_by"`
	ReferenceType   string          `db:"reference_type"`
	ReferenceID     *string         `db:"reference_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	AuditFields
}
