package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money moved into or out of the business.
type Direction string

const (
	In  Direction = "IN"
	Out Direction = "OUT"
)

// EntryStatus indicates the lifecycle state of a ledger entry.
type EntryStatus string

const (
	Pending   EntryStatus = "PENDING"
	Completed EntryStatus = "COMPLETED"
	Failed    EntryStatus = "FAILED"
	Cancelled EntryStatus = "CANCELLED"
)

// LedgerEntry is one recorded monetary movement, optionally tied to an
// account. Completed entries are immutable except through AmendEntry/
// DeleteEntry on the ledger service; reconciled entries are frozen entirely.
//
// The cash and bank variants are built through NewCashEntry/NewAccountEntry,
// which enforce each variant's field rules: a cash entry has no AccountID and
// zero balance snapshots, a bank entry requires an AccountID and carries the
// account balance immediately before and after it was applied.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"` // e.g. TXN-20240115-0007, per-company sequence
	CompanyID     string          `json:"companyID"`
	AccountID     *string         `json:"accountID"` // nil for cash entries
	Amount        decimal.Decimal `json:"amount"`    // always positive
	Direction     Direction       `json:"direction"`
	IsCash        bool            `json:"isCash"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Status        EntryStatus     `json:"status"`
	Description   string          `json:"description"`
	Reconciled    bool            `json:"reconciled"`
	ReconciledAt  *time.Time      `json:"reconciledAt"`
	ReconciledBy  string          `json:"reconciledBy"`
	ReferenceType string          `json:"referenceType"` // PURCHASE, SALE, TRANSFER, ADJUSTMENT... stored opaquely
	ReferenceID   *string         `json:"referenceID"`
	TransactionDate time.Time     `json:"transactionDate"`
	AuditFields
}

// NewAccountEntry builds a pending bank-account entry.
func NewAccountEntry(entryID, companyID, accountID string, amount decimal.Decimal, direction Direction, description string, txnDate time.Time) (LedgerEntry, error) {
	if accountID == "" {
		return LedgerEntry{}, fmt.Errorf("account entry requires an account ID")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return LedgerEntry{}, fmt.Errorf("entry amount must be positive, got %s", amount.String())
	}
	if direction != In && direction != Out {
		return LedgerEntry{}, fmt.Errorf("invalid direction %q", direction)
	}
	return LedgerEntry{
		EntryID:         entryID,
		CompanyID:       companyID,
		AccountID:       &accountID,
		Amount:          amount,
		Direction:       direction,
		IsCash:          false,
		Status:          Pending,
		Description:     description,
		TransactionDate: txnDate,
	}, nil
}

// NewCashEntry builds a completed cash entry. Cash entries never touch an
// account balance, so they skip the pending state entirely.
func NewCashEntry(entryID, companyID string, amount decimal.Decimal, direction Direction, description string, txnDate time.Time) (LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return LedgerEntry{}, fmt.Errorf("entry amount must be positive, got %s", amount.String())
	}
	if direction != In && direction != Out {
		return LedgerEntry{}, fmt.Errorf("invalid direction %q", direction)
	}
	return LedgerEntry{
		EntryID:         entryID,
		CompanyID:       companyID,
		Amount:          amount,
		Direction:       direction,
		IsCash:          true,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    decimal.Zero,
		Status:          Completed,
		Description:     description,
		TransactionDate: txnDate,
	}, nil
}

// SignedEffect returns the entry's effect on its account balance:
// positive for IN, negative for OUT.
func (e LedgerEntry) SignedEffect() decimal.Decimal {
	return SignedEffect(e.Amount, e.Direction)
}

// ReversalDelta returns the delta that undoes this entry's effect.
func (e LedgerEntry) ReversalDelta() decimal.Decimal {
	return e.SignedEffect().Neg()
}

// SignedEffect returns amount with the sign implied by direction.
func SignedEffect(amount decimal.Decimal, direction Direction) decimal.Decimal {
	if direction == Out {
		return amount.Neg()
	}
	return amount
}

// AmendDelta returns the single net balance adjustment implied by changing an
// applied entry from (oldAmount, oldDirection) to (newAmount, newDirection).
// A direction flip collapses "undo the old effect, apply the new one" into one
// signed delta so no intermediate inconsistent balance is ever visible.
func AmendDelta(oldAmount decimal.Decimal, oldDirection Direction, newAmount decimal.Decimal, newDirection Direction) decimal.Decimal {
	return SignedEffect(newAmount, newDirection).Sub(SignedEffect(oldAmount, oldDirection))
}
