package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryMismatch pinpoints one entry whose stored balanceAfter diverges from
// the balance recomputed by replay.
type EntryMismatch struct {
	EntryID         string          `json:"entryID"`
	TransactionDate time.Time       `json:"transactionDate"`
	ExpectedAfter   decimal.Decimal `json:"expectedAfter"`
	StoredAfter     decimal.Decimal `json:"storedAfter"`
	Difference      decimal.Decimal `json:"difference"` // stored - expected
}

// VerificationReport is the result of replaying an account's completed entry
// history over its opening balance and comparing against the stored balance.
type VerificationReport struct {
	AccountID       string          `json:"accountID"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	Difference      decimal.Decimal `json:"difference"` // stored - computed
	EntriesReplayed int             `json:"entriesReplayed"`
	Mismatches      []EntryMismatch `json:"mismatches"`
	VerifiedAt      time.Time       `json:"verifiedAt"`
}

// Balanced reports whether the stored and computed balances agree within eps.
func (r VerificationReport) Balanced(eps decimal.Decimal) bool {
	return r.Difference.Abs().LessThanOrEqual(eps)
}
