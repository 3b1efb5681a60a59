package dto

import (
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryMismatchResponse mirrors domain.EntryMismatch for API output.
type EntryMismatchResponse struct {
	EntryID         string          `json:"entryID"`
	TransactionDate time.Time       `json:"transactionDate"`
	ExpectedAfter   decimal.Decimal `json:"expectedAfter"`
	StoredAfter     decimal.Decimal `json:"storedAfter"`
	Difference      decimal.Decimal `json:"difference"`
}

// VerificationReportResponse is the audit report returned for an account.
type VerificationReportResponse struct {
	AccountID       string                  `json:"accountID"`
	OpeningBalance  decimal.Decimal         `json:"openingBalance"`
	ComputedBalance decimal.Decimal         `json:"computedBalance"`
	StoredBalance   decimal.Decimal         `json:"storedBalance"`
	Difference      decimal.Decimal         `json:"difference"`
	Balanced        bool                    `json:"balanced"`
	EntriesReplayed int                     `json:"entriesReplayed"`
	MismatchCount   int                     `json:"mismatchCount"`
	Mismatches      []EntryMismatchResponse `json:"mismatches"`
	VerifiedAt      time.Time               `json:"verifiedAt"`
}

// ToVerificationReportResponse converts a domain report to its DTO.
func ToVerificationReportResponse(r *domain.VerificationReport, eps decimal.Decimal) VerificationReportResponse {
	mismatches := make([]EntryMismatchResponse, len(r.Mismatches))
	for i, m := range r.Mismatches {
		mismatches[i] = EntryMismatchResponse{
			EntryID:         m.EntryID,
			TransactionDate: m.TransactionDate,
			ExpectedAfter:   m.ExpectedAfter,
			StoredAfter:     m.StoredAfter,
			Difference:      m.Difference,
		}
	}
	return VerificationReportResponse{
		AccountID:       r.AccountID,
		OpeningBalance:  r.OpeningBalance,
		ComputedBalance: r.ComputedBalance,
		StoredBalance:   r.StoredBalance,
		Difference:      r.Difference,
		Balanced:        r.Balanced(eps),
		EntriesReplayed: r.EntriesReplayed,
		MismatchCount:   len(r.Mismatches),
		Mismatches:      mismatches,
		VerifiedAt:      r.VerifiedAt,
	}
}
