package dto

import (
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidations wires decimal-aware rules into gin's binding
// validator. Amounts arrive as JSON strings/numbers and bind into
// decimal.Decimal, which the standard gt/gte tags cannot compare.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("decimalgt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThan(decimal.Zero)
	}); err != nil {
		return err
	}
	return v.RegisterValidation("decimalgte0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThanOrEqual(decimal.Zero)
	})
}

// CreateEntryRequest defines the data needed to record a monetary movement.
// For cash movements AccountID must be absent; for bank movements it is
// required.
type CreateEntryRequest struct {
	AccountID       *string          `json:"accountID"`
	Amount          decimal.Decimal  `json:"amount" binding:"decimalgt0"`
	Direction       domain.Direction `json:"direction" binding:"required,oneof=IN OUT"`
	IsCash          bool             `json:"isCash"`
	Description     string           `json:"description" binding:"required"`
	ReferenceType   string           `json:"referenceType"`
	ReferenceID     *string          `json:"referenceID"`
	TransactionDate *time.Time       `json:"transactionDate"` // defaults to now
}

// AmendEntryRequest defines the changes allowed on a completed entry.
type AmendEntryRequest struct {
	Amount      *decimal.Decimal  `json:"amount"`
	Direction   *domain.Direction `json:"direction" binding:"omitempty,oneof=IN OUT"`
	Description *string           `json:"description"`
}

// TransferRequest moves money between two accounts of the same company.
type TransferRequest struct {
	FromAccountID   string          `json:"fromAccountID" binding:"required"`
	ToAccountID     string          `json:"toAccountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"decimalgt0"`
	Description     string          `json:"description" binding:"required"`
	TransactionDate *time.Time      `json:"transactionDate"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID         string             `json:"entryID"`
	CompanyID       string             `json:"companyID"`
	AccountID       *string            `json:"accountID,omitempty"`
	Amount          decimal.Decimal    `json:"amount"`
	Direction       domain.Direction   `json:"direction"`
	IsCash          bool               `json:"isCash"`
	BalanceBefore   decimal.Decimal    `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal    `json:"balanceAfter"`
	Status          domain.EntryStatus `json:"status"`
	Description     string             `json:"description"`
	Reconciled      bool               `json:"reconciled"`
	ReconciledAt    *time.Time         `json:"reconciledAt,omitempty"`
	ReferenceType   string             `json:"referenceType,omitempty"`
	ReferenceID     *string            `json:"referenceID,omitempty"`
	TransactionDate time.Time          `json:"transactionDate"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToEntryResponse converts a domain.LedgerEntry to EntryResponse DTO
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		CompanyID:       e.CompanyID,
		AccountID:       e.AccountID,
		Amount:          e.Amount,
		Direction:       e.Direction,
		IsCash:          e.IsCash,
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		Status:          e.Status,
		Description:     e.Description,
		Reconciled:      e.Reconciled,
		ReconciledAt:    e.ReconciledAt,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries to response DTOs
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	res := make([]EntryResponse, len(entries))
	for i := range entries {
		res[i] = ToEntryResponse(&entries[i])
	}
	return res
}

// DeletedEntryResponse reports the result of cancelling an entry.
type DeletedEntryResponse struct {
	EntryID        string          `json:"entryID"`
	ReversedAmount decimal.Decimal `json:"reversedAmount"` // signed delta applied to the account
	BalanceAfter   decimal.Decimal `json:"balanceAfter"`
	CancelledAt    time.Time       `json:"cancelledAt"`
}

// TransferResponse returns both legs of a completed transfer.
type TransferResponse struct {
	TransferID string        `json:"transferID"`
	OutEntry   EntryResponse `json:"outEntry"`
	InEntry    EntryResponse `json:"inEntry"`
}

// ListEntriesParams defines query parameters for listing entries by account.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries plus the cursor for the next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
