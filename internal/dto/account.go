package dto

import (
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	Kind           domain.AccountKind `json:"kind" binding:"required,oneof=BANK CASH"`
	AccountNumber  string             `json:"accountNumber"` // Optional
	OpeningBalance decimal.Decimal    `json:"openingBalance" binding:"decimalgte0"`
	AllowOverdraft bool               `json:"allowOverdraft"`
}

// UpdateAccountRequest defines the fields allowed to change on an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name           *string `json:"name"`
	AccountNumber  *string `json:"accountNumber"`
	AllowOverdraft *bool   `json:"allowOverdraft"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID           string             `json:"accountID"`
	CompanyID           string             `json:"companyID"`
	Name                string             `json:"name"`
	Kind                domain.AccountKind `json:"kind"`
	AccountNumber       string             `json:"accountNumber"`
	OpeningBalance      decimal.Decimal    `json:"openingBalance"`
	CurrentBalance      decimal.Decimal    `json:"currentBalance"`
	AllowOverdraft      bool               `json:"allowOverdraft"`
	TotalTransactions   int64              `json:"totalTransactions"`
	TotalCredits        decimal.Decimal    `json:"totalCredits"`
	TotalDebits         decimal.Decimal    `json:"totalDebits"`
	LastTransactionDate *time.Time         `json:"lastTransactionDate,omitempty"`
	IsActive            bool               `json:"isActive"`
	CreatedAt           time.Time          `json:"createdAt"`
	LastUpdatedAt       time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:           acc.AccountID,
		CompanyID:           acc.CompanyID,
		Name:                acc.Name,
		Kind:                acc.Kind,
		AccountNumber:       acc.AccountNumber,
		OpeningBalance:      acc.OpeningBalance,
		CurrentBalance:      acc.CurrentBalance,
		AllowOverdraft:      acc.AllowOverdraft,
		TotalTransactions:   acc.TotalTransactions,
		TotalCredits:        acc.TotalCredits,
		TotalDebits:         acc.TotalDebits,
		LastTransactionDate: acc.LastTransactionDate,
		IsActive:            acc.IsActive,
		CreatedAt:           acc.CreatedAt,
		LastUpdatedAt:       acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
