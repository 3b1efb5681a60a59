package repositories

import (
	"context"
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves active accounts for a company.
	ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount inserts a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account fields (name, number, overdraft).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deletes an account.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// BalanceLedger is the only surface permitted to change an account's current
// balance and counters. ApplyBalanceDelta must be a single atomic
// read-compute-write at the storage layer so concurrent mutations to the same
// account serialize on the row instead of racing in application code.
//
// Errors: apperrors.ErrNotFound if the account does not exist,
// apperrors.ErrAccountInactive if it is soft-deleted, and
// apperrors.ErrInsufficientFunds if the resulting balance would be negative
// without an overdraft allowance. On any error the account is untouched.
type BalanceLedger interface {
	ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (domain.BalanceChange, error)
}

// AccountRepositoryFacade combines all account repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	BalanceLedger
}
