package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/dto"
	"github.com/accubooks/backoffice/internal/middleware"
)

var (
	ErrNegativeOpeningBalance = errors.New("opening balance cannot be negative")
	ErrAccountHasBalance      = errors.New("account cannot be deactivated with a non-zero balance")
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account. The current balance starts equal to
// the opening balance; the opening balance itself is immutable afterwards so
// replay verification always has a fixed starting point.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeOpeningBalance)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	kind := req.Kind
	if kind != domain.Bank && kind != domain.Cash {
		return nil, fmt.Errorf("%w: invalid account kind %q", apperrors.ErrValidation, req.Kind)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		CompanyID:      companyID,
		Name:           req.Name,
		Kind:           kind,
		AccountNumber:  req.AccountNumber,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		AllowOverdraft: req.AllowOverdraft,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("kind", string(kind)),
		slog.String("opening_balance", req.OpeningBalance.String()),
	)
	return &account, nil
}

// GetAccountByID retrieves a specific account, scoped to a company.
func (s *accountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// ListAccounts retrieves active accounts for a company.
func (s *accountService) ListAccounts(ctx context.Context, companyID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount changes mutable account fields. Opening balance, current
// balance and counters are never writable through this path.
func (s *accountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	}

	updated := *account
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		updated.Name = *req.Name
	}
	if req.AccountNumber != nil {
		updated.AccountNumber = *req.AccountNumber
	}
	if req.AllowOverdraft != nil {
		updated.AllowOverdraft = *req.AllowOverdraft
	}
	updated.LastUpdatedAt = time.Now().UTC()
	updated.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, updated); err != nil {
		logger.Error("Failed to update account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return &updated, nil
}

// DeactivateAccount soft-deletes an account. Only a zero-balance account may
// be deactivated; outstanding money must be moved or written off first.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}
	if !account.CurrentBalance.IsZero() {
		return fmt.Errorf("%w: balance is %s", ErrAccountHasBalance, account.CurrentBalance.String())
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
