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
	ErrEntryReconciled    = errors.New("entry is reconciled and frozen against modification")
	ErrEntryNotCompleted  = errors.New("entry is not in completed status")
	ErrEntryCancelled     = errors.New("entry is already cancelled")
	ErrDescriptionMissing = errors.New("entry description is required")
	ErrCashEntryAccount   = errors.New("cash entries must not reference an account")
	ErrAccountRequired    = errors.New("bank entries require an account ID")
	ErrSameAccount        = errors.New("transfer requires two different accounts")

	// ErrCompensationFailed denotes a torn write: a mutation was applied but
	// its rollback failed, so ledger and account state may have diverged.
	// Callers must surface this as an operator incident; recovery is a manual
	// verification-driven correction.
	ErrCompensationFailed = errors.New("compensation failed: ledger and account state may have diverged")
)

// ledgerService ties ledger entry lifecycle to account balance mutation.
// Every multi-step write either fully applies or is compensated back to the
// pre-call state before the error is returned.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	entryRepo   portsrepo.LedgerEntryRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, entryRepo portsrepo.LedgerEntryRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// compensation is the inverse of an applied step. Inverses run in reverse
// order of registration; a failed inverse is fatal (torn write).
type compensation struct {
	label string
	undo  func(ctx context.Context) error
}

// runCompensations executes registered inverses last-first. It returns
// ErrCompensationFailed if any inverse fails, logging each failure loudly.
func runCompensations(ctx context.Context, comps []compensation) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	var failed bool
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].undo(ctx); err != nil {
			failed = true
			logger.Error("COMPENSATION FAILED: manual reconciliation required",
				slog.String("step", comps[i].label),
				slog.String("error", err.Error()),
			)
		}
	}
	if failed {
		return ErrCompensationFailed
	}
	return nil
}

// CreateEntry records a monetary movement. Cash entries complete immediately
// with no account mutation. Bank entries are persisted pending, the balance
// delta is applied atomically, and the entry is then promoted to completed
// with the returned balance snapshots; any failure after the first step is
// compensated before the error surfaces.
func (s *ledgerService) CreateEntry(ctx context.Context, companyID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: entry amount must be positive", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDescriptionMissing)
	}
	if req.Direction != domain.In && req.Direction != domain.Out {
		return nil, fmt.Errorf("%w: invalid direction %q", apperrors.ErrValidation, req.Direction)
	}

	now := time.Now().UTC()
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = req.TransactionDate.UTC()
	}
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	if req.IsCash {
		if req.AccountID != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrCashEntryAccount)
		}
		return s.createCashEntry(ctx, companyID, req, txnDate, audit)
	}

	if req.AccountID == nil || *req.AccountID == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAccountRequired)
	}

	account, err := s.findCompanyAccount(ctx, companyID, *req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, account.AccountID)
	}

	entryID, err := s.entryRepo.NextEntryID(ctx, companyID, txnDate)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry ID: %w", err)
	}

	entry, err := domain.NewAccountEntry(entryID, companyID, account.AccountID, req.Amount, req.Direction, req.Description, txnDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	entry.ReferenceType = req.ReferenceType
	entry.ReferenceID = req.ReferenceID
	entry.AuditFields = audit

	// Step 1: persist the entry in pending status.
	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save pending entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	comps := []compensation{{
		label: "void pending entry " + entryID,
		undo:  func(ctx context.Context) error { return s.entryRepo.VoidPendingEntry(ctx, entryID) },
	}}

	// Step 2: apply the balance delta. The mutation is a single atomic
	// storage-level increment, so a failure here means the account is
	// untouched and only the pending entry needs voiding.
	delta := entry.SignedEffect()
	change, err := s.accountRepo.ApplyBalanceDelta(ctx, account.AccountID, delta, creatorUserID, now)
	if err != nil {
		if compErr := runCompensations(ctx, comps); compErr != nil {
			return nil, fmt.Errorf("%w (original error: %v)", compErr, err)
		}
		return nil, err
	}
	comps = append(comps, compensation{
		label: "reverse balance delta on account " + account.AccountID,
		undo: func(ctx context.Context) error {
			_, revErr := s.accountRepo.ApplyBalanceDelta(ctx, account.AccountID, delta.Neg(), creatorUserID, now)
			return revErr
		},
	})

	// Step 3: promote the entry to completed with its balance snapshots.
	if err := s.entryRepo.MarkEntryCompleted(ctx, entryID, change, creatorUserID, now); err != nil {
		logger.Error("Failed to complete entry after balance mutation", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		if compErr := runCompensations(ctx, comps); compErr != nil {
			return nil, fmt.Errorf("%w (original error: %v)", compErr, err)
		}
		return nil, fmt.Errorf("failed to complete entry %s: %w", entryID, err)
	}

	entry.Status = domain.Completed
	entry.BalanceBefore = change.Before
	entry.BalanceAfter = change.After

	logger.Info("Ledger entry created",
		slog.String("entry_id", entryID),
		slog.String("account_id", account.AccountID),
		slog.String("amount", req.Amount.String()),
		slog.String("direction", string(req.Direction)),
	)
	return &entry, nil
}

func (s *ledgerService) createCashEntry(ctx context.Context, companyID string, req dto.CreateEntryRequest, txnDate time.Time, audit domain.AuditFields) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entryID, err := s.entryRepo.NextEntryID(ctx, companyID, txnDate)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry ID: %w", err)
	}

	entry, err := domain.NewCashEntry(entryID, companyID, req.Amount, req.Direction, req.Description, txnDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	entry.ReferenceType = req.ReferenceType
	entry.ReferenceID = req.ReferenceID
	entry.AuditFields = audit

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save cash entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Cash entry created", slog.String("entry_id", entryID), slog.String("amount", req.Amount.String()))
	return &entry, nil
}

// AmendEntry changes amount/direction/description of a completed entry. The
// net balance adjustment is collapsed into one signed delta (a direction flip
// undoes the old effect and applies the new one in a single mutation), so no
// intermediate inconsistent balance is ever visible.
func (s *ledgerService) AmendEntry(ctx context.Context, companyID string, entryID string, req dto.AmendEntryRequest, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findCompanyEntry(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Reconciled {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryReconciled, entryID)
	}
	if entry.Status != domain.Completed {
		if entry.Status == domain.Cancelled {
			return nil, fmt.Errorf("%w: entry %s", ErrEntryCancelled, entryID)
		}
		return nil, fmt.Errorf("%w: entry %s has status %s", ErrEntryNotCompleted, entryID, entry.Status)
	}

	newAmount := entry.Amount
	if req.Amount != nil {
		newAmount = *req.Amount
	}
	newDirection := entry.Direction
	if req.Direction != nil {
		newDirection = *req.Direction
	}
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: entry amount must be positive", apperrors.ErrValidation)
	}
	if newDirection != domain.In && newDirection != domain.Out {
		return nil, fmt.Errorf("%w: invalid direction %q", apperrors.ErrValidation, newDirection)
	}

	now := time.Now().UTC()
	updated := *entry
	updated.Amount = newAmount
	updated.Direction = newDirection
	if req.Description != nil {
		updated.Description = *req.Description
	}
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	delta := domain.AmendDelta(entry.Amount, entry.Direction, newAmount, newDirection)

	if entry.IsCash || delta.IsZero() {
		// No balance effect; persist the field changes only.
		if err := s.entryRepo.UpdateEntry(ctx, updated, entry.Amount, entry.Direction); err != nil {
			return nil, fmt.Errorf("failed to update entry %s: %w", entryID, err)
		}
		return &updated, nil
	}

	// The overdraft guard lives inside ApplyBalanceDelta: if the adjustment
	// would take the balance negative without an allowance, it fails with no
	// mutation at all.
	change, err := s.accountRepo.ApplyBalanceDelta(ctx, *entry.AccountID, delta, userID, now)
	if err != nil {
		return nil, err
	}

	updated.BalanceBefore = change.Before
	updated.BalanceAfter = change.After

	// The update is guarded by the amount/direction this call read. If a
	// concurrent amend or cancel won the race, the guard misses and the
	// just-applied delta is reversed before the conflict surfaces, so the
	// balance only ever absorbs the winner's adjustment.
	if err := s.entryRepo.UpdateEntry(ctx, updated, entry.Amount, entry.Direction); err != nil {
		logger.Error("Failed to persist amended entry after balance mutation", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		comps := []compensation{{
			label: "reverse amend delta on account " + *entry.AccountID,
			undo: func(ctx context.Context) error {
				_, revErr := s.accountRepo.ApplyBalanceDelta(ctx, *entry.AccountID, delta.Neg(), userID, now)
				return revErr
			},
		}}
		if compErr := runCompensations(ctx, comps); compErr != nil {
			return nil, fmt.Errorf("%w (original error: %v)", compErr, err)
		}
		return nil, fmt.Errorf("failed to update entry %s: %w", entryID, err)
	}

	logger.Info("Ledger entry amended",
		slog.String("entry_id", entryID),
		slog.String("delta", delta.String()),
	)
	return &updated, nil
}

// DeleteEntry cancels an entry, reversing its balance effect first. Entries
// are never physically erased; cancellation keeps the audit trail and replay
// verification meaningful.
func (s *ledgerService) DeleteEntry(ctx context.Context, companyID string, entryID string, userID string) (*dto.DeletedEntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findCompanyEntry(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Reconciled {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryReconciled, entryID)
	}
	if entry.Status == domain.Cancelled {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryCancelled, entryID)
	}
	if entry.Status != domain.Completed {
		return nil, fmt.Errorf("%w: entry %s has status %s", ErrEntryNotCompleted, entryID, entry.Status)
	}

	now := time.Now().UTC()

	if entry.IsCash {
		if err := s.entryRepo.MarkEntryCancelled(ctx, entryID, userID, now); err != nil {
			return nil, fmt.Errorf("failed to cancel entry %s: %w", entryID, err)
		}
		return &dto.DeletedEntryResponse{
			EntryID:        entryID,
			ReversedAmount: decimal.Zero,
			BalanceAfter:   decimal.Zero,
			CancelledAt:    now,
		}, nil
	}

	// Reverse the balance effect first; the entry must not read cancelled
	// without a successful reversing mutation.
	delta := entry.ReversalDelta()
	change, err := s.accountRepo.ApplyBalanceDelta(ctx, *entry.AccountID, delta, userID, now)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.MarkEntryCancelled(ctx, entryID, userID, now); err != nil {
		logger.Error("Failed to cancel entry after balance reversal", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		comps := []compensation{{
			label: "restore reversed delta on account " + *entry.AccountID,
			undo: func(ctx context.Context) error {
				_, revErr := s.accountRepo.ApplyBalanceDelta(ctx, *entry.AccountID, delta.Neg(), userID, now)
				return revErr
			},
		}}
		if compErr := runCompensations(ctx, comps); compErr != nil {
			return nil, fmt.Errorf("%w (original error: %v)", compErr, err)
		}
		return nil, fmt.Errorf("failed to cancel entry %s: %w", entryID, err)
	}

	logger.Info("Ledger entry cancelled",
		slog.String("entry_id", entryID),
		slog.String("reversed_delta", delta.String()),
	)
	return &dto.DeletedEntryResponse{
		EntryID:        entryID,
		ReversedAmount: delta,
		BalanceAfter:   change.After,
		CancelledAt:    now,
	}, nil
}

// ReconcileEntry marks a completed entry as externally confirmed, freezing it
// against amend and delete.
func (s *ledgerService) ReconcileEntry(ctx context.Context, companyID string, entryID string, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.findCompanyEntry(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Reconciled {
		return nil, fmt.Errorf("%w: entry %s is already reconciled", apperrors.ErrConflict, entryID)
	}
	if entry.Status != domain.Completed {
		return nil, fmt.Errorf("%w: entry %s has status %s", ErrEntryNotCompleted, entryID, entry.Status)
	}

	now := time.Now().UTC()
	if err := s.entryRepo.MarkEntryReconciled(ctx, entryID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to reconcile entry %s: %w", entryID, err)
	}

	entry.Reconciled = true
	entry.ReconciledAt = &now
	entry.ReconciledBy = userID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	logger.Info("Ledger entry reconciled", slog.String("entry_id", entryID))
	return entry, nil
}

// Transfer moves money between two accounts as two linked entries: OUT of the
// source, IN to the destination. If the second leg fails after the first
// succeeded, the first leg is reversed before the error is returned so no
// state is ever visible where money left one account but never reached the
// other.
func (s *ledgerService) Transfer(ctx context.Context, companyID string, req dto.TransferRequest, userID string) (*dto.TransferResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w", ErrSameAccount)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}

	transferID := uuid.NewString()
	refID := transferID

	outEntry, err := s.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
		AccountID:       &req.FromAccountID,
		Amount:          req.Amount,
		Direction:       domain.Out,
		Description:     req.Description,
		ReferenceType:   "TRANSFER",
		ReferenceID:     &refID,
		TransactionDate: req.TransactionDate,
	}, userID)
	if err != nil {
		return nil, err
	}

	inEntry, err := s.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
		AccountID:       &req.ToAccountID,
		Amount:          req.Amount,
		Direction:       domain.In,
		Description:     req.Description,
		ReferenceType:   "TRANSFER",
		ReferenceID:     &refID,
		TransactionDate: req.TransactionDate,
	}, userID)
	if err != nil {
		logger.Warn("Transfer second leg failed, reversing first leg",
			slog.String("transfer_id", transferID),
			slog.String("error", err.Error()),
		)
		if _, delErr := s.DeleteEntry(ctx, companyID, outEntry.EntryID, userID); delErr != nil {
			logger.Error("COMPENSATION FAILED: transfer first leg could not be reversed",
				slog.String("transfer_id", transferID),
				slog.String("out_entry_id", outEntry.EntryID),
				slog.String("error", delErr.Error()),
			)
			return nil, fmt.Errorf("%w (original error: %v)", ErrCompensationFailed, err)
		}
		return nil, err
	}

	logger.Info("Transfer completed",
		slog.String("transfer_id", transferID),
		slog.String("from", req.FromAccountID),
		slog.String("to", req.ToAccountID),
		slog.String("amount", req.Amount.String()),
	)
	return &dto.TransferResponse{
		TransferID: transferID,
		OutEntry:   dto.ToEntryResponse(outEntry),
		InEntry:    dto.ToEntryResponse(inEntry),
	}, nil
}

// GetEntryByID retrieves a specific entry, scoped to a company.
func (s *ledgerService) GetEntryByID(ctx context.Context, companyID string, entryID string) (*domain.LedgerEntry, error) {
	return s.findCompanyEntry(ctx, companyID, entryID)
}

// ListEntriesByAccount retrieves a token-paginated page of an account's entries.
func (s *ledgerService) ListEntriesByAccount(ctx context.Context, companyID string, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByAccountID(ctx, companyID, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries by account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

func (s *ledgerService) findCompanyAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CompanyID != companyID {
		// Obscure existence across companies
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

func (s *ledgerService) findCompanyEntry(ctx context.Context, companyID, entryID string) (*domain.LedgerEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}
