package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/middleware"
)

// VerificationEpsilon is the tolerance used when comparing stored against
// replayed balances. Differences at or below it are rounding noise, not
// corruption.
var VerificationEpsilon = decimal.NewFromFloat(0.01)

// verificationService recomputes an account's balance by replaying its entry
// history and compares the result against the stored balance. It is a pure
// read path: verification never mutates anything, it only reports.
type verificationService struct {
	verificationRepo portsrepo.VerificationRepositoryFacade
}

// NewVerificationService creates a new verification service.
func NewVerificationService(verificationRepo portsrepo.VerificationRepositoryFacade) portssvc.VerificationSvcFacade {
	return &verificationService{verificationRepo: verificationRepo}
}

var _ portssvc.VerificationSvcFacade = (*verificationService)(nil)

// VerifyAccount folds the account's completed entries, in
// (transactionDate, createdAt, entryID) order, over the opening balance and
// reports any divergence. Cancelled and pending entries contribute nothing.
// Per-entry mismatches compare each entry's stored balanceAfter snapshot to
// the running replayed balance, pinpointing where history first diverged.
func (s *verificationService) VerifyAccount(ctx context.Context, companyID string, accountID string) (*domain.VerificationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, entries, err := s.verificationRepo.SnapshotAccountWithEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	running := account.OpeningBalance
	mismatches := make([]domain.EntryMismatch, 0)
	for _, e := range entries {
		running = running.Add(e.SignedEffect())
		diff := e.BalanceAfter.Sub(running)
		if diff.Abs().GreaterThan(VerificationEpsilon) {
			mismatches = append(mismatches, domain.EntryMismatch{
				EntryID:         e.EntryID,
				TransactionDate: e.TransactionDate,
				ExpectedAfter:   running,
				StoredAfter:     e.BalanceAfter,
				Difference:      diff,
			})
		}
	}

	report := &domain.VerificationReport{
		AccountID:       accountID,
		OpeningBalance:  account.OpeningBalance,
		ComputedBalance: running,
		StoredBalance:   account.CurrentBalance,
		Difference:      account.CurrentBalance.Sub(running),
		EntriesReplayed: len(entries),
		Mismatches:      mismatches,
		VerifiedAt:      time.Now().UTC(),
	}

	if !report.Balanced(VerificationEpsilon) {
		logger.Warn("Account balance verification failed",
			slog.String("account_id", accountID),
			slog.String("stored", report.StoredBalance.String()),
			slog.String("computed", report.ComputedBalance.String()),
			slog.String("difference", report.Difference.String()),
			slog.Int("mismatches", len(mismatches)),
		)
	} else {
		logger.Info("Account balance verified",
			slog.String("account_id", accountID),
			slog.Int("entries_replayed", len(entries)),
		)
	}
	return report, nil
}
