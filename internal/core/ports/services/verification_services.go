package services

import (
	"context"

	"github.com/accubooks/backoffice/internal/core/domain"
)

// VerificationSvcFacade recomputes account balances by replaying entry
// history. Read-only; discrepancies are reported, never auto-corrected.
type VerificationSvcFacade interface {
	VerifyAccount(ctx context.Context, companyID string, accountID string) (*domain.VerificationReport, error)
}
