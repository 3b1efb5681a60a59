package repositories

import (
	"context"

	"github.com/accubooks/backoffice/internal/core/domain"
)

// VerificationRepositoryFacade serves balance verification's read path.
// SnapshotAccountWithEntries must return the account row and its completed
// entries from one consistent snapshot; reading them in separate statements
// would let a concurrent mutation land between the two reads and produce a
// phantom discrepancy. Entries come back in replay order:
// (transaction_date, created_at, entry_id) ascending.
type VerificationRepositoryFacade interface {
	SnapshotAccountWithEntries(ctx context.Context, accountID string) (*domain.Account, []domain.LedgerEntry, error)
}
