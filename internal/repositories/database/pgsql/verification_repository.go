package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	"github.com/accubooks/backoffice/internal/models"
	"github.com/accubooks/backoffice/internal/utils/mapping"
)

type PgxVerificationRepository struct {
	BaseRepository
}

// newPgxVerificationRepository creates a new repository for balance
// verification reads.
func newPgxVerificationRepository(pool *pgxpool.Pool) portsrepo.VerificationRepositoryFacade {
	return &PgxVerificationRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxVerificationRepository implements portsrepo.VerificationRepositoryFacade
var _ portsrepo.VerificationRepositoryFacade = (*PgxVerificationRepository)(nil)

// SnapshotAccountWithEntries reads the account row and its completed entries
// inside one repeatable-read transaction, so the stored balance and the entry
// history come from the same point in time even while writes continue.
func (r *PgxVerificationRepository) SnapshotAccountWithEntries(ctx context.Context, accountID string) (*domain.Account, []domain.LedgerEntry, error) {
	tx, err := r.BeginWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	accountQuery := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = $1;
	`
	m, err := scanAccount(tx.QueryRow(ctx, accountQuery, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to snapshot account %s: %w", accountID, err)
	}

	entryQuery := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_id = $1 AND status = $2
		ORDER BY transaction_date ASC, created_at ASC, entry_id ASC;
	`
	rows, err := tx.Query(ctx, entryQuery, accountID, models.Completed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to snapshot entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ms := []models.LedgerEntry{}
	for rows.Next() {
		em, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan snapshot entry row for account %s: %w", accountID, err)
		}
		ms = append(ms, *em)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating snapshot entry rows for account %s: %w", accountID, rows.Err())
	}
	rows.Close()

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	acc := mapping.ToDomainAccount(*m)
	return &acc, mapping.ToDomainLedgerEntrySlice(ms), nil
}
