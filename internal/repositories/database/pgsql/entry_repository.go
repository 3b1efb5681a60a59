package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	"github.com/accubooks/backoffice/internal/models"
	"github.com/accubooks/backoffice/internal/utils/mapping"
	"github.com/accubooks/backoffice/internal/utils/pagination"
)

const entryColumns = `entry_id, company_id, account_id, amount, direction, is_cash, balance_before, balance_after, status, description, reconciled, reconciled_at, reconciled_by, reference_type, reference_id, transaction_date, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	pool *pgxpool.Pool
}

// newPgxEntryRepository creates a new repository for ledger entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.LedgerEntryRepositoryFacade {
	return &PgxEntryRepository{pool: pool}
}

// Ensure PgxEntryRepository implements portsrepo.LedgerEntryRepositoryFacade
var _ portsrepo.LedgerEntryRepositoryFacade = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.CompanyID,
		&m.AccountID,
		&m.Amount,
		&m.Direction,
		&m.IsCash,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.Status,
		&m.Description,
		&m.Reconciled,
		&m.ReconciledAt,
		&m.ReconciledBy,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.TransactionDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// NextEntryID reserves the next human-readable entry ID for a company on the
// given date, e.g. TXN-20240115-0007. The per-(company, date) counter bump is
// a single upsert, so two concurrent calls can never draw the same number.
func (r *PgxEntryRepository) NextEntryID(ctx context.Context, companyID string, txnDate time.Time) (string, error) {
	day := txnDate.UTC().Format("20060102")
	query := `
		INSERT INTO entry_counters (company_id, entry_date, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, entry_date)
		DO UPDATE SET counter = entry_counters.counter + 1
		RETURNING counter;
	`
	var counter int64
	if err := r.pool.QueryRow(ctx, query, companyID, day).Scan(&counter); err != nil {
		return "", fmt.Errorf("failed to reserve entry counter for company %s on %s: %w", companyID, day, err)
	}
	return fmt.Sprintf("TXN-%s-%04d", day, counter), nil
}

// SaveEntry inserts a new entry in whatever status it carries.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)

	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.pool.Exec(ctx, query,
		m.EntryID,
		m.CompanyID,
		m.AccountID,
		m.Amount,
		m.Direction,
		m.IsCash,
		m.BalanceBefore,
		m.BalanceAfter,
		m.Status,
		m.Description,
		m.Reconciled,
		m.ReconciledAt,
		m.ReconciledBy,
		m.ReferenceType,
		m.ReferenceID,
		m.TransactionDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: entry with ID %s already exists", apperrors.ErrDuplicate, m.EntryID)
		}
		return fmt.Errorf("failed to save entry %s: %w", m.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE entry_id = $1;
	`
	m, err := scanEntry(r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	e := mapping.ToDomainLedgerEntry(*m)
	return &e, nil
}

// ListEntriesByAccountID retrieves a token-paginated page of entries for an
// account, newest first. The cursor is a keyset over
// (transaction_date, created_at, entry_id) so pages stay stable while new
// entries land, even when entries share both timestamps.
func (r *PgxEntryRepository) ListEntriesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE company_id = $1 AND account_id = $2
	`
	args := []interface{}{companyID, accountID}

	if nextToken != nil && *nextToken != "" {
		txnDate, createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (transaction_date, created_at, entry_id) < ($3, $4, $5)`
		args = append(args, txnDate, createdAt, entryID)
	}

	// Fetch one extra row to learn whether another page exists.
	query += fmt.Sprintf(` ORDER BY transaction_date DESC, created_at DESC, entry_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ms := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for account %s: %w", accountID, err)
		}
		ms = append(ms, *m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for account %s: %w", accountID, rows.Err())
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		t := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.EntryID)
		token = &t
	}
	return mapping.ToDomainLedgerEntrySlice(ms), token, nil
}

// MarkEntryCompleted promotes a pending entry to completed with its balance
// snapshots.
func (r *PgxEntryRepository) MarkEntryCompleted(ctx context.Context, entryID string, change domain.BalanceChange, userID string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $2, balance_before = $3, balance_after = $4, last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $1 AND status = $7;
	`
	cmdTag, err := r.pool.Exec(ctx, query, entryID, models.Completed, change.Before, change.After, now, userID, models.Pending)
	if err != nil {
		return fmt.Errorf("failed to complete entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not pending", apperrors.ErrConflict, entryID)
	}
	return nil
}

// UpdateEntry persists amended fields and fresh balance snapshots. The WHERE
// clause carries the amount and direction the caller read plus the completed
// status, so of two concurrent amends exactly one lands; the loser misses the
// guard and gets a conflict it can compensate.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry, prevAmount decimal.Decimal, prevDirection domain.Direction) error {
	m := mapping.ToModelLedgerEntry(entry)

	query := `
		UPDATE ledger_entries
		SET amount = $2, direction = $3, description = $4, balance_before = $5, balance_after = $6, last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $1 AND amount = $9 AND direction = $10 AND status = $11;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.EntryID,
		m.Amount,
		m.Direction,
		m.Description,
		m.BalanceBefore,
		m.BalanceAfter,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		prevAmount,
		models.Direction(prevDirection),
		models.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, m.EntryID)
	}
	return nil
}

// MarkEntryCancelled sets status CANCELLED, keeping the row for the audit
// trail.
func (r *PgxEntryRepository) MarkEntryCancelled(ctx context.Context, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := r.pool.Exec(ctx, query, entryID, models.Cancelled, now, userID, models.Completed)
	if err != nil {
		return fmt.Errorf("failed to cancel entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not completed", apperrors.ErrConflict, entryID)
	}
	return nil
}

// MarkEntryReconciled freezes an entry as externally confirmed.
func (r *PgxEntryRepository) MarkEntryReconciled(ctx context.Context, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET reconciled = TRUE, reconciled_at = $2, reconciled_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND reconciled = FALSE AND status = $4;
	`
	cmdTag, err := r.pool.Exec(ctx, query, entryID, now, userID, models.Completed)
	if err != nil {
		return fmt.Errorf("failed to reconcile entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s cannot be reconciled", apperrors.ErrConflict, entryID)
	}
	return nil
}

// VoidPendingEntry removes an entry that never completed. The status guard
// means a completed row can never be erased through this path.
func (r *PgxEntryRepository) VoidPendingEntry(ctx context.Context, entryID string) error {
	query := `
		DELETE FROM ledger_entries
		WHERE entry_id = $1 AND status = $2;
	`
	cmdTag, err := r.pool.Exec(ctx, query, entryID, models.Pending)
	if err != nil {
		return fmt.Errorf("failed to void pending entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not pending", apperrors.ErrConflict, entryID)
	}
	return nil
}
