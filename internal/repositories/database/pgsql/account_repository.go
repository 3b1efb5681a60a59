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
)

const accountColumns = `account_id, company_id, name, kind, account_number, opening_balance, current_balance, allow_overdraft, total_transactions, total_credits, total_debits, last_transaction_date, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.CompanyID,
		&m.Name,
		&m.Kind,
		&m.AccountNumber,
		&m.OpeningBalance,
		&m.CurrentBalance,
		&m.AllowOverdraft,
		&m.TotalTransactions,
		&m.TotalCredits,
		&m.TotalDebits,
		&m.LastTransactionDate,
		&m.IsActive,
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

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.CompanyID,
		m.Name,
		m.Kind,
		m.AccountNumber,
		m.OpeningBalance,
		m.CurrentBalance,
		m.AllowOverdraft,
		m.TotalTransactions,
		m.TotalCredits,
		m.TotalDebits,
		m.LastTransactionDate,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = $1;
	`
	m, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// ListAccounts retrieves a paginated list of active accounts for a company.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active = TRUE AND company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for company %s: %w", companyID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for company %s: %w", companyID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for company %s: %w", companyID, rows.Err())
	}
	return accounts, nil
}

// UpdateAccount updates mutable account fields. Balances and counters are
// deliberately absent from the SET list; only ApplyBalanceDelta touches them.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, account_number = $3, allow_overdraft = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.AccountNumber,
		m.AllowOverdraft,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	cmdTag, err := r.pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to execute deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the account doesn't exist or it was already inactive.
		if _, findErr := r.FindAccountByID(ctx, accountID); findErr != nil {
			if errors.Is(findErr, apperrors.ErrNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to check account status after deactivation attempt for %s: %w", accountID, findErr)
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}
	return nil
}

// ApplyBalanceDelta atomically adjusts an account's balance and counters in a
// single guarded UPDATE. The WHERE clause carries the overdraft guard, so the
// read-check-write happens inside one statement and concurrent deltas against
// the same account serialize on the row lock instead of racing in application
// code. RETURNING hands back both balance snapshots without a second query.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (domain.BalanceChange, error) {
	query := `
		UPDATE accounts
		SET current_balance = current_balance + $2,
		    total_transactions = total_transactions + 1,
		    total_credits = total_credits + GREATEST($2::numeric, 0),
		    total_debits = total_debits + GREATEST(-($2::numeric), 0),
		    last_transaction_date = $4,
		    last_updated_at = $4,
		    last_updated_by = $3
		WHERE account_id = $1
		  AND is_active = TRUE
		  AND (current_balance + $2 >= 0 OR allow_overdraft = TRUE)
		RETURNING current_balance - $2, current_balance;
	`
	var change domain.BalanceChange
	err := r.pool.QueryRow(ctx, query, accountID, delta, userID, now).Scan(&change.Before, &change.After)
	if err == nil {
		return change, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.BalanceChange{}, fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}

	// The guard rejected the update; find out which condition failed.
	var isActive, allowOverdraft bool
	var balance decimal.Decimal
	checkQuery := `SELECT is_active, allow_overdraft, current_balance FROM accounts WHERE account_id = $1;`
	checkErr := r.pool.QueryRow(ctx, checkQuery, accountID).Scan(&isActive, &allowOverdraft, &balance)
	if checkErr != nil {
		if errors.Is(checkErr, pgx.ErrNoRows) {
			return domain.BalanceChange{}, apperrors.ErrNotFound
		}
		return domain.BalanceChange{}, fmt.Errorf("failed to check account %s after rejected delta: %w", accountID, checkErr)
	}
	if !isActive {
		return domain.BalanceChange{}, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, accountID)
	}
	return domain.BalanceChange{}, fmt.Errorf("%w: balance %s cannot absorb delta %s", apperrors.ErrInsufficientFunds, balance, delta)
}
