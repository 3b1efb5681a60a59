package repositories

import (
	"context"
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for ledger entry data
type EntryReader interface {
	// FindEntryByID retrieves an entry by its ID.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntriesByAccountID retrieves a token-paginated page of entries for
	// an account, newest first.
	ListEntriesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// EntryWriter defines write operations for ledger entry data
type EntryWriter interface {
	// NextEntryID reserves the next human-readable entry ID for a company on
	// the given date, e.g. TXN-20240115-0007. The underlying counter bump is
	// atomic.
	NextEntryID(ctx context.Context, companyID string, txnDate time.Time) (string, error)

	// SaveEntry inserts a new entry in whatever status it carries.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// MarkEntryCompleted promotes a pending entry to completed, recording the
	// balance snapshots returned by the balance mutation.
	MarkEntryCompleted(ctx context.Context, entryID string, change domain.BalanceChange, userID string, now time.Time) error

	// UpdateEntry persists amended fields and fresh balance snapshots. The
	// write is guarded by the amount and direction the caller read: if a
	// concurrent amend or cancel got there first the guard misses and the
	// call fails with a conflict, so two amends can never both land.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry, prevAmount decimal.Decimal, prevDirection domain.Direction) error

	// MarkEntryCancelled sets status CANCELLED. Entries are never physically
	// erased once completed; cancellation preserves the audit trail.
	MarkEntryCancelled(ctx context.Context, entryID string, userID string, now time.Time) error

	// MarkEntryReconciled freezes an entry as externally confirmed.
	MarkEntryReconciled(ctx context.Context, entryID string, userID string, now time.Time) error

	// VoidPendingEntry removes an entry that never completed. Only valid for
	// PENDING rows; used as the compensating action when entry creation fails
	// partway.
	VoidPendingEntry(ctx context.Context, entryID string) error
}

// LedgerEntryRepositoryFacade combines all entry repository interfaces
type LedgerEntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
