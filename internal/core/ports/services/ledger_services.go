package services

import (
	"context"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/dto"
)

// EntryReaderSvc defines read operations for ledger entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry, scoped to a company.
	GetEntryByID(ctx context.Context, companyID string, entryID string) (*domain.LedgerEntry, error)

	// ListEntriesByAccount retrieves a paginated page of an account's entries.
	ListEntriesByAccount(ctx context.Context, companyID string, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// EntryWriterSvc defines the create/amend/delete state machine tying entry
// lifecycle to account balance mutation. Every multi-step write leaves the
// system fully applied or fully rolled back, never partially applied.
type EntryWriterSvc interface {
	// CreateEntry records a monetary movement and, for bank entries, applies
	// it to the account balance.
	CreateEntry(ctx context.Context, companyID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// AmendEntry changes amount/direction/description of a completed entry,
	// adjusting the account balance by the implied net delta.
	AmendEntry(ctx context.Context, companyID string, entryID string, req dto.AmendEntryRequest, userID string) (*domain.LedgerEntry, error)

	// DeleteEntry cancels an entry and reverses its balance effect.
	DeleteEntry(ctx context.Context, companyID string, entryID string, userID string) (*dto.DeletedEntryResponse, error)

	// ReconcileEntry marks an entry as externally confirmed, freezing it.
	ReconcileEntry(ctx context.Context, companyID string, entryID string, userID string) (*domain.LedgerEntry, error)

	// Transfer moves money between two accounts as two linked entries.
	Transfer(ctx context.Context, companyID string, req dto.TransferRequest, userID string) (*dto.TransferResponse, error)
}

// LedgerSvcFacade combines all entry-related service interfaces
type LedgerSvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
