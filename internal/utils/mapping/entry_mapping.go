package mapping

import (
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/models"
)

// ToModelLedgerEntry converts a domain.LedgerEntry to its database model.
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:         d.EntryID,
		CompanyID:       d.CompanyID,
		AccountID:       d.AccountID,
		Amount:          d.Amount,
		Direction:       models.Direction(d.Direction),
		IsCash:          d.IsCash,
		BalanceBefore:   d.BalanceBefore,
		BalanceAfter:    d.BalanceAfter,
		Status:          models.EntryStatus(d.Status),
		Description:     d.Description,
		Reconciled:      d.Reconciled,
		ReconciledAt:    d.ReconciledAt,
		ReconciledBy:    d.ReconciledBy,
		ReferenceType:   d.ReferenceType,
		ReferenceID:     d.ReferenceID,
		TransactionDate: d.TransactionDate,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerEntry converts a database model entry to its domain form.
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:         m.EntryID,
		CompanyID:       m.CompanyID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		Direction:       domain.Direction(m.Direction),
		IsCash:          m.IsCash,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Status:          domain.EntryStatus(m.Status),
		Description:     m.Description,
		Reconciled:      m.Reconciled,
		ReconciledAt:    m.ReconciledAt,
		ReconciledBy:    m.ReconciledBy,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		TransactionDate: m.TransactionDate,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerEntrySlice converts a slice of model entries.
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
