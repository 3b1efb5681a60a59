package mapping

import (
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/models"
)

// ToModelAccount converts a domain.Account to its database model.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:           d.AccountID,
		CompanyID:           d.CompanyID,
		Name:                d.Name,
		Kind:                models.AccountKind(d.Kind),
		AccountNumber:       d.AccountNumber,
		OpeningBalance:      d.OpeningBalance,
		CurrentBalance:      d.CurrentBalance,
		AllowOverdraft:      d.AllowOverdraft,
		TotalTransactions:   d.TotalTransactions,
		TotalCredits:        d.TotalCredits,
		TotalDebits:         d.TotalDebits,
		LastTransactionDate: d.LastTransactionDate,
		IsActive:            d.IsActive,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a database model account to its domain form.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:           m.AccountID,
		CompanyID:           m.CompanyID,
		Name:                m.Name,
		Kind:                domain.AccountKind(m.Kind),
		AccountNumber:       m.AccountNumber,
		OpeningBalance:      m.OpeningBalance,
		CurrentBalance:      m.CurrentBalance,
		AllowOverdraft:      m.AllowOverdraft,
		TotalTransactions:   m.TotalTransactions,
		TotalCredits:        m.TotalCredits,
		TotalDebits:         m.TotalDebits,
		LastTransactionDate: m.LastTransactionDate,
		IsActive:            m.IsActive,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}
