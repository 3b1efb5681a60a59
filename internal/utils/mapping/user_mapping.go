package mapping

import (
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/models"
)

// ToDomainUser converts a database model user to its domain form.
// The password hash never leaves the repository layer.
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:      m.UserID,
		CompanyID:   m.CompanyID,
		Username:    m.Username,
		Name:        m.Name,
		AuditFields: ToDomainAuditFields(m.AuditFields),
		DeletedAt:   m.DeletedAt,
	}
}
