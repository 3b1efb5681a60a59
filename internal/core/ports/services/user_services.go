package services

import (
	"context"

	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/dto"
)

// UserSvcFacade manages operator accounts within a company.
type UserSvcFacade interface {
	// CreateUser registers a new operator in the creator's company.
	CreateUser(ctx context.Context, companyID string, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// GetUserByID retrieves an operator, scoped to a company.
	GetUserByID(ctx context.Context, companyID string, userID string) (*domain.User, error)
}
