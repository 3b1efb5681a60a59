package repositories

import (
	"context"

	"github.com/accubooks/backoffice/internal/core/domain"
)

// UserRepositoryFacade defines operations for user data. The password hash
// stays inside the repository; FindUserByUsername returns it separately so the
// domain object never carries it.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User, passwordHash string) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, string, error)
}
