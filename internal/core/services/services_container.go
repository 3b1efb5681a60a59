package services

import (
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.EntryRepo)
	container.Verification = NewVerificationService(repos.VerificationRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewAuthService(repos.UserRepo, cfg.JWTSecret, cfg.JWTExpiryDuration)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade      = (*accountService)(nil)
	_ portssvc.LedgerSvcFacade       = (*ledgerService)(nil)
	_ portssvc.VerificationSvcFacade = (*verificationService)(nil)
	_ portssvc.AuthSvcFacade         = (*authService)(nil)
	_ portssvc.UserSvcFacade         = (*userService)(nil)
)
