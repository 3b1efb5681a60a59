package services

import (
	"context"

	"github.com/accubooks/backoffice/internal/dto"
)

// AuthSvcFacade authenticates operators and issues tokens.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
