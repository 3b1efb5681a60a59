package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accubooks/backoffice/internal/apperrors"
	portsrepo "github.com/accubooks/backoffice/internal/core/ports/repositories"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/dto"
	"github.com/accubooks/backoffice/internal/middleware"
	"github.com/accubooks/backoffice/internal/utils"
)

type authService struct {
	userRepo      portsrepo.UserRepositoryFacade
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, jwtSecret string, tokenDuration time.Duration) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies credentials and issues a signed JWT carrying the operator's
// company scope. Failures are reported uniformly so usernames cannot be
// probed.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, passwordHash, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		logger.Warn("Login failed: user lookup", slog.String("username", req.Username))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if user.DeletedAt != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if !utils.CheckPasswordHash(req.Password, passwordHash) {
		logger.Warn("Login failed: bad password", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenDuration)
	claims := middleware.Claims{
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	}, nil
}
