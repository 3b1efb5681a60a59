package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/core/services"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/dto"
	"github.com/accubooks/backoffice/internal/middleware"
	"github.com/accubooks/backoffice/internal/utils"
)

const testJWTSecret = "test-secret-for-auth-suite"

// --- Test Suite Setup ---

type AuthServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.AuthSvcFacade
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewAuthService(suite.mockRepo, testJWTSecret, time.Hour)
}

func (suite *AuthServiceTestSuite) testUser() (*domain.User, string) {
	hash, err := utils.HashPassword("correct horse battery staple")
	suite.Require().NoError(err)
	return &domain.User{
		UserID:    uuid.NewString(),
		CompanyID: uuid.NewString(),
		Username:  "bookkeeper",
		Name:      "Sam Bookkeeper",
	}, hash
}

// --- Test Cases ---

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	user, hash := suite.testUser()

	suite.mockRepo.On("FindUserByUsername", ctx, "bookkeeper").Return(user, hash, nil).Once()

	res, err := suite.service.Login(ctx, dto.LoginRequest{
		Username: "bookkeeper",
		Password: "correct horse battery staple",
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.NotEmpty(res.Token)
	suite.Equal(user.UserID, res.User.UserID)
	suite.WithinDuration(time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	// The token must carry the company scope and be verifiable with the secret.
	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	suite.Require().NoError(err)
	suite.True(parsed.Valid)
	suite.Equal(user.CompanyID, claims.CompanyID)
	suite.Equal(user.UserID, claims.Subject)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	user, hash := suite.testUser()

	suite.mockRepo.On("FindUserByUsername", ctx, "bookkeeper").Return(user, hash, nil).Once()

	res, err := suite.service.Login(ctx, dto.LoginRequest{
		Username: "bookkeeper",
		Password: "wrong password",
	})

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUserSameError() {
	ctx := context.Background()

	suite.mockRepo.On("FindUserByUsername", ctx, "nobody").Return(nil, "", apperrors.ErrNotFound).Once()

	res, err := suite.service.Login(ctx, dto.LoginRequest{
		Username: "nobody",
		Password: "anything",
	})

	suite.Require().Error(err)
	suite.Nil(res)
	// Unknown user and wrong password are indistinguishable to the caller.
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AuthServiceTestSuite) TestLogin_DeletedUserRejected() {
	ctx := context.Background()
	user, hash := suite.testUser()
	deletedAt := time.Now().Add(-time.Hour)
	user.DeletedAt = &deletedAt

	suite.mockRepo.On("FindUserByUsername", ctx, "bookkeeper").Return(user, hash, nil).Once()

	res, err := suite.service.Login(ctx, dto.LoginRequest{
		Username: "bookkeeper",
		Password: "correct horse battery staple",
	})

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
