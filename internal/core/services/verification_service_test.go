package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/core/services"
	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
)

// --- Test Suite Setup ---

type VerificationServiceTestSuite struct {
	suite.Suite
	mockRepo *MockVerificationRepository
	service  portssvc.VerificationSvcFacade

	companyID string
	accountID string
}

func (suite *VerificationServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockVerificationRepository)
	suite.service = services.NewVerificationService(suite.mockRepo)
	suite.companyID = uuid.NewString()
	suite.accountID = uuid.NewString()
}

func (suite *VerificationServiceTestSuite) account(opening, current decimal.Decimal) *domain.Account {
	return &domain.Account{
		AccountID:      suite.accountID,
		CompanyID:      suite.companyID,
		Name:           "Audited Account",
		Kind:           domain.Bank,
		OpeningBalance: opening,
		CurrentBalance: current,
		IsActive:       true,
	}
}

func (suite *VerificationServiceTestSuite) entry(id string, day int, amount int64, direction domain.Direction, after int64) domain.LedgerEntry {
	accID := suite.accountID
	return domain.LedgerEntry{
		EntryID:         id,
		CompanyID:       suite.companyID,
		AccountID:       &accID,
		Amount:          decimal.NewFromInt(amount),
		Direction:       direction,
		Status:          domain.Completed,
		BalanceAfter:    decimal.NewFromInt(after),
		TransactionDate: time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *VerificationServiceTestSuite) TestVerifyAccount_Balanced() {
	ctx := context.Background()
	// 1000 opening, +500, -200 -> 1300 stored.
	entries := []domain.LedgerEntry{
		suite.entry("TXN-20260110-0001", 10, 500, domain.In, 1500),
		suite.entry("TXN-20260112-0001", 12, 200, domain.Out, 1300),
	}

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(suite.account(decimal.NewFromInt(1000), decimal.NewFromInt(1300)), entries, nil).Once()

	report, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.Require().NoError(err)
	suite.True(report.Balanced(services.VerificationEpsilon))
	suite.True(report.ComputedBalance.Equal(decimal.NewFromInt(1300)))
	suite.True(report.Difference.IsZero())
	suite.Equal(2, report.EntriesReplayed)
	suite.Empty(report.Mismatches)
}

func (suite *VerificationServiceTestSuite) TestVerifyAccount_DriftedStoredBalance() {
	ctx := context.Background()
	// Entries replay to 1300 but the stored balance says 1250.
	entries := []domain.LedgerEntry{
		suite.entry("TXN-20260110-0001", 10, 500, domain.In, 1500),
		suite.entry("TXN-20260112-0001", 12, 200, domain.Out, 1300),
	}

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(suite.account(decimal.NewFromInt(1000), decimal.NewFromInt(1250)), entries, nil).Once()

	report, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.Require().NoError(err)
	suite.False(report.Balanced(services.VerificationEpsilon))
	suite.True(report.Difference.Equal(decimal.NewFromInt(-50)))
	// Snapshots themselves agree with replay; only the account total drifted.
	suite.Empty(report.Mismatches)
}

func (suite *VerificationServiceTestSuite) TestVerifyAccount_PinpointsCorruptedSnapshot() {
	ctx := context.Background()
	// The middle entry's stored snapshot is wrong by +100; every snapshot from
	// there on disagrees with replay.
	entries := []domain.LedgerEntry{
		suite.entry("TXN-20260110-0001", 10, 500, domain.In, 1500),
		suite.entry("TXN-20260112-0001", 12, 200, domain.Out, 1400), // should be 1300
		suite.entry("TXN-20260114-0001", 14, 100, domain.In, 1500),  // should be 1400
	}

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(suite.account(decimal.NewFromInt(1000), decimal.NewFromInt(1400)), entries, nil).Once()

	report, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.Require().NoError(err)
	suite.Require().Len(report.Mismatches, 2)
	suite.Equal("TXN-20260112-0001", report.Mismatches[0].EntryID)
	suite.True(report.Mismatches[0].Difference.Equal(decimal.NewFromInt(100)))
	suite.Equal("TXN-20260114-0001", report.Mismatches[1].EntryID)
	// Stored account balance matches replay, so the report is balanced overall
	// even though history is internally inconsistent.
	suite.True(report.Balanced(services.VerificationEpsilon))
}

func (suite *VerificationServiceTestSuite) TestVerifyAccount_SubEpsilonDifferenceTolerated() {
	ctx := context.Background()
	entries := []domain.LedgerEntry{
		suite.entry("TXN-20260110-0001", 10, 500, domain.In, 1500),
	}
	stored := decimal.NewFromInt(1500).Add(decimal.NewFromFloat(0.01))

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(suite.account(decimal.NewFromInt(1000), stored), entries, nil).Once()

	report, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.Require().NoError(err)
	suite.True(report.Balanced(services.VerificationEpsilon))
}

func (suite *VerificationServiceTestSuite) TestVerifyAccount_NoEntries() {
	ctx := context.Background()

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(suite.account(decimal.NewFromInt(1000), decimal.NewFromInt(1000)), []domain.LedgerEntry{}, nil).Once()

	report, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.Require().NoError(err)
	suite.True(report.Balanced(services.VerificationEpsilon))
	suite.Equal(0, report.EntriesReplayed)
	suite.True(report.ComputedBalance.Equal(decimal.NewFromInt(1000)))
}

func (suite *VerificationServiceTestSuite) TestVerifyAccount_OtherCompanyHidden() {
	ctx := context.Background()
	account := suite.account(decimal.NewFromInt(1000), decimal.NewFromInt(1000))
	account.CompanyID = uuid.NewString()

	suite.mockRepo.On("SnapshotAccountWithEntries", ctx, suite.accountID).Return(account, []domain.LedgerEntry{}, nil).Once()

	_, err := suite.service.VerifyAccount(ctx, suite.companyID, suite.accountID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestVerificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceTestSuite))
}
