package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/accubooks/backoffice/internal/core/domain"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (domain.BalanceChange, error) {
	args := m.Called(ctx, accountID, delta, userID, now)
	return args.Get(0).(domain.BalanceChange), args.Error(1)
}

// MockEntryRepository is a mock type for the LedgerEntryRepositoryFacade interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, companyID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var tok *string
	if args.Get(1) != nil {
		tok = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.LedgerEntry), tok, args.Error(2)
}

func (m *MockEntryRepository) NextEntryID(ctx context.Context, companyID string, txnDate time.Time) (string, error) {
	args := m.Called(ctx, companyID, txnDate)
	return args.String(0), args.Error(1)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkEntryCompleted(ctx context.Context, entryID string, change domain.BalanceChange, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, change, userID, now)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry, prevAmount decimal.Decimal, prevDirection domain.Direction) error {
	args := m.Called(ctx, entry, prevAmount, prevDirection)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkEntryCancelled(ctx context.Context, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, userID, now)
	return args.Error(0)
}

func (m *MockEntryRepository) MarkEntryReconciled(ctx context.Context, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, userID, now)
	return args.Error(0)
}

func (m *MockEntryRepository) VoidPendingEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

// MockVerificationRepository is a mock type for the VerificationRepositoryFacade interface
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) SnapshotAccountWithEntries(ctx context.Context, accountID string) (*domain.Account, []domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var entries []domain.LedgerEntry
	if args.Get(1) != nil {
		entries = args.Get(1).([]domain.LedgerEntry)
	}
	return args.Get(0).(*domain.Account), entries, args.Error(2)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, passwordHash string) error {
	args := m.Called(ctx, user, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}
