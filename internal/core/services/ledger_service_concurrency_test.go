package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/accubooks/backoffice/internal/apperrors"
	"github.com/accubooks/backoffice/internal/core/domain"
	"github.com/accubooks/backoffice/internal/core/services"
	"github.com/accubooks/backoffice/internal/dto"
)

// fakeStore is an in-memory implementation of both repository facades with
// the same atomicity contract as the real storage layer: ApplyBalanceDelta is
// a single read-compute-write under one lock, so concurrent mutations to the
// same account serialize instead of racing. Mocks cannot exercise that, so
// the lost-update test runs against this.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	entries  map[string]domain.LedgerEntry
	counter  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]domain.Account),
		entries:  make(map[string]domain.LedgerEntry),
	}
}

// --- AccountRepositoryFacade ---

func (f *fakeStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (f *fakeStore) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, acc := range f.accounts {
		if acc.CompanyID == companyID && acc.IsActive {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveAccount(ctx context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.AccountID] = account
	return nil
}

func (f *fakeStore) UpdateAccount(ctx context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.AccountID] = account
	return nil
}

func (f *fakeStore) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	f.accounts[accountID] = acc
	return nil
}

func (f *fakeStore) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (domain.BalanceChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return domain.BalanceChange{}, apperrors.ErrNotFound
	}
	if !acc.IsActive {
		return domain.BalanceChange{}, apperrors.ErrAccountInactive
	}
	before := acc.CurrentBalance
	after := before.Add(delta)
	if after.LessThan(decimal.Zero) && !acc.AllowOverdraft {
		return domain.BalanceChange{}, apperrors.ErrInsufficientFunds
	}
	acc.CurrentBalance = after
	acc.TotalTransactions++
	if delta.GreaterThan(decimal.Zero) {
		acc.TotalCredits = acc.TotalCredits.Add(delta)
	} else {
		acc.TotalDebits = acc.TotalDebits.Add(delta.Neg())
	}
	acc.LastTransactionDate = &now
	f.accounts[accountID] = acc
	return domain.BalanceChange{Before: before, After: after}, nil
}

// --- LedgerEntryRepositoryFacade ---

func (f *fakeStore) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (f *fakeStore) ListEntriesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if e.CompanyID == companyID && e.AccountID != nil && *e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil, nil
}

// SnapshotAccountWithEntries returns the account and its completed entries
// under one lock acquisition, mirroring the real repository's consistent
// snapshot semantics.
func (f *fakeStore) SnapshotAccountWithEntries(ctx context.Context, accountID string) (*domain.Account, []domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if e.AccountID != nil && *e.AccountID == accountID && e.Status == domain.Completed {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EntryID < out[j].EntryID
	})
	return &acc, out, nil
}

func (f *fakeStore) NextEntryID(ctx context.Context, companyID string, txnDate time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	return fmt.Sprintf("TXN-%s-%04d", txnDate.Format("20060102"), f.counter), nil
}

func (f *fakeStore) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.entries[entry.EntryID]; exists {
		return apperrors.ErrDuplicate
	}
	f.entries[entry.EntryID] = entry
	return nil
}

func (f *fakeStore) MarkEntryCompleted(ctx context.Context, entryID string, change domain.BalanceChange, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.Status = domain.Completed
	e.BalanceBefore = change.Before
	e.BalanceAfter = change.After
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	f.entries[entryID] = e
	return nil
}

func (f *fakeStore) UpdateEntry(ctx context.Context, entry domain.LedgerEntry, prevAmount decimal.Decimal, prevDirection domain.Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.entries[entry.EntryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	// Same guard as the real repository: the write only lands if the entry
	// still carries the amount and direction the caller read.
	if !stored.Amount.Equal(prevAmount) || stored.Direction != prevDirection || stored.Status != domain.Completed {
		return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, entry.EntryID)
	}
	f.entries[entry.EntryID] = entry
	return nil
}

func (f *fakeStore) MarkEntryCancelled(ctx context.Context, entryID string, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.Status = domain.Cancelled
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	f.entries[entryID] = e
	return nil
}

func (f *fakeStore) MarkEntryReconciled(ctx context.Context, entryID string, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.Reconciled = true
	e.ReconciledAt = &now
	e.ReconciledBy = userID
	f.entries[entryID] = e
	return nil
}

func (f *fakeStore) VoidPendingEntry(ctx context.Context, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if e.Status != domain.Pending {
		return apperrors.ErrConflict
	}
	delete(f.entries, entryID)
	return nil
}

func seedAccount(store *fakeStore, companyID string, balance decimal.Decimal) string {
	accountID := uuid.NewString()
	store.accounts[accountID] = domain.Account{
		AccountID:      accountID,
		CompanyID:      companyID,
		Name:           "Contended Account",
		Kind:           domain.Bank,
		OpeningBalance: balance,
		CurrentBalance: balance,
		IsActive:       true,
	}
	return accountID
}

// Two deposits landing at the same time must both stick: 1000 + 100 + 100 is
// 1200, never 1100.
func TestCreateEntry_ConcurrentDepositsDoNotLoseUpdates(t *testing.T) {
	store := newFakeStore()
	companyID := uuid.NewString()
	userID := uuid.NewString()
	accountID := seedAccount(store, companyID, decimal.NewFromInt(1000))
	svc := services.NewLedgerService(store, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
				AccountID:   &accountID,
				Amount:      decimal.NewFromInt(100),
				Direction:   domain.In,
				Description: fmt.Sprintf("deposit %d", i),
			}, userID)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	acc, err := store.FindAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(1200)),
		"expected 1200, got %s", acc.CurrentBalance)
	require.EqualValues(t, 2, acc.TotalTransactions)
}

// A storm of mixed deposits and withdrawals must leave the stored balance
// exactly where replay says it should be.
func TestCreateEntry_ConcurrentStormStaysVerifiable(t *testing.T) {
	store := newFakeStore()
	companyID := uuid.NewString()
	userID := uuid.NewString()
	accountID := seedAccount(store, companyID, decimal.NewFromInt(10000))
	svc := services.NewLedgerService(store, store)
	verifier := services.NewVerificationService(store)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			direction := domain.In
			if i%2 == 0 {
				direction = domain.Out
			}
			_, errs[i] = svc.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
				AccountID:   &accountID,
				Amount:      decimal.NewFromInt(int64(10 + i)),
				Direction:   direction,
				Description: fmt.Sprintf("movement %d", i),
			}, userID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	report, err := verifier.VerifyAccount(ctx, companyID, accountID)
	require.NoError(t, err)
	require.Equal(t, workers, report.EntriesReplayed)
	require.True(t, report.Balanced(services.VerificationEpsilon),
		"stored %s vs computed %s", report.StoredBalance, report.ComputedBalance)
}

// Concurrent withdrawals against a small balance: some succeed, some hit the
// overdraft guard, and the ones that fail leave no trace.
func TestCreateEntry_ConcurrentOverdraftNeverGoesNegative(t *testing.T) {
	store := newFakeStore()
	companyID := uuid.NewString()
	userID := uuid.NewString()
	accountID := seedAccount(store, companyID, decimal.NewFromInt(250))
	svc := services.NewLedgerService(store, store)
	ctx := context.Background()

	const workers = 5
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
				AccountID:   &accountID,
				Amount:      decimal.NewFromInt(100),
				Direction:   domain.Out,
				Description: fmt.Sprintf("withdrawal %d", i),
			}, userID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		}
	}
	require.Equal(t, 2, succeeded)

	acc, err := store.FindAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(50)),
		"expected 50, got %s", acc.CurrentBalance)

	// Failed attempts must not leave pending entries behind.
	for _, e := range storeEntries(store) {
		require.NotEqual(t, domain.Pending, e.Status)
	}
	require.Len(t, storeEntries(store), 2)
}

// Two amendments of the same entry racing each other: only one adjustment may
// reach the balance. The loser either re-reads the winner's state and nets to
// zero, or hits the guarded write, has its delta reversed, and surfaces a
// conflict. Either way 1200 with a 200 IN amended to 500 IN ends at 1500,
// never 1800.
func TestAmendEntry_ConcurrentAmendsAdjustBalanceOnce(t *testing.T) {
	store := newFakeStore()
	companyID := uuid.NewString()
	userID := uuid.NewString()
	accountID := seedAccount(store, companyID, decimal.NewFromInt(1000))
	svc := services.NewLedgerService(store, store)
	verifier := services.NewVerificationService(store)
	ctx := context.Background()

	entry, err := svc.CreateEntry(ctx, companyID, dto.CreateEntryRequest{
		AccountID:   &accountID,
		Amount:      decimal.NewFromInt(200),
		Direction:   domain.In,
		Description: "original deposit",
	}, userID)
	require.NoError(t, err)

	newAmount := decimal.NewFromInt(500)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AmendEntry(ctx, companyID, entry.EntryID, dto.AmendEntryRequest{
				Amount: &newAmount,
			}, userID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, apperrors.ErrConflict)
		}
	}

	acc, err := store.FindAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(1500)),
		"expected 1500, got %s", acc.CurrentBalance)

	amended, err := store.FindEntryByID(ctx, entry.EntryID)
	require.NoError(t, err)
	require.True(t, amended.Amount.Equal(newAmount))

	report, err := verifier.VerifyAccount(ctx, companyID, accountID)
	require.NoError(t, err)
	require.True(t, report.Balanced(services.VerificationEpsilon),
		"stored %s vs computed %s", report.StoredBalance, report.ComputedBalance)
}

func storeEntries(store *fakeStore) []domain.LedgerEntry {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(store.entries))
	for _, e := range store.entries {
		out = append(out, e)
	}
	return out
}
