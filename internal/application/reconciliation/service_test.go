package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchRepo struct {
	matches map[uuid.UUID]reconciliation.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[uuid.UUID]reconciliation.Match)}
}

func (f *fakeMatchRepo) Upsert(ctx context.Context, match *reconciliation.Match) error {
	for id, existing := range f.matches {
		if existing.TenantID == match.TenantID && existing.LedgerLineID == match.LedgerLineID {
			delete(f.matches, id)
		}
	}
	f.matches[match.ID] = *match
	return nil
}

func (f *fakeMatchRepo) Create(ctx context.Context, match *reconciliation.Match) error {
	for _, existing := range f.matches {
		if existing.TenantID == match.TenantID && existing.LedgerLineID == match.LedgerLineID {
			return shared.ErrAlreadyExists
		}
	}
	f.matches[match.ID] = *match
	return nil
}

func (f *fakeMatchRepo) ExistsForLedgerLine(ctx context.Context, tenantID, ledgerLineID uuid.UUID) (bool, error) {
	for _, existing := range f.matches {
		if existing.TenantID == tenantID && existing.LedgerLineID == ledgerLineID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMatchRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*reconciliation.Match, error) {
	m, ok := f.matches[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := m
	return &copied, nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	m, ok := f.matches[id]
	if !ok || m.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(f.matches, id)
	return nil
}

func (f *fakeMatchRepo) Sessions(ctx context.Context, tenantID uuid.UUID, accountID *uuid.UUID) ([]reconciliation.Session, error) {
	grouped := make(map[string]*reconciliation.Session)
	for _, m := range f.matches {
		if m.TenantID != tenantID {
			continue
		}
		if accountID != nil && m.AccountID != *accountID {
			continue
		}
		key := m.AccountID.String() + m.StatementDate.Format("2006-01-02")
		s, ok := grouped[key]
		if !ok {
			s = &reconciliation.Session{
				AccountID:      m.AccountID,
				StatementDate:  m.StatementDate,
				OpeningBalance: m.OpeningBalance,
				ClosingBalance: m.ClosingBalance,
			}
			grouped[key] = s
		}
		s.MatchCount++
		if m.MatchedAt.After(s.LastMatchedAt) {
			s.LastMatchedAt = m.MatchedAt
		}
	}
	out := make([]reconciliation.Session, 0, len(grouped))
	for _, s := range grouped {
		out = append(out, *s)
	}
	return out, nil
}

type fakeStoreUOW struct {
	matches reconciliation.MatchRepository
}

func (f *fakeStoreUOW) Execute(ctx context.Context, fn func(matches reconciliation.MatchRepository) error) error {
	return fn(f.matches)
}

type fakeLedgerReader struct {
	lines map[uuid.UUID][]reconciliation.LedgerLine
}

func (f *fakeLedgerReader) CandidateLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]reconciliation.LedgerLine, error) {
	return f.lines[accountID], nil
}

type storeFixture struct {
	service  *Service
	repo     *fakeMatchRepo
	ledger   *fakeLedgerReader
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	repo := newFakeMatchRepo()
	ledger := &fakeLedgerReader{lines: make(map[uuid.UUID][]reconciliation.LedgerLine)}
	return &storeFixture{
		service:  NewService(&fakeStoreUOW{matches: repo}, repo, ledger),
		repo:     repo,
		ledger:   ledger,
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAutoMatchProposesWithoutPersisting(t *testing.T) {
	f := newStoreFixture(t)
	accountID := uuid.New()
	statementDay := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	bankAmount := amount("120.00")

	f.ledger.lines[accountID] = []reconciliation.LedgerLine{
		{ID: uuid.New(), Date: statementDay, Debit: amount("120.00"), Reference: "INV-9"},
	}

	result, err := f.service.AutoMatch(context.Background(), f.tenantID, AutoMatchInput{
		AccountID: accountID,
		Transactions: []reconciliation.BankTransaction{
			{ID: "b1", Date: statementDay, Amount: &bankAmount, Reference: "INV-9"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Empty(t, f.repo.matches)
}

func TestAutoMatchRequiresAccount(t *testing.T) {
	f := newStoreFixture(t)
	_, err := f.service.AutoMatch(context.Background(), f.tenantID, AutoMatchInput{})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestPersistSingleUpsertReplaces(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	lineID := uuid.New()

	first, err := f.service.PersistSingle(ctx, f.tenantID, f.userID, PersistInput{
		AccountID:     accountID,
		LedgerLineID:  lineID,
		StatementDate: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		BankReference: "stmt-1",
	})
	require.NoError(t, err)

	second, err := f.service.PersistSingle(ctx, f.tenantID, f.userID, PersistInput{
		AccountID:     accountID,
		LedgerLineID:  lineID,
		StatementDate: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		BankReference: "stmt-2",
	})
	require.NoError(t, err)

	// only the replacement survives
	require.Len(t, f.repo.matches, 1)
	assert.NotEqual(t, first.ID, second.ID)
	stored := f.repo.matches[second.ID]
	assert.Equal(t, "stmt-2", stored.BankReference)
}

func TestPersistBatchPartialFailure(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	reconciled := uuid.New()
	lineA := uuid.New()
	lineB := uuid.New()

	// one line is already reconciled before the batch runs
	_, err := f.service.PersistSingle(ctx, f.tenantID, f.userID, PersistInput{
		AccountID:    accountID,
		LedgerLineID: reconciled,
	})
	require.NoError(t, err)

	result, err := f.service.PersistBatch(ctx, f.tenantID, f.userID, BatchInput{
		AccountID:      accountID,
		StatementDate:  time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		OpeningBalance: amount("1000.00"),
		ClosingBalance: amount("1250.00"),
		Items: []BatchItem{
			{LedgerLineID: lineA, BankReference: "b1"},
			{LedgerLineID: reconciled, BankReference: "b2"},
			{LedgerLineID: lineB, BankReference: "b3"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ReconciledCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, reconciled, result.Errors[0].LedgerLineID)
	assert.Equal(t, "Already reconciled", result.Errors[0].Message)

	// the two clean lines committed despite the failed item
	require.Len(t, f.repo.matches, 3)
}

func TestPersistBatchValidation(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	_, err := f.service.PersistBatch(ctx, f.tenantID, f.userID, BatchInput{
		AccountID: uuid.New(),
	})
	require.Error(t, err)

	_, err = f.service.PersistBatch(ctx, f.tenantID, f.userID, BatchInput{
		Items: []BatchItem{{LedgerLineID: uuid.New()}},
	})
	require.Error(t, err)
}

func TestUnmatchMakesLineMatchableAgain(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	lineID := uuid.New()

	view, err := f.service.PersistSingle(ctx, f.tenantID, f.userID, PersistInput{
		AccountID:    accountID,
		LedgerLineID: lineID,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Unmatch(ctx, f.tenantID, view.ID))

	exists, err := f.repo.ExistsForLedgerLine(ctx, f.tenantID, lineID)
	require.NoError(t, err)
	assert.False(t, exists)

	result, err := f.service.PersistBatch(ctx, f.tenantID, f.userID, BatchInput{
		AccountID: accountID,
		Items:     []BatchItem{{LedgerLineID: lineID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ReconciledCount)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestUnmatchUnknownMatch(t *testing.T) {
	f := newStoreFixture(t)
	err := f.service.Unmatch(context.Background(), f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHistoryGroupsByAccountAndStatementDate(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	accountID := uuid.New()
	otherAccount := uuid.New()
	statementDate := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)

	_, err := f.service.PersistBatch(ctx, f.tenantID, f.userID, BatchInput{
		AccountID:     accountID,
		StatementDate: statementDate,
		Items: []BatchItem{
			{LedgerLineID: uuid.New()},
			{LedgerLineID: uuid.New()},
		},
	})
	require.NoError(t, err)

	_, err = f.service.PersistSingle(ctx, f.tenantID, f.userID, PersistInput{
		AccountID:     otherAccount,
		LedgerLineID:  uuid.New(),
		StatementDate: statementDate,
	})
	require.NoError(t, err)

	all, err := f.service.History(ctx, f.tenantID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := f.service.History(ctx, f.tenantID, &accountID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, 2, scoped[0].MatchCount)
}
