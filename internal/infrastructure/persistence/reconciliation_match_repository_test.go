package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockMatchRepository creates a GormReconciliationMatchRepository with a mocked SQL connection
func newMockMatchRepository(t *testing.T) (*GormReconciliationMatchRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormReconciliationMatchRepository(gormDB), mock, mockDB
}

func testMatch(tenantID uuid.UUID) *reconciliation.Match {
	return reconciliation.NewMatch(
		tenantID,
		uuid.New(),
		uuid.New(),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1500),
		"stmt-2024-03",
		uuid.New(),
		time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	)
}

func TestGormReconciliationMatchRepository_Create(t *testing.T) {
	t.Run("inserts match", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), testMatch(uuid.New()))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate active match to already exists", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnError(gorm.ErrDuplicatedKey)
		mock.ExpectRollback()

		match := testMatch(uuid.New())
		err := repo.Create(context.Background(), match)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrAlreadyExists.Code, domainErr.Code)
		assert.Equal(t, match.LedgerLineID, domainErr.Details["ledger_line_id"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate inside an open transaction rolls back to a savepoint only", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnError(gorm.ErrDuplicatedKey)
		mock.ExpectExec(`ROLLBACK TO SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.db.Transaction(func(tx *gorm.DB) error {
			txRepo := NewGormReconciliationMatchRepository(tx)

			err := txRepo.Create(context.Background(), testMatch(tenantID))
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, shared.ErrAlreadyExists.Code, domainErr.Code)

			// the duplicate must not poison the transaction
			return txRepo.Create(context.Background(), testMatch(tenantID))
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_Upsert(t *testing.T) {
	t.Run("replaces the active match for the ledger line", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		match := testMatch(tenantID)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "reconciliation_matches" WHERE tenant_id = \$1 AND ledger_line_id = \$2 AND status = \$3`).
			WithArgs(tenantID, match.LedgerLineID, reconciliation.MatchStatusReconciled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Upsert(context.Background(), match)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the insert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		match := testMatch(tenantID)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "reconciliation_matches"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "reconciliation_matches"`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.Upsert(context.Background(), match)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_ExistsForLedgerLine(t *testing.T) {
	t.Run("returns true when an active match exists", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		ledgerLineID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "reconciliation_matches" WHERE tenant_id = \$1 AND ledger_line_id = \$2 AND status = \$3`).
			WithArgs(tenantID, ledgerLineID, reconciliation.MatchStatusReconciled).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsForLedgerLine(context.Background(), tenantID, ledgerLineID)

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when the line is unmatched", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		ledgerLineID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "reconciliation_matches" WHERE tenant_id = \$1 AND ledger_line_id = \$2 AND status = \$3`).
			WithArgs(tenantID, ledgerLineID, reconciliation.MatchStatusReconciled).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsForLedgerLine(context.Background(), tenantID, ledgerLineID)

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_FindByID(t *testing.T) {
	t.Run("returns not found for missing match", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		matchID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "reconciliation_matches" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, matchID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		match, err := repo.FindByID(context.Background(), tenantID, matchID)

		assert.Error(t, err)
		assert.Nil(t, match)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_Delete(t *testing.T) {
	t.Run("hard-deletes existing match", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		matchID := uuid.New()

		mock.ExpectExec(`DELETE FROM "reconciliation_matches" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, matchID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), tenantID, matchID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		matchID := uuid.New()

		mock.ExpectExec(`DELETE FROM "reconciliation_matches" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, matchID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), tenantID, matchID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_Sessions(t *testing.T) {
	t.Run("groups matches by account and statement date", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"account_id", "statement_date", "opening_balance", "closing_balance", "match_count", "last_matched_at"}).
			AddRow(accountID, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1500), decimal.NewFromInt(1800), 3, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)).
			AddRow(accountID, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1000), decimal.NewFromInt(1500), 2, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT account_id, statement_date, MAX\(opening_balance\) AS opening_balance, .* FROM "reconciliation_matches" WHERE tenant_id = \$1 GROUP BY account_id, statement_date ORDER BY statement_date DESC`).
			WithArgs(tenantID).
			WillReturnRows(rows)

		sessions, err := repo.Sessions(context.Background(), tenantID, nil)

		assert.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, 3, sessions[0].MatchCount)
		assert.True(t, sessions[0].StatementDate.After(sessions[1].StatementDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("narrows to one account when requested", func(t *testing.T) {
		repo, mock, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"account_id", "statement_date", "opening_balance", "closing_balance", "match_count", "last_matched_at"}).
			AddRow(accountID, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1000), decimal.NewFromInt(1500), 2, time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT account_id, statement_date, .* FROM "reconciliation_matches" WHERE tenant_id = \$1 AND account_id = \$2 GROUP BY account_id, statement_date ORDER BY statement_date DESC`).
			WithArgs(tenantID, accountID).
			WillReturnRows(rows)

		sessions, err := repo.Sessions(context.Background(), tenantID, &accountID)

		assert.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, accountID, sessions[0].AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormReconciliationMatchRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements MatchRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockMatchRepository(t)
		defer mockDB.Close()

		var _ reconciliation.MatchRepository = repo
	})
}
