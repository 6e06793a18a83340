package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockApprovalRequestRepository creates a GormApprovalRequestRepository with a mocked SQL connection
func newMockApprovalRequestRepository(t *testing.T) (*GormApprovalRequestRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormApprovalRequestRepository(gormDB), mock, mockDB
}

func approvalRequestColumns() []string {
	return []string{"id", "tenant_id", "kind", "target_id", "reference", "description", "amount", "requester_id", "current_level", "total_levels", "status"}
}

func TestGormApprovalRequestRepository_FindByID(t *testing.T) {
	t.Run("finds request within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows(approvalRequestColumns()).
			AddRow(requestID, tenantID, "EXPENSE", uuid.New(), "EXP-001", "Team offsite", decimal.NewFromInt(120), uuid.New(), 1, 2, "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "approval_requests" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, requestID, 1).
			WillReturnRows(rows)

		request, err := repo.FindByID(context.Background(), tenantID, requestID)

		assert.NoError(t, err)
		assert.NotNil(t, request)
		assert.Equal(t, requestID, request.ID)
		assert.Equal(t, approval.KindExpense, request.Kind)
		assert.Equal(t, approval.StatusPending, request.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing request", func(t *testing.T) {
		repo, mock, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "approval_requests" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, requestID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		request, err := repo.FindByID(context.Background(), tenantID, requestID)

		assert.Error(t, err)
		assert.Nil(t, request)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormApprovalRequestRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the request row", func(t *testing.T) {
		repo, mock, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows(approvalRequestColumns()).
			AddRow(requestID, tenantID, "INVOICE", uuid.New(), "INV-042", "Supplier invoice", decimal.NewFromInt(900), uuid.New(), 2, 3, "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "approval_requests" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, requestID, 1).
			WillReturnRows(rows)

		request, err := repo.FindByIDForUpdate(context.Background(), tenantID, requestID)

		assert.NoError(t, err)
		assert.NotNil(t, request)
		assert.Equal(t, 2, request.CurrentLevel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormApprovalRequestRepository_FindPending(t *testing.T) {
	t.Run("lists pending requests oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows(approvalRequestColumns()).
			AddRow(uuid.New(), tenantID, "EXPENSE", uuid.New(), "EXP-001", "", decimal.NewFromInt(10), uuid.New(), 1, 1, "PENDING").
			AddRow(uuid.New(), tenantID, "OTHER", uuid.New(), "REQ-002", "", decimal.NewFromInt(20), uuid.New(), 1, 2, "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "approval_requests" WHERE tenant_id = \$1 AND status = \$2 ORDER BY created_at ASC`).
			WithArgs(tenantID, approval.StatusPending).
			WillReturnRows(rows)

		requests, err := repo.FindPending(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Len(t, requests, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormApprovalRequestRepository_FindFinalized(t *testing.T) {
	t.Run("lists finalized requests newest decision first", func(t *testing.T) {
		repo, mock, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows(approvalRequestColumns()).
			AddRow(uuid.New(), tenantID, "EXPENSE", uuid.New(), "EXP-001", "", decimal.NewFromInt(10), uuid.New(), 1, 1, "APPROVED").
			AddRow(uuid.New(), tenantID, "EXPENSE", uuid.New(), "EXP-002", "", decimal.NewFromInt(20), uuid.New(), 1, 1, "REJECTED")

		mock.ExpectQuery(`SELECT \* FROM "approval_requests" WHERE tenant_id = \$1 AND status <> \$2 ORDER BY reviewed_at DESC`).
			WithArgs(tenantID, approval.StatusPending).
			WillReturnRows(rows)

		requests, err := repo.FindFinalized(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Len(t, requests, 2)
		assert.Equal(t, approval.StatusApproved, requests[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormApprovalRequestRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements RequestRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockApprovalRequestRepository(t)
		defer mockDB.Close()

		var _ approval.RequestRepository = repo
	})
}
