package persistence

import (
	"context"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerReader implements reconciliation.LedgerReader over the
// ledger_lines table owned by the accounting core. It only ever reads.
type GormLedgerReader struct {
	db *gorm.DB
}

// NewGormLedgerReader creates a new GormLedgerReader
func NewGormLedgerReader(db *gorm.DB) *GormLedgerReader {
	return &GormLedgerReader{db: db}
}

// CandidateLines returns the account's ledger lines that do not carry
// an active match yet, oldest entry first.
func (r *GormLedgerReader) CandidateLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]reconciliation.LedgerLine, error) {
	matched := r.db.
		Model(&models.ReconciliationMatchModel{}).
		Select("ledger_line_id").
		Where("tenant_id = ? AND status = ?", tenantID, reconciliation.MatchStatusReconciled)

	var lineModels []models.LedgerLineModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Where("id NOT IN (?)", matched).
		Order("entry_date ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}

	lines := make([]reconciliation.LedgerLine, len(lineModels))
	for i := range lineModels {
		lines[i] = lineModels[i].ToDomain()
	}
	return lines, nil
}

var _ reconciliation.LedgerReader = (*GormLedgerReader)(nil)
