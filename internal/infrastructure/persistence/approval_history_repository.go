package persistence

import (
	"context"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalHistoryRepository implements approval.HistoryRepository using GORM
type GormApprovalHistoryRepository struct {
	db *gorm.DB
}

// NewGormApprovalHistoryRepository creates a new GormApprovalHistoryRepository
func NewGormApprovalHistoryRepository(db *gorm.DB) *GormApprovalHistoryRepository {
	return &GormApprovalHistoryRepository{db: db}
}

// Append records one decision. History rows are append-only.
func (r *GormApprovalHistoryRepository) Append(ctx context.Context, entry *approval.HistoryEntry) error {
	model := &models.ApprovalHistoryModel{}
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByApprovalID lists the decision trail for one approval request,
// ordered by level then decision time.
func (r *GormApprovalHistoryRepository) FindByApprovalID(ctx context.Context, tenantID, approvalID uuid.UUID) ([]approval.HistoryEntry, error) {
	var historyModels []models.ApprovalHistoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND approval_id = ?", tenantID, approvalID).
		Order("level ASC, decided_at ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}
	entries := make([]approval.HistoryEntry, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries, nil
}

var _ approval.HistoryRepository = (*GormApprovalHistoryRepository)(nil)
