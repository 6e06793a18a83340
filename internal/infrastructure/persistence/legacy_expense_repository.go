package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLegacyExpenseRepository implements approval.LegacyApprovableStore
// over the pre-workflow expense_records table.
type GormLegacyExpenseRepository struct {
	db *gorm.DB
}

// NewGormLegacyExpenseRepository creates a new GormLegacyExpenseRepository
func NewGormLegacyExpenseRepository(db *gorm.DB) *GormLegacyExpenseRepository {
	return &GormLegacyExpenseRepository{db: db}
}

// FindAwaiting returns the legacy expense row when it exists and still
// awaits a decision; nil otherwise. The row is locked so the decision
// that follows cannot race another reviewer.
func (r *GormLegacyExpenseRepository) FindAwaiting(ctx context.Context, tenantID, id uuid.UUID) (*approval.LegacyItem, error) {
	var model models.LegacyExpenseModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, approval.LegacyStatusAwaiting).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Approve marks the legacy expense row approved
func (r *GormLegacyExpenseRepository) Approve(ctx context.Context, tenantID, id, reviewerID uuid.UUID, decidedAt time.Time) error {
	return r.decide(ctx, tenantID, id, map[string]any{
		"status":      approval.LegacyStatusApproved,
		"reviewed_by": reviewerID,
		"reviewed_at": decidedAt,
	})
}

// Reject marks the legacy expense row rejected
func (r *GormLegacyExpenseRepository) Reject(ctx context.Context, tenantID, id, reviewerID uuid.UUID, comments string, decidedAt time.Time) error {
	return r.decide(ctx, tenantID, id, map[string]any{
		"status":          approval.LegacyStatusRejected,
		"reviewed_by":     reviewerID,
		"reviewed_at":     decidedAt,
		"review_comments": comments,
	})
}

func (r *GormLegacyExpenseRepository) decide(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.LegacyExpenseModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, approval.LegacyStatusAwaiting).
		Updates(updates).Error
}

// ListAwaiting lists a tenant's undecided legacy expense rows, oldest first
func (r *GormLegacyExpenseRepository) ListAwaiting(ctx context.Context, tenantID uuid.UUID) ([]approval.LegacyItem, error) {
	return r.list(ctx, "tenant_id = ? AND status = ?", tenantID, approval.LegacyStatusAwaiting)
}

// ListDecided lists a tenant's decided legacy expense rows
func (r *GormLegacyExpenseRepository) ListDecided(ctx context.Context, tenantID uuid.UUID) ([]approval.LegacyItem, error) {
	return r.list(ctx, "tenant_id = ? AND status <> ?", tenantID, approval.LegacyStatusAwaiting)
}

func (r *GormLegacyExpenseRepository) list(ctx context.Context, query string, args ...any) ([]approval.LegacyItem, error) {
	var expenseModels []models.LegacyExpenseModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at ASC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	items := make([]approval.LegacyItem, len(expenseModels))
	for i := range expenseModels {
		items[i] = *expenseModels[i].ToDomain()
	}
	return items, nil
}

var _ approval.LegacyApprovableStore = (*GormLegacyExpenseRepository)(nil)
