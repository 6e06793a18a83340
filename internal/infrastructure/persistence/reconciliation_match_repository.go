package persistence

import (
	"context"
	"errors"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReconciliationMatchRepository implements reconciliation.MatchRepository using GORM
type GormReconciliationMatchRepository struct {
	db *gorm.DB
}

// NewGormReconciliationMatchRepository creates a new GormReconciliationMatchRepository
func NewGormReconciliationMatchRepository(db *gorm.DB) *GormReconciliationMatchRepository {
	return &GormReconciliationMatchRepository{db: db}
}

// Upsert creates the match or replaces the active record for the same
// ledger line. The delete and insert run in one transaction so the
// ledger line never appears unmatched in between.
func (r *GormReconciliationMatchRepository) Upsert(ctx context.Context, match *reconciliation.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("tenant_id = ? AND ledger_line_id = ? AND status = ?",
				match.TenantID, match.LedgerLineID, reconciliation.MatchStatusReconciled).
			Delete(&models.ReconciliationMatchModel{}).Error; err != nil {
			return err
		}
		return tx.Create(models.ReconciliationMatchModelFromDomain(match)).Error
	})
}

// Create inserts a match. The partial unique index on active matches
// turns a concurrent duplicate into ALREADY_EXISTS. The insert runs in
// its own transaction scope: when the repository already sits inside an
// open transaction GORM demotes this to a savepoint, so a unique
// violation aborts only this insert and the surrounding batch can keep
// inserting the remaining lines.
func (r *GormReconciliationMatchRepository) Create(ctx context.Context, match *reconciliation.Match) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(models.ReconciliationMatchModelFromDomain(match)).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainErrorWithDetails(
			shared.ErrAlreadyExists.Code,
			"Ledger line already carries an active match",
			map[string]any{"ledger_line_id": match.LedgerLineID},
		)
	}
	return err
}

// ExistsForLedgerLine reports whether the ledger line already carries
// an active match.
func (r *GormReconciliationMatchRepository) ExistsForLedgerLine(ctx context.Context, tenantID, ledgerLineID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReconciliationMatchModel{}).
		Where("tenant_id = ? AND ledger_line_id = ? AND status = ?",
			tenantID, ledgerLineID, reconciliation.MatchStatusReconciled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID finds a match by ID within a tenant
func (r *GormReconciliationMatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*reconciliation.Match, error) {
	var model models.ReconciliationMatchModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete hard-deletes the match so its ledger line becomes matchable again
func (r *GormReconciliationMatchRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ReconciliationMatchModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Sessions lists past reconciliation runs grouped by account and
// statement date, newest first.
func (r *GormReconciliationMatchRepository) Sessions(ctx context.Context, tenantID uuid.UUID, accountID *uuid.UUID) ([]reconciliation.Session, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReconciliationMatchModel{}).
		Select("account_id, statement_date, MAX(opening_balance) AS opening_balance, MAX(closing_balance) AS closing_balance, COUNT(*) AS match_count, MAX(matched_at) AS last_matched_at").
		Where("tenant_id = ?", tenantID)
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}

	var sessions []reconciliation.Session
	if err := query.
		Group("account_id, statement_date").
		Order("statement_date DESC").
		Scan(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

var _ reconciliation.MatchRepository = (*GormReconciliationMatchRepository)(nil)
