package persistence

import (
	"context"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"gorm.io/gorm"
)

// GormStoreUnitOfWork implements reconciliation.StoreUnitOfWork on top
// of a GORM transaction. Batch persistence uses it so a statement's
// matches commit or roll back together.
type GormStoreUnitOfWork struct {
	db *gorm.DB
}

// NewGormStoreUnitOfWork creates a new GormStoreUnitOfWork
func NewGormStoreUnitOfWork(db *gorm.DB) *GormStoreUnitOfWork {
	return &GormStoreUnitOfWork{db: db}
}

// Execute runs fn inside a database transaction with a
// transaction-bound match repository.
func (u *GormStoreUnitOfWork) Execute(ctx context.Context, fn func(matches reconciliation.MatchRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormReconciliationMatchRepository(tx))
	})
}

var _ reconciliation.StoreUnitOfWork = (*GormStoreUnitOfWork)(nil)
