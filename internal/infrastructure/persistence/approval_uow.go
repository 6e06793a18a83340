package persistence

import (
	"context"

	"github.com/erp/fincore/internal/domain/approval"
	"gorm.io/gorm"
)

// GormApprovalUnitOfWork implements approval.UnitOfWork on top of a
// GORM transaction. Every repository handed to the callback shares the
// same transaction, so row locks taken through them hold until commit.
type GormApprovalUnitOfWork struct {
	db *gorm.DB
}

// NewGormApprovalUnitOfWork creates a new GormApprovalUnitOfWork
func NewGormApprovalUnitOfWork(db *gorm.DB) *GormApprovalUnitOfWork {
	return &GormApprovalUnitOfWork{db: db}
}

// Execute runs fn inside a database transaction with transaction-bound
// repositories. An error from fn rolls the whole unit back.
func (u *GormApprovalUnitOfWork) Execute(ctx context.Context, fn func(repos approval.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(approval.Repositories{
			Requests: NewGormApprovalRequestRepository(tx),
			History:  NewGormApprovalHistoryRepository(tx),
			Legacy:   NewGormLegacyExpenseRepository(tx),
		})
	})
}

var _ approval.UnitOfWork = (*GormApprovalUnitOfWork)(nil)
