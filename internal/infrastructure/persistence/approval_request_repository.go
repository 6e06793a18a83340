package persistence

import (
	"context"
	"errors"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApprovalRequestRepository implements approval.RequestRepository using GORM
type GormApprovalRequestRepository struct {
	db *gorm.DB
}

// NewGormApprovalRequestRepository creates a new GormApprovalRequestRepository
func NewGormApprovalRequestRepository(db *gorm.DB) *GormApprovalRequestRepository {
	return &GormApprovalRequestRepository{db: db}
}

// Save creates or updates an approval request
func (r *GormApprovalRequestRepository) Save(ctx context.Context, request *approval.Request) error {
	model := models.ApprovalRequestModelFromDomain(request)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an approval request by ID within a tenant
func (r *GormApprovalRequestRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*approval.Request, error) {
	var model models.ApprovalRequestModel
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

// FindByIDForUpdate loads the request row with a FOR UPDATE lock so
// concurrent reviewers serialize on the same request.
func (r *GormApprovalRequestRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*approval.Request, error) {
	var model models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPending lists a tenant's pending approval requests, oldest first
func (r *GormApprovalRequestRepository) FindPending(ctx context.Context, tenantID uuid.UUID) ([]approval.Request, error) {
	var requestModels []models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, approval.StatusPending).
		Order("created_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]approval.Request, len(requestModels))
	for i := range requestModels {
		requests[i] = *requestModels[i].ToDomain()
	}
	return requests, nil
}

// FindFinalized lists a tenant's terminal approval requests
func (r *GormApprovalRequestRepository) FindFinalized(ctx context.Context, tenantID uuid.UUID) ([]approval.Request, error) {
	var requestModels []models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status <> ?", tenantID, approval.StatusPending).
		Order("reviewed_at DESC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]approval.Request, len(requestModels))
	for i := range requestModels {
		requests[i] = *requestModels[i].ToDomain()
	}
	return requests, nil
}

var _ approval.RequestRepository = (*GormApprovalRequestRepository)(nil)
