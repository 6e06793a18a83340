package authority

import (
	"context"
	"errors"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormResolver resolves approval ceilings from the approval_authorities
// table. A reviewer without a configured row has unlimited authority;
// ceilings are an opt-in restriction.
type GormResolver struct {
	db *gorm.DB
}

// NewGormResolver creates a database-backed authority resolver
func NewGormResolver(db *gorm.DB) *GormResolver {
	return &GormResolver{db: db}
}

// Resolve implements approval.AuthorityResolver
func (r *GormResolver) Resolve(ctx context.Context, actor approval.Actor) (approval.Authority, error) {
	var model models.ApprovalAuthority
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", actor.TenantID, actor.ID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approval.UnlimitedAuthority(), nil
		}
		return approval.Authority{}, err
	}

	if model.Unlimited {
		return approval.UnlimitedAuthority(), nil
	}
	return approval.LimitedAuthority(model.Ceiling), nil
}

var _ approval.AuthorityResolver = (*GormResolver)(nil)
