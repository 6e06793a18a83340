package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LegacyStatus is the status field carried by legacy expense rows
type LegacyStatus string

const (
	LegacyStatusAwaiting LegacyStatus = "PENDING"
	LegacyStatusApproved LegacyStatus = "APPROVED"
	LegacyStatusRejected LegacyStatus = "REJECTED"
)

// LegacyItem is a read projection of a legacy expense record that
// carries its own approval status instead of an approval request.
type LegacyItem struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Reference   string
	Description string
	Amount      decimal.Decimal
	RequesterID uuid.UUID
	Status      LegacyStatus
	SubmittedAt *time.Time
	ReviewerID  *uuid.UUID
	DecidedAt   *time.Time
}

// LegacyApprovableStore adapts the independently-owned expense table so
// the engine sees the same find/decide shape as approval requests.
// Expenses predate the approval workflow; they keep their own status
// field and never produce history entries.
type LegacyApprovableStore interface {
	// FindAwaiting returns the legacy record when it exists and is
	// awaiting approval, nil otherwise.
	FindAwaiting(ctx context.Context, tenantID, id uuid.UUID) (*LegacyItem, error)
	Approve(ctx context.Context, tenantID, id, reviewerID uuid.UUID, decidedAt time.Time) error
	Reject(ctx context.Context, tenantID, id, reviewerID uuid.UUID, comments string, decidedAt time.Time) error
	ListAwaiting(ctx context.Context, tenantID uuid.UUID) ([]LegacyItem, error)
	ListDecided(ctx context.Context, tenantID uuid.UUID) ([]LegacyItem, error)
}
