package approval

import (
	"time"

	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
)

// HistoryAction is the decision recorded by a history entry
type HistoryAction string

const (
	ActionApproved HistoryAction = "APPROVED"
	ActionRejected HistoryAction = "REJECTED"
)

// HistoryEntry is one recorded decision on an approval request.
// Entries are append-only; they are never updated or deleted.
type HistoryEntry struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ApprovalID uuid.UUID
	Level      int
	ReviewerID uuid.UUID
	Action     HistoryAction
	Comments   string
	DecidedAt  time.Time
}

// NewHistoryEntry records a decision made at the given level
func NewHistoryEntry(tenantID, approvalID uuid.UUID, level int, reviewerID uuid.UUID, action HistoryAction, comments string, decidedAt time.Time) *HistoryEntry {
	return &HistoryEntry{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ApprovalID: approvalID,
		Level:      level,
		ReviewerID: reviewerID,
		Action:     action,
		Comments:   comments,
		DecidedAt:  decidedAt,
	}
}
