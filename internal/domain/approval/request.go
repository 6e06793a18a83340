package approval

import (
	"time"

	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an approval request
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether the status permits no further mutation
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Request is a multi-level approval request gating a financial action.
// It is created pending at level 1 and advances one level per approval
// until the final level finalizes it. Terminal requests are immutable.
type Request struct {
	shared.TenantAggregateRoot
	Kind         Kind
	TargetID     uuid.UUID
	Reference    string
	Description  string
	Amount       decimal.Decimal
	RequesterID  uuid.UUID
	CurrentLevel int
	TotalLevels  int
	Status       Status
	Metadata     map[string]string
	ReviewerID   *uuid.UUID
	ReviewedAt   *time.Time
}

// NewRequest creates a pending approval request at level 1
func NewRequest(tenantID uuid.UUID, kind Kind, targetID uuid.UUID, reference, description string, amount decimal.Decimal, requesterID uuid.UUID, totalLevels int) (*Request, error) {
	if !kind.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown approval kind: "+kind.String())
	}
	if totalLevels < 1 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Total levels must be at least 1")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Amount cannot be negative")
	}

	return &Request{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, requesterID),
		Kind:                kind,
		TargetID:            targetID,
		Reference:           reference,
		Description:         description,
		Amount:              amount,
		RequesterID:         requesterID,
		CurrentLevel:        1,
		TotalLevels:         totalLevels,
		Status:              StatusPending,
		Metadata:            map[string]string{},
	}, nil
}

// IsPending reports whether the request still accepts decisions
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// IsFinalLevel reports whether the next approval finalizes the request
func (r *Request) IsFinalLevel() bool {
	return r.CurrentLevel == r.TotalLevels
}

// Advance moves a pending request one level up. The request must not
// be at its final level; finalizing is done through Finalize.
func (r *Request) Advance() error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if r.IsFinalLevel() {
		return shared.NewDomainError("INVALID_STATE", "Request is at its final level")
	}
	r.CurrentLevel++
	r.UpdatedAt = time.Now()
	return nil
}

// Finalize approves the request at its final level
func (r *Request) Finalize(reviewerID uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if !r.IsFinalLevel() {
		return shared.NewDomainError("INVALID_STATE", "Request is not at its final level")
	}
	r.Status = StatusApproved
	r.ReviewerID = &reviewerID
	r.ReviewedAt = &at
	r.UpdatedAt = at
	return nil
}

// Reject finalizes the request as rejected. Rejection is final from
// any level.
func (r *Request) Reject(reviewerID uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	r.Status = StatusRejected
	r.ReviewerID = &reviewerID
	r.ReviewedAt = &at
	r.UpdatedAt = at
	return nil
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (r *Request) Cancel(actorID uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if actorID != r.RequesterID {
		return shared.ErrForbidden
	}
	r.Status = StatusCancelled
	r.ReviewedAt = &at
	r.UpdatedAt = at
	return nil
}
