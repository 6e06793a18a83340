package approval

import (
	"context"

	"github.com/google/uuid"
)

// RequestRepository persists approval requests
type RequestRepository interface {
	Save(ctx context.Context, request *Request) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Request, error)
	// FindByIDForUpdate loads the request under a pessimistic row lock.
	// Must be called inside a unit of work.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Request, error)
	FindPending(ctx context.Context, tenantID uuid.UUID) ([]Request, error)
	// FindFinalized returns finalized requests sorted by reviewed_at descending
	FindFinalized(ctx context.Context, tenantID uuid.UUID) ([]Request, error)
}

// HistoryRepository persists the append-only decision trail
type HistoryRepository interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	FindByApprovalID(ctx context.Context, tenantID, approvalID uuid.UUID) ([]HistoryEntry, error)
}

// Repositories bundles the transaction-bound repositories handed to a
// unit of work callback.
type Repositories struct {
	Requests RequestRepository
	History  HistoryRepository
	Legacy   LegacyApprovableStore
}

// UnitOfWork runs a callback with repositories bound to one database
// transaction. Any error returned by the callback rolls the whole unit
// back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
