package approval

import (
	"context"

	"github.com/google/uuid"
)

// ActionExecutor applies the side effect of a finalized approval to the
// real target. Integrators supply one method per kind, injected at
// construction time, so dispatch is checked at compile time.
type ActionExecutor interface {
	ExecuteExpense(ctx context.Context, targetID uuid.UUID) error
	ExecuteJournalEntry(ctx context.Context, targetID uuid.UUID) error
	ExecuteInvoice(ctx context.Context, targetID uuid.UUID) error
	ExecuteOther(ctx context.Context, targetID uuid.UUID) error
}

// Dispatch routes a finalized approval to the executor method for its kind
func Dispatch(ctx context.Context, exec ActionExecutor, kind Kind, targetID uuid.UUID) error {
	switch kind {
	case KindExpense:
		return exec.ExecuteExpense(ctx, targetID)
	case KindJournalEntry:
		return exec.ExecuteJournalEntry(ctx, targetID)
	case KindInvoice:
		return exec.ExecuteInvoice(ctx, targetID)
	default:
		return exec.ExecuteOther(ctx, targetID)
	}
}

// NoopExecutor performs no side effects. It is the default executor
// until integrators register real handlers.
type NoopExecutor struct{}

func (NoopExecutor) ExecuteExpense(ctx context.Context, targetID uuid.UUID) error {
	return nil
}

func (NoopExecutor) ExecuteJournalEntry(ctx context.Context, targetID uuid.UUID) error {
	return nil
}

func (NoopExecutor) ExecuteInvoice(ctx context.Context, targetID uuid.UUID) error {
	return nil
}

func (NoopExecutor) ExecuteOther(ctx context.Context, targetID uuid.UUID) error {
	return nil
}

var _ ActionExecutor = NoopExecutor{}
