package approval

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the explicit identity performing an engine operation.
// It is always passed in by the caller; the engine never reads an
// ambient "current user".
type Actor struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// IsZero reports whether the actor carries no identity
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// Authority is an actor's approval ceiling: either unlimited or a
// maximum amount the actor may approve unassisted.
type Authority struct {
	Unlimited bool
	Ceiling   decimal.Decimal
}

// UnlimitedAuthority returns an authority with no ceiling
func UnlimitedAuthority() Authority {
	return Authority{Unlimited: true}
}

// LimitedAuthority returns an authority capped at the given ceiling
func LimitedAuthority(ceiling decimal.Decimal) Authority {
	return Authority{Ceiling: ceiling}
}

// Allows reports whether the authority covers the given amount
func (a Authority) Allows(amount decimal.Decimal) bool {
	if a.Unlimited {
		return true
	}
	return amount.LessThanOrEqual(a.Ceiling)
}

// AuthorityResolver resolves an actor's approval ceiling
type AuthorityResolver interface {
	Resolve(ctx context.Context, actor Actor) (Authority, error)
}
