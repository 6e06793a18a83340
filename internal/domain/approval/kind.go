package approval

import "github.com/erp/fincore/internal/domain/shared"

// Kind identifies what kind of financial object an approval request gates.
// The set is closed; callers submitting anything outside it use KindOther.
type Kind string

const (
	KindExpense      Kind = "EXPENSE"
	KindJournalEntry Kind = "JOURNAL_ENTRY"
	KindInvoice      Kind = "INVOICE"
	KindOther        Kind = "OTHER"
)

// Valid reports whether the kind is one of the closed set
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindJournalEntry, KindInvoice, KindOther:
		return true
	}
	return false
}

// String returns the kind as a string
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", shared.NewDomainError("VALIDATION_ERROR", "Unknown approval kind: "+s)
	}
	return k, nil
}
