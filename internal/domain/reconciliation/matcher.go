package reconciliation

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MatchType buckets a confidence score
type MatchType string

const (
	MatchTypeExact            MatchType = "exact"
	MatchTypeHighConfidence   MatchType = "high_confidence"
	MatchTypeMediumConfidence MatchType = "medium_confidence"
	// MatchTypeLowConfidence is unreachable given the acceptance floor
	// but kept so persisted historical data still classifies.
	MatchTypeLowConfidence MatchType = "low_confidence"
)

// acceptThreshold is the minimum score for a pair to be recorded
const acceptThreshold = 50.0

// Tolerances are the amount and day deltas within which two
// transactions are still considered a candidate match.
type Tolerances struct {
	Amount decimal.Decimal
	Days   int
}

// DefaultTolerances returns the standard matching tolerances
func DefaultTolerances() Tolerances {
	return Tolerances{
		Amount: decimal.NewFromFloat(0.01),
		Days:   3,
	}
}

// MatchPair is one accepted bank-transaction/ledger-line pairing
type MatchPair struct {
	BankTransaction BankTransaction `json:"bank_transaction"`
	LedgerLine      LedgerLine      `json:"ledger_line"`
	Confidence      float64         `json:"confidence"`
	MatchType       MatchType       `json:"match_type"`
}

// MatchResult is the full output of one matcher run
type MatchResult struct {
	Matches        []MatchPair       `json:"matches"`
	MatchedCount   int               `json:"matched_count"`
	UnmatchedCount int               `json:"unmatched_count"`
	UnmatchedBank  []BankTransaction `json:"unmatched_bank"`
}

// Matcher pairs bank statement transactions against unreconciled ledger
// lines with a deterministic fuzzy score. It is pure computation: no
// I/O, no clock reads, identical input always yields identical output.
//
// The pairing is greedy in bank-transaction input order, not a global
// optimum: once a line is consumed by an earlier transaction it is
// unavailable to later ones.
type Matcher struct {
	tolerances Tolerances
}

// NewMatcher creates a matcher with the given tolerances
func NewMatcher(tolerances Tolerances) *Matcher {
	return &Matcher{tolerances: tolerances}
}

// Match scores every bank transaction against every not-yet-consumed
// candidate line and records the best pairing when it clears the
// acceptance threshold. Candidates must be pre-filtered by the caller
// to exclude already-reconciled lines.
func (m *Matcher) Match(bankTxns []BankTransaction, candidates []LedgerLine) MatchResult {
	result := MatchResult{
		Matches:       make([]MatchPair, 0, len(bankTxns)),
		UnmatchedBank: make([]BankTransaction, 0),
	}
	consumed := make([]bool, len(candidates))

	for _, txn := range bankTxns {
		bestIdx := -1
		bestScore := 0.0

		for i, line := range candidates {
			if consumed[i] {
				continue
			}
			score := m.score(txn, line)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestScore >= acceptThreshold {
			consumed[bestIdx] = true
			result.Matches = append(result.Matches, MatchPair{
				BankTransaction: txn,
				LedgerLine:      candidates[bestIdx],
				Confidence:      math.Round(bestScore*100) / 100,
				MatchType:       classify(bestScore),
			})
		} else {
			result.UnmatchedBank = append(result.UnmatchedBank, txn)
		}
	}

	result.MatchedCount = len(result.Matches)
	result.UnmatchedCount = len(result.UnmatchedBank)
	return result
}

// score combines the four weighted components into a 0-100 value
func (m *Matcher) score(txn BankTransaction, line LedgerLine) float64 {
	score := m.amountScore(txn.EffectiveAmount(), line.EffectiveAmount())
	score += m.dateScore(txn.Date, line.Date)
	score += referenceScore(txn.Reference, line.Reference)
	score += descriptionScore(txn.Description, line.Description)
	return score
}

// amountScore awards 0-40 points by how close the amounts are: within
// tolerance, within 1% of the bank amount, within 5%, or nothing.
func (m *Matcher) amountScore(bankAmount, lineAmount decimal.Decimal) float64 {
	diff := bankAmount.Sub(lineAmount).Abs()
	switch {
	case diff.LessThanOrEqual(m.tolerances.Amount):
		return 40
	case diff.LessThanOrEqual(bankAmount.Abs().Mul(decimal.NewFromFloat(0.01))):
		return 30
	case diff.LessThanOrEqual(bankAmount.Abs().Mul(decimal.NewFromFloat(0.05))):
		return 15
	default:
		return 0
	}
}

// dateScore awards 30 points for the same calendar day, decaying by 5
// per day of distance inside the tolerance window. The literal formula
// can reach zero or below at the boundary with a wide enough window;
// that decay is applied as-is.
func (m *Matcher) dateScore(a, b time.Time) float64 {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	if ad.Equal(bd) {
		return 30
	}

	days := int(ad.Sub(bd).Hours() / 24)
	if days < 0 {
		days = -days
	}
	if days <= m.tolerances.Days {
		return float64(30 - 5*days)
	}
	return 0
}

// referenceScore awards up to 15 points by character overlap between
// the lower-cased references; empty references score nothing.
func referenceScore(bankRef, lineRef string) float64 {
	if bankRef == "" || lineRef == "" {
		return 0
	}
	ratio := charOverlapRatio(strings.ToLower(bankRef), strings.ToLower(lineRef))
	s := ratio * 15
	if s > 15 {
		s = 15
	}
	return s
}

// descriptionScore awards up to 15 points by edit-distance similarity
// of the descriptions; empty descriptions score nothing.
func descriptionScore(bankDesc, lineDesc string) float64 {
	if bankDesc == "" || lineDesc == "" {
		return 0
	}
	return (1 - normalizedEditDistance(strings.ToLower(bankDesc), strings.ToLower(lineDesc))) * 15
}

// classify buckets a score into its match type
func classify(score float64) MatchType {
	switch {
	case score >= 90:
		return MatchTypeExact
	case score >= 70:
		return MatchTypeHighConfidence
	case score >= 50:
		return MatchTypeMediumConfidence
	default:
		return MatchTypeLowConfidence
	}
}
