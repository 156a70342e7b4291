/*
index.go - Monetary-correction index contract

PURPOSE:
  Correction indexes (IPCA, IGP-M, SELIC, INPC) are external data sources.
  The engines only consume a cumulative multiplicative factor between two
  dates; where the factor comes from is the caller's problem. This file
  defines the lookup contract plus two providers:
  - StaticTable: in-memory factors (tests, CLI case files)
  - Unity: factor 1 everywhere (calculations without correction)

CONVENTION:
  Factors are stored per (index, calendar month). The cumulative factor
  between two dates is the product of the monthly factors for every month
  STRICTLY AFTER the start date's month, through the end date's month.
  Two dates in the same month therefore yield exactly 1, which keeps the
  zero-interval identity (total == principal) without special cases.

  A missing month inside the range is a LookupError, never a silent 1.

SEE ALSO:
  - store/sqlite: database-backed FactorProvider
  - errors.go: LookupError
*/
package calc

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INDEX CODES
// =============================================================================

// IndexCode identifies a monetary-correction index.
type IndexCode string

const (
	IndexNone  IndexCode = ""      // no correction (factor 1, no lookup)
	IndexIPCA  IndexCode = "ipca"
	IndexIGPM  IndexCode = "igpm"
	IndexSELIC IndexCode = "selic"
	IndexINPC  IndexCode = "inpc"
)

// KnownIndexes lists the supported correction indexes.
func KnownIndexes() []IndexCode {
	return []IndexCode{IndexIPCA, IndexIGPM, IndexSELIC, IndexINPC}
}

// Valid reports whether the code is IndexNone or a known index.
func (c IndexCode) Valid() bool {
	if c == IndexNone {
		return true
	}
	for _, k := range KnownIndexes() {
		if c == k {
			return true
		}
	}
	return false
}

// =============================================================================
// FACTOR PROVIDER - External correction-factor lookup
// =============================================================================

// FactorProvider supplies cumulative correction factors. Implementations
// must be deterministic for a given (code, from, to).
type FactorProvider interface {
	// Factor returns the multiplicative correction factor from `from` to
	// `to`. Returns a LookupError if any month in the range is missing.
	Factor(code IndexCode, from, to Date) (decimal.Decimal, error)
}

// CumulativeFactor folds monthly factors into a cumulative one, using the
// month convention documented above. lookup returns (factor, ok) for a
// YYYY-MM key. Shared by every provider so the convention cannot drift.
func CumulativeFactor(code IndexCode, from, to Date, lookup func(month string) (decimal.Decimal, bool)) (decimal.Decimal, error) {
	factor := decimal.NewFromInt(1)
	if code == IndexNone || !from.Before(to) {
		return factor, nil
	}
	cursor := NewDate(from.Year(), from.Month(), 1).AddMonths(1)
	last := NewDate(to.Year(), to.Month(), 1)
	for cursor.BeforeOrEqual(last) {
		monthly, ok := lookup(cursor.MonthKey())
		if !ok {
			return decimal.Decimal{}, &LookupError{Index: code, Month: cursor.MonthKey()}
		}
		factor = factor.Mul(monthly)
		cursor = cursor.AddMonths(1)
	}
	return factor, nil
}

// =============================================================================
// PROVIDERS
// =============================================================================

// StaticTable is an in-memory FactorProvider.
type StaticTable struct {
	factors map[IndexCode]map[string]decimal.Decimal
}

func NewStaticTable() *StaticTable {
	return &StaticTable{factors: make(map[IndexCode]map[string]decimal.Decimal)}
}

// Set registers the monthly factor for (code, YYYY-MM).
func (s *StaticTable) Set(code IndexCode, month string, factor decimal.Decimal) {
	if s.factors[code] == nil {
		s.factors[code] = make(map[string]decimal.Decimal)
	}
	s.factors[code][month] = factor
}

func (s *StaticTable) Factor(code IndexCode, from, to Date) (decimal.Decimal, error) {
	return CumulativeFactor(code, from, to, func(month string) (decimal.Decimal, bool) {
		f, ok := s.factors[code][month]
		return f, ok
	})
}

// Unity is a FactorProvider that always returns 1. Used when a calculation
// carries no correction index.
type Unity struct{}

func (Unity) Factor(code IndexCode, from, to Date) (decimal.Decimal, error) {
	return decimal.NewFromInt(1), nil
}
