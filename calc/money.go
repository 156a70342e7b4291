package calc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount with decimal-safe arithmetic
// =============================================================================

// Money is an amount in a single currency (BRL everywhere in this system).
// The zero value is R$ 0,00. Arithmetic carries full decimal precision;
// callers round with RoundCents at component boundaries only, so chained
// operations never accumulate drift.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value decimal.Decimal) Money { return Money{Value: value} }

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MoneyFromFloat is a convenience for tests and CLI defaults. Production
// inputs arrive as decimal strings and must use MoneyFromString.
func MoneyFromFloat(f float64) Money { return Money{Value: decimal.NewFromFloat(f)} }

func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                     { return Money{Value: m.Value.Abs()} }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool       { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool          { return m.Value.LessThan(o.Value) }

// Min returns the smaller of two amounts.
func (m Money) Min(o Money) Money {
	if o.LessThan(m) {
		return o
	}
	return m
}

// RoundCents applies the canonical rounding policy: half-up to 2 decimal
// places. decimal.Round rounds half away from zero, which is half-up for
// the non-negative amounts produced by the engines; for signed residuals
// (overpayment) it stays symmetric, which is what a credit balance needs.
func (m Money) RoundCents() Money { return Money{Value: m.Value.Round(2)} }

// String renders with exactly two decimal places ("1234.56").
func (m Money) String() string { return m.Value.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Value = d
	return nil
}

// =============================================================================
// RATE CONVERSIONS
// =============================================================================

var hundred = decimal.NewFromInt(100)
var thirty = decimal.NewFromInt(30)

// Percent converts a percentage figure (e.g. "2" for 2%) into a decimal
// multiplier (0.02).
func Percent(rate decimal.Decimal) decimal.Decimal { return rate.Div(hundred) }

// Months30 converts a whole-day count into 30-day-month units for rate
// application. This is the legal-practice convention used by every engine,
// not a banking day-count standard.
func Months30(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Div(thirty)
}

// ParseFraction parses either a plain decimal ("0.1667") or a ratio
// ("1/6") into a decimal fraction.
func ParseFraction(s string) (decimal.Decimal, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := decimal.NewFromString(strings.TrimSpace(num))
		d, errD := decimal.NewFromString(strings.TrimSpace(den))
		if errN != nil || errD != nil || d.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("invalid fraction %q", s)
		}
		return n.Div(d), nil
	}
	f, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid fraction %q", s)
	}
	return f, nil
}
