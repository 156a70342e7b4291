package calc

import (
	"testing"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROUNDING TESTS
// =============================================================================

func TestRoundCents_HalfUp(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10.004", "10.00"},
		{"10.005", "10.01"}, // exact half rounds up
		{"10.006", "10.01"},
		{"206.6666666", "206.67"},
		{"0.125", "0.13"},
		{"100", "100.00"},
	}
	for _, tt := range tests {
		m, err := MoneyFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := m.RoundCents().String(); got != tt.want {
			t.Errorf("RoundCents(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRoundCents_NegativeCredit(t *testing.T) {
	// Signed residuals keep symmetric rounding.
	m, _ := MoneyFromString("-10.005")
	if got := m.RoundCents().String(); got != "-10.01" {
		t.Errorf("got %s, want -10.01", got)
	}
}

func TestMoney_StringAlwaysTwoPlaces(t *testing.T) {
	m, _ := MoneyFromString("5")
	if m.String() != "5.00" {
		t.Errorf("got %s", m.String())
	}
}

func TestMoney_ArithmeticKeepsPrecision(t *testing.T) {
	// GIVEN: a chain of unrounded operations
	// THEN: only the final RoundCents call loses precision
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	m := NewMoney(decimal.NewFromInt(100)).Mul(third).Mul(decimal.NewFromInt(3))
	if got := m.RoundCents().String(); got != "100.00" {
		t.Errorf("got %s, want 100.00", got)
	}
}

// =============================================================================
// RATE CONVERSION TESTS
// =============================================================================

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewFromInt(2)); !got.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("Percent(2) = %s", got)
	}
}

func TestMonths30(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{30, "1"},
		{60, "2"},
		{15, "0.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := Months30(tt.days); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Months30(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "0.5"},
		{"1/2", "0.5"},
		{"1/6", decimal.NewFromInt(1).Div(decimal.NewFromInt(6)).String()},
		{" 2 / 5 ", "0.4"},
	}
	for _, tt := range tests {
		got, err := ParseFraction(tt.in)
		if err != nil {
			t.Fatalf("ParseFraction(%q): %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseFraction(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "1/0", "a/b", "x"} {
		if _, err := ParseFraction(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
