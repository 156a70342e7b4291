package arrears_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/arrears"
	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) calc.Money {
	m, err := calc.MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func rate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// baseObligation: 500/month, due on the 5th, starting Jan 2024, standard
// 2% penalty and 1%/month mora.
func baseObligation() arrears.SupportObligation {
	return arrears.SupportObligation{
		MonthlyAmount: money("500.00"),
		Dependents:    1,
		DueDay:        5,
		StartDate:     calc.MustDate("2024-01-01"),
		PenaltyRate:   rate("2"),
		MoraRate:      rate("1"),
	}
}

// =============================================================================
// SCHEDULE TESTS
// =============================================================================

func TestCompute_PaidOnDueDate_NoArrears(t *testing.T) {
	// GIVEN: one installment due Jan 5, paid in full on Jan 5
	// WHEN: computing on Jan 6
	// THEN: no arrears, no penalty, no mora

	o := baseObligation()
	o.Payments = []arrears.Payment{{Date: calc.MustDate("2024-01-05"), Amount: money("500.00")}}

	result, err := arrears.Compute(o, calc.MustDate("2024-01-06"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Installments) != 1 {
		t.Fatalf("installments = %d, want 1", len(result.Installments))
	}
	if result.Installments[0].Status != arrears.InstallmentPaid {
		t.Errorf("status = %s, want paid", result.Installments[0].Status)
	}
	if got := result.Total.String(); got != "0.00" {
		t.Errorf("total = %s, want 0.00", got)
	}
}

func TestCompute_FirstInstallment_DueDayBeforeStart(t *testing.T) {
	// Start Jan 10 with due-day 5: Jan 5 already passed, so the first
	// installment is Feb 5. No proration.
	o := baseObligation()
	o.StartDate = calc.MustDate("2024-01-10")

	result, err := arrears.Compute(o, calc.MustDate("2024-02-28"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Installments) != 1 {
		t.Fatalf("installments = %d, want 1", len(result.Installments))
	}
	if got := result.Installments[0].DueDate.String(); got != "2024-02-05" {
		t.Errorf("first due date = %s, want 2024-02-05", got)
	}
	if got := result.Installments[0].Amount.String(); got != "500.00" {
		t.Errorf("first amount = %s, want the full 500.00", got)
	}
}

func TestCompute_FirstInstallment_DueDayOnOrAfterStart(t *testing.T) {
	// Start Jan 5 with due-day 5: the start day itself is the first due date.
	o := baseObligation()
	o.StartDate = calc.MustDate("2024-01-05")

	result, err := arrears.Compute(o, calc.MustDate("2024-01-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Installments[0].DueDate.String(); got != "2024-01-05" {
		t.Errorf("first due date = %s, want 2024-01-05", got)
	}
}

func TestCompute_OneInstallmentPerMonth(t *testing.T) {
	o := baseObligation()

	result, err := arrears.Compute(o, calc.MustDate("2024-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Installments) != 6 {
		t.Fatalf("installments = %d, want 6 (Jan through Jun)", len(result.Installments))
	}
	for i, row := range result.Installments {
		if row.Seq != i+1 {
			t.Errorf("installment %d has seq %d", i, row.Seq)
		}
		if row.DueDate.Day() != 5 {
			t.Errorf("installment %d due on day %d, want 5", i, row.DueDate.Day())
		}
	}
}

// =============================================================================
// RECONCILIATION TESTS
// =============================================================================

func TestCompute_PaymentsApplyOldestFirst(t *testing.T) {
	// GIVEN: Jan and Feb installments open, one 750 payment
	// THEN: Jan fully settled, Feb half settled

	o := baseObligation()
	o.Payments = []arrears.Payment{{Date: calc.MustDate("2024-02-10"), Amount: money("750.00")}}

	result, err := arrears.Compute(o, calc.MustDate("2024-02-28"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jan, feb := result.Installments[0], result.Installments[1]
	if jan.Status != arrears.InstallmentPaid || jan.Unpaid.String() != "0.00" {
		t.Errorf("jan: status %s unpaid %s, want fully paid", jan.Status, jan.Unpaid)
	}
	if feb.Status != arrears.InstallmentPartial || feb.Unpaid.String() != "250.00" {
		t.Errorf("feb: status %s unpaid %s, want partial with 250.00 open", feb.Status, feb.Unpaid)
	}
	if got := result.OverduePrincipal.RoundCents().String(); got != "250.00" {
		t.Errorf("overdue principal = %s, want 250.00", got)
	}
}

func TestCompute_SplittingAPaymentChangesNothing(t *testing.T) {
	// One 800 payment vs 500+300 on the same date must yield identical
	// results, line by line.
	asOf := calc.MustDate("2024-03-31")

	whole := baseObligation()
	whole.Payments = []arrears.Payment{{Date: calc.MustDate("2024-02-10"), Amount: money("800.00")}}

	split := baseObligation()
	split.Payments = []arrears.Payment{
		{Date: calc.MustDate("2024-02-10"), Amount: money("500.00")},
		{Date: calc.MustDate("2024-02-10"), Amount: money("300.00")},
	}

	a, err := arrears.Compute(whole, asOf)
	if err != nil {
		t.Fatalf("whole: %v", err)
	}
	b, err := arrears.Compute(split, asOf)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if a.Total.String() != b.Total.String() {
		t.Errorf("totals differ: %s vs %s", a.Total, b.Total)
	}
	if a.Report.String() != b.Report.String() {
		t.Error("reports differ between equivalent payment splits")
	}
}

func TestCompute_LatePaidInstallment_StillCharged(t *testing.T) {
	// GIVEN: Jan 5 installment paid in full 30 days late (Feb 4)
	// THEN: status is paid, but penalty 2% and one month of mora remain

	o := baseObligation()
	o.Payments = []arrears.Payment{{Date: calc.MustDate("2024-02-04"), Amount: money("500.00")}}

	result, err := arrears.Compute(o, calc.MustDate("2024-02-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jan := result.Installments[0]
	if jan.Status != arrears.InstallmentPaid {
		t.Errorf("status = %s, want paid", jan.Status)
	}
	if got := jan.Penalty.String(); got != "10.00" {
		t.Errorf("penalty = %s, want 10.00", got)
	}
	if got := jan.Mora.String(); got != "5.00" {
		t.Errorf("mora = %s, want 5.00", got)
	}
	if got := result.Total.String(); got != "15.00" {
		t.Errorf("total = %s, want 15.00 (charges only)", got)
	}
}

func TestCompute_OpenInstallment_PenaltyAndMora(t *testing.T) {
	// GIVEN: 1000/month, Jan 5 unpaid, computing 30 days later
	// THEN: penalty 20.00 once, mora 10.00 for one month

	o := baseObligation()
	o.MonthlyAmount = money("1000.00")

	result, err := arrears.Compute(o, calc.MustDate("2024-02-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jan := result.Installments[0]
	if jan.Status != arrears.InstallmentOpen {
		t.Errorf("status = %s, want open", jan.Status)
	}
	if got := jan.Penalty.String(); got != "20.00" {
		t.Errorf("penalty = %s, want 20.00", got)
	}
	if got := jan.Mora.String(); got != "10.00" {
		t.Errorf("mora = %s, want 10.00", got)
	}
	if got := result.Total.String(); got != "1030.00" {
		t.Errorf("total = %s, want 1030.00", got)
	}
}

func TestCompute_Overpayment_CreditAndNegativeTotal(t *testing.T) {
	// Payments beyond the whole schedule become a credit; the total goes
	// negative and the report shows the creditor balance.
	o := baseObligation()
	o.Payments = []arrears.Payment{{Date: calc.MustDate("2024-01-05"), Amount: money("1200.00")}}

	result, err := arrears.Compute(o, calc.MustDate("2024-01-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Credit.RoundCents().String(); got != "700.00" {
		t.Errorf("credit = %s, want 700.00", got)
	}
	if got := result.Total.String(); got != "-700.00" {
		t.Errorf("total = %s, want -700.00", got)
	}
	if !strings.Contains(result.Report.String(), "Saldo credor") {
		t.Error("report should present the creditor balance")
	}
}

// =============================================================================
// INCOME REFERENCE AND VALIDATION TESTS
// =============================================================================

func TestCompute_IncomePercent(t *testing.T) {
	o := baseObligation()
	o.IncomeReference = money("2000.00")

	result, err := arrears.Compute(o, calc.MustDate("2024-01-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.IncomePercent.String(); got != "25" {
		t.Errorf("income percent = %s, want 25", got)
	}
	if !strings.Contains(result.Report.String(), "Percentual da renda") {
		t.Error("report should carry the income percentage")
	}
}

func TestCompute_Validation(t *testing.T) {
	asOf := calc.MustDate("2024-06-30")

	tests := []struct {
		name   string
		mutate func(*arrears.SupportObligation)
		field  string
	}{
		{"non-positive amount", func(o *arrears.SupportObligation) { o.MonthlyAmount = money("0") }, "monthly_amount"},
		{"no dependents", func(o *arrears.SupportObligation) { o.Dependents = 0 }, "dependents"},
		{"ages mismatch", func(o *arrears.SupportObligation) { o.DependentAges = []int{4, 7} }, "dependent_ages"},
		{"due day out of range", func(o *arrears.SupportObligation) { o.DueDay = 31 }, "due_day"},
		{"as-of before start", func(o *arrears.SupportObligation) { o.StartDate = calc.MustDate("2025-01-01") }, "as_of"},
		{"negative mora", func(o *arrears.SupportObligation) { o.MoraRate = rate("-1") }, "mora_rate"},
		{"payment before start", func(o *arrears.SupportObligation) {
			o.Payments = []arrears.Payment{{Date: calc.MustDate("2023-12-01"), Amount: money("100.00")}}
		}, "payments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := baseObligation()
			tt.mutate(&o)

			_, err := arrears.Compute(o, asOf)
			if !errors.Is(err, calc.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var vErr *calc.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}
