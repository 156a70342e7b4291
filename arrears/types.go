/*
Package arrears computes alimony/child-support arrears: an expected monthly
installment schedule netted against actual payments, with penalty and
moratory interest on what remains.

SCHEDULE POLICY:
  One installment of the stipulated amount per calendar month, dated on the
  configured due-day (clamped to 1-28 so every month has that day). The
  first installment falls on the due-day of the start month when that day
  is on or after the start date, otherwise on the due-day of the following
  month. There is no first-month proration.

RECONCILIATION:
  Payments apply to the earliest installment with an unpaid balance;
  unapplied remainder carries forward (oldest debt first). Money left over
  after every installment is settled becomes a credit netted off the grand
  total. Splitting a payment into parts with the same dates and total
  changes nothing.

SEE ALSO:
  - schedule.go: installment generation
  - engine.go: reconciliation and totals
*/
package arrears

import (
	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// INPUT
// =============================================================================

// Payment is one actual payment made against the obligation.
type Payment struct {
	Date   calc.Date
	Amount calc.Money
	Note   string
}

// SupportObligation is the immutable input of one arrears calculation.
type SupportObligation struct {
	MonthlyAmount calc.Money
	Dependents    int
	DependentAges []int // parallel to Dependents; empty = not informed
	DueDay        int   // day-of-month, clamped to [1, 28]
	StartDate     calc.Date
	Payments      []Payment

	// IncomeReference, when positive, yields the informational
	// percentage-of-income figure. It never enters the monetary total.
	IncomeReference calc.Money

	PenaltyRate decimal.Decimal // percent, once per overdue installment balance
	MoraRate    decimal.Decimal // percent per 30-day month
	Notes       string
}

// Validate checks the obligation before any arithmetic.
func (o SupportObligation) Validate(asOf calc.Date) error {
	if !o.MonthlyAmount.IsPositive() {
		return calc.Invalid("monthly_amount", "must be positive")
	}
	if o.Dependents < 1 {
		return calc.Invalid("dependents", "must be at least 1")
	}
	if len(o.DependentAges) > 0 && len(o.DependentAges) != o.Dependents {
		return calc.Invalid("dependent_ages", "expected %d entries, got %d", o.Dependents, len(o.DependentAges))
	}
	if o.DueDay < 1 || o.DueDay > 28 {
		return calc.Invalid("due_day", "must be between 1 and 28")
	}
	if o.StartDate.IsZero() {
		return calc.Invalid("start_date", "is required")
	}
	if asOf.IsZero() {
		return calc.Invalid("as_of", "is required")
	}
	if asOf.Before(o.StartDate) {
		return calc.Invalid("as_of", "precedes obligation start %s", o.StartDate)
	}
	if o.PenaltyRate.IsNegative() {
		return calc.Invalid("penalty_rate", "must not be negative")
	}
	if o.MoraRate.IsNegative() {
		return calc.Invalid("mora_rate", "must not be negative")
	}
	for i, p := range o.Payments {
		if !p.Amount.IsPositive() {
			return calc.Invalid("payments", "payment %d: amount must be positive", i+1)
		}
		if p.Date.Before(o.StartDate) {
			return calc.Invalid("payments", "payment %d: dated %s, before obligation start %s", i+1, p.Date, o.StartDate)
		}
	}
	return nil
}

// =============================================================================
// RESULT
// =============================================================================

// InstallmentStatus describes how an installment was settled.
type InstallmentStatus string

const (
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentOpen    InstallmentStatus = "open"
)

// InstallmentResult is the per-installment breakdown row.
type InstallmentResult struct {
	Seq     int
	DueDate calc.Date
	Amount  calc.Money
	Paid    calc.Money
	Unpaid  calc.Money
	Penalty calc.Money
	Mora    calc.Money
	Status  InstallmentStatus
}

// Result is the outcome of one arrears calculation. Total is signed: when
// payments exceed the scheduled debt plus charges, the credit shows as a
// negative total.
type Result struct {
	MonthlyAmount    calc.Money
	IncomePercent    decimal.Decimal // 0 when no income reference supplied
	OverduePrincipal calc.Money
	Penalty          calc.Money
	Mora             calc.Money
	Credit           calc.Money // unapplied payment remainder
	Total            calc.Money

	Installments []InstallmentResult
	Report       calc.Report
}
