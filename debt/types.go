/*
Package debt computes bank-contract debt: pre-due interest, monetary
correction, late-payment penalty and moratory interest between arbitrary
calendar dates.

PURPOSE:
  Given the terms of a contract and an as-of date, produce the final
  payable amount with a full, auditable breakdown. The computation is a
  pure function of its input: no clock reads, no I/O beyond the injected
  correction-factor lookup.

DAY COUNT:
  Monthly rates apply over days/30 (see calc.Months30). Interest accrues
  from the contract date to the due date - or to the partial-payment date
  when the payment precedes the due date.

PAYMENT POLICY:
  A partial payment nets against the accrued debt (moratory interest,
  penalty, correction and interest before principal), so the residual base
  for further mora is debt-minus-payment. Overpayment yields a negative
  (credit) total - never clamped to zero.

SEE ALSO:
  - engine.go: the computation
  - calc/index.go: correction-factor lookup contract
*/
package debt

import (
	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// INPUT
// =============================================================================

// InterestType selects the pre-due interest formula.
type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

// PartialPayment is an optional payment applied during the calculation.
type PartialPayment struct {
	Amount calc.Money
	Date   calc.Date
	Note   string
}

// ContractTerms is the immutable input of one debt calculation.
// Constructed fresh per request and discarded after the result is produced.
type ContractTerms struct {
	Principal    calc.Money
	ContractDate calc.Date
	DueDate      calc.Date
	InterestRate decimal.Decimal // percent per 30-day month
	InterestType InterestType
	Index        calc.IndexCode  // IndexNone = no correction
	PenaltyRate  decimal.Decimal // percent, charged once on the overdue balance
	MoraRate     decimal.Decimal // percent per 30-day month on the overdue balance
	Payment      *PartialPayment
	Notes        string
}

// Validate checks the terms before any arithmetic. Every failure names the
// offending field.
func (t ContractTerms) Validate(asOf calc.Date) error {
	if t.Principal.IsNegative() {
		return calc.Invalid("principal", "must not be negative")
	}
	if t.ContractDate.IsZero() {
		return calc.Invalid("contract_date", "is required")
	}
	if t.DueDate.IsZero() {
		return calc.Invalid("due_date", "is required")
	}
	if t.DueDate.Before(t.ContractDate) {
		return calc.Invalid("due_date", "precedes contract date %s", t.ContractDate)
	}
	if t.InterestType != InterestSimple && t.InterestType != InterestCompound {
		return calc.Invalid("interest_type", "must be %q or %q", InterestSimple, InterestCompound)
	}
	if t.InterestRate.IsNegative() {
		return calc.Invalid("interest_rate", "must not be negative")
	}
	if !t.Index.Valid() {
		return calc.Invalid("index", "unknown correction index %q", string(t.Index))
	}
	if t.PenaltyRate.IsNegative() {
		return calc.Invalid("penalty_rate", "must not be negative")
	}
	if t.MoraRate.IsNegative() {
		return calc.Invalid("mora_rate", "must not be negative")
	}
	if asOf.IsZero() {
		return calc.Invalid("as_of", "is required")
	}
	if asOf.Before(t.ContractDate) {
		return calc.Invalid("as_of", "precedes contract date %s", t.ContractDate)
	}
	if p := t.Payment; p != nil {
		if !p.Amount.IsPositive() {
			return calc.Invalid("payment.amount", "must be positive")
		}
		if p.Date.Before(t.ContractDate) {
			return calc.Invalid("payment.date", "precedes contract date %s", t.ContractDate)
		}
		if p.Date.After(asOf) {
			return calc.Invalid("payment.date", "is after the as-of date %s", asOf)
		}
	}
	return nil
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of one debt calculation. Total is signed: a
// negative value is a credit to the debtor (overpayment).
type Result struct {
	Principal      calc.Money
	Interest       calc.Money
	Correction     calc.Money
	Penalty        calc.Money
	Mora           calc.Money
	PaymentApplied calc.Money
	Total          calc.Money

	AccrualDays int // contract date -> interest end
	OverdueDays int // due date -> as-of (0 when not overdue)

	Report calc.Report
}
