/*
Package calc provides the shared primitives of the calculation engines.

PURPOSE:
  The three engines (debt, arrears, sentence) are independent siblings
  unified only by the conventions defined here: calendar-date arithmetic,
  decimal-safe currency rounding, the 30-day-month day-count used for
  rate application, the report format, and the correction-index lookup
  contract.

KEY CONCEPTS:
  - Money:  A currency amount backed by decimal.Decimal (no binary floats)
  - Date:   A calendar date with whole-day semantics (no time-of-day)
  - Report: The ordered, labeled output every engine returns alongside
            its numeric totals
  - FactorProvider: External lookup for monetary-correction factors

DESIGN PRINCIPLES:
  1. Determinism: nothing here reads the clock or random state; callers
     pass every date explicitly
  2. Precision: all arithmetic uses decimal.Decimal; cents rounding is
     half-up and happens only at component boundaries
  3. One convention: every engine converts day counts to months as
     days/30 and rounds with RoundCents - never inline formulas

SEE ALSO:
  - money.go:  Money and rounding policy
  - date.go:   Date and day counts
  - report.go: Report assembly
  - index.go:  Correction-index contract and the static table
  - errors.go: Validation/lookup error taxonomy
*/
package calc
