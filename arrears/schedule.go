package arrears

import (
	"sort"

	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// INSTALLMENT SCHEDULE
// =============================================================================

// installment is one expected monthly charge with its payment applications.
type installment struct {
	seq     int
	dueDate calc.Date
	amount  calc.Money

	applications []application
	paid         calc.Money
}

// application records a slice of a payment landing on an installment.
type application struct {
	date   calc.Date
	amount calc.Money
}

func (i *installment) unpaid() calc.Money { return i.amount.Sub(i.paid) }

// schedule generates the expected installments from the obligation start
// through asOf, one per calendar month on the clamped due-day. The first
// installment is the due-day of the start month when that day is on or
// after the start date, otherwise the due-day of the following month.
func schedule(o SupportObligation, asOf calc.Date) []*installment {
	dueDay := calc.ClampDueDay(o.DueDay)

	first := calc.DueDateIn(o.StartDate.Year(), o.StartDate.Month(), dueDay)
	if first.Before(o.StartDate) {
		first = calc.DueDateIn(first.AddMonths(1).Year(), first.AddMonths(1).Month(), dueDay)
	}

	var out []*installment
	for due, seq := first, 1; due.BeforeOrEqual(asOf); seq++ {
		out = append(out, &installment{seq: seq, dueDate: due, amount: o.MonthlyAmount})
		next := due.AddMonths(1)
		due = calc.DueDateIn(next.Year(), next.Month(), dueDay)
	}
	return out
}

// reconcile applies payments oldest-installment-first. Payments are walked
// in date order (stable for equal dates, so splitting a payment into parts
// with the same date is equivalent to the whole). The returned credit is
// whatever could not be applied to any installment.
func reconcile(installments []*installment, payments []Payment) calc.Money {
	ordered := make([]Payment, len(payments))
	copy(ordered, payments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var credit calc.Money
	cursor := 0
	for _, p := range ordered {
		remaining := p.Amount
		for remaining.IsPositive() && cursor < len(installments) {
			inst := installments[cursor]
			open := inst.unpaid()
			if !open.IsPositive() {
				cursor++
				continue
			}
			applied := remaining.Min(open)
			inst.applications = append(inst.applications, application{date: p.Date, amount: applied})
			inst.paid = inst.paid.Add(applied)
			remaining = remaining.Sub(applied)
			if !inst.unpaid().IsPositive() {
				cursor++
			}
		}
		credit = credit.Add(remaining)
	}
	return credit
}
