package arrears

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// Compute runs one arrears calculation as of the given date: generates the
// expected installment schedule, nets it against the payment list oldest
// debt first, and accrues penalty and moratory interest per installment
// with the shared 30-day-month convention.
func Compute(o SupportObligation, asOf calc.Date) (*Result, error) {
	if err := o.Validate(asOf); err != nil {
		return nil, err
	}

	installments := schedule(o, asOf)
	credit := reconcile(installments, o.Payments)

	penaltyRate := calc.Percent(o.PenaltyRate)
	moraRate := calc.Percent(o.MoraRate)

	r := &Result{MonthlyAmount: o.MonthlyAmount.RoundCents(), Credit: credit}

	for _, inst := range installments {
		row := InstallmentResult{
			Seq:     inst.seq,
			DueDate: inst.dueDate,
			Amount:  inst.amount.RoundCents(),
			Paid:    inst.paid.RoundCents(),
			Unpaid:  inst.unpaid().RoundCents(),
		}

		// Penalty applies once to whatever was settled late or is still
		// open; mora runs per slice from the due date to the settling
		// payment (or to asOf for the open balance).
		var penaltyBase, mora calc.Money
		for _, app := range inst.applications {
			if app.date.After(inst.dueDate) {
				lateDays := calc.DaysBetween(inst.dueDate, app.date)
				penaltyBase = penaltyBase.Add(app.amount)
				mora = mora.Add(app.amount.Mul(moraRate.Mul(calc.Months30(lateDays))))
			}
		}
		if unpaid := inst.unpaid(); unpaid.IsPositive() && asOf.After(inst.dueDate) {
			openDays := calc.DaysBetween(inst.dueDate, asOf)
			penaltyBase = penaltyBase.Add(unpaid)
			mora = mora.Add(unpaid.Mul(moraRate.Mul(calc.Months30(openDays))))
		}
		row.Penalty = penaltyBase.Mul(penaltyRate).RoundCents()
		row.Mora = mora.RoundCents()

		switch {
		case !row.Unpaid.IsPositive():
			row.Status = InstallmentPaid
		case row.Paid.IsPositive():
			row.Status = InstallmentPartial
		default:
			row.Status = InstallmentOpen
		}

		r.OverduePrincipal = r.OverduePrincipal.Add(row.Unpaid)
		r.Penalty = r.Penalty.Add(row.Penalty)
		r.Mora = r.Mora.Add(row.Mora)
		r.Installments = append(r.Installments, row)
	}

	if o.IncomeReference.IsPositive() {
		r.IncomePercent = o.MonthlyAmount.Value.
			Div(o.IncomeReference.Value).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	r.Total = r.OverduePrincipal.Add(r.Penalty).Add(r.Mora).Sub(r.Credit).RoundCents()
	r.Report = buildReport(o, asOf, r)
	return r, nil
}

// =============================================================================
// REPORT
// =============================================================================

func buildReport(o SupportObligation, asOf calc.Date, r *Result) calc.Report {
	var rep calc.Report

	rep.Section("Pensão alimentícia")
	rep.AddMoney("Valor mensal estipulado", r.MonthlyAmount)
	rep.Add("Dependentes", fmt.Sprintf("%d", o.Dependents))
	if len(o.DependentAges) > 0 {
		ages := make([]string, len(o.DependentAges))
		for i, age := range o.DependentAges {
			ages[i] = fmt.Sprintf("%d anos", age)
		}
		rep.Add("Idades", strings.Join(ages, ", "))
	}
	if !r.IncomePercent.IsZero() {
		rep.Add("Percentual da renda", r.IncomePercent.String()+"%")
	}
	rep.Add("Dia de vencimento", fmt.Sprintf("%d", calc.ClampDueDay(o.DueDay)))
	rep.Add("Início da obrigação", o.StartDate.String())
	rep.Add("Data de apuração", asOf.String())
	if o.Notes != "" {
		rep.Add("Observações", o.Notes)
	}

	rep.Section("Parcelas")
	paid := 0
	for _, row := range r.Installments {
		if row.Status == InstallmentPaid {
			paid++
			continue
		}
		label := fmt.Sprintf("Parcela %d, vencida em %s", row.Seq, row.DueDate)
		rep.Add(label, "R$ "+row.Unpaid.String()+" em aberto")
	}
	rep.Add("Parcelas geradas", fmt.Sprintf("%d", len(r.Installments)))
	rep.Add("Parcelas quitadas", fmt.Sprintf("%d", paid))
	rep.AddMoney("Principal em atraso", r.OverduePrincipal)

	rep.Section("Multa")
	rep.Add("Percentual", o.PenaltyRate.String()+"%")
	rep.AddMoney("Multa", r.Penalty)

	rep.Section("Juros de mora")
	rep.Add("Taxa mensal", o.MoraRate.String()+"%")
	rep.AddMoney("Juros de mora", r.Mora)

	if r.Credit.IsPositive() {
		rep.Section("Pagamentos excedentes")
		rep.AddMoney("Crédito não aplicado", r.Credit)
	}

	rep.Section("Total corrigido")
	if r.Total.IsNegative() {
		rep.AddMoney("Saldo credor do alimentante", r.Total.Abs())
	} else {
		rep.AddMoney("Total corrigido", r.Total)
	}

	rep.Section("Fundamento legal")
	rep.Note("Parcelas vencidas e não pagas integralmente, aplicados multa e juros de mora desde cada vencimento.")
	rep.Note("Execução de alimentos na forma dos arts. 528 e seguintes do Código de Processo Civil.")

	return rep
}
