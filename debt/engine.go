package debt

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

var one = decimal.NewFromInt(1)

// Compute runs one debt calculation as of the given date. The factor
// provider is only consulted when the terms carry a correction index; a
// nil provider behaves as factor 1.
//
// The result is deterministic: identical input always yields an identical
// result.
func Compute(terms ContractTerms, asOf calc.Date, indexes calc.FactorProvider) (*Result, error) {
	if err := terms.Validate(asOf); err != nil {
		return nil, err
	}
	if indexes == nil {
		indexes = calc.Unity{}
	}

	// Interest accrues from the contract date to the due date, or to the
	// partial-payment date when the payment precedes the due date.
	interestEnd := terms.DueDate
	if terms.Payment != nil && terms.Payment.Date.Before(terms.DueDate) {
		interestEnd = terms.Payment.Date
	}
	accrualDays := calc.DaysBetween(terms.ContractDate, interestEnd)

	interest, err := accrueInterest(terms.Principal, terms.InterestRate, terms.InterestType, accrualDays)
	if err != nil {
		return nil, err
	}

	factor := one
	if terms.Index != calc.IndexNone {
		factor, err = indexes.Factor(terms.Index, terms.ContractDate, terms.DueDate)
		if err != nil {
			return nil, err
		}
	}

	subtotal := terms.Principal.Add(interest)
	correction := subtotal.Mul(factor.Sub(one)).RoundCents()
	corrected := subtotal.Add(correction)

	penaltyRate := calc.Percent(terms.PenaltyRate)
	moraRate := calc.Percent(terms.MoraRate)

	overdueDays := 0
	if asOf.After(terms.DueDate) {
		overdueDays = calc.DaysBetween(terms.DueDate, asOf)
	}

	var penalty, mora, paymentApplied, total calc.Money

	switch {
	case terms.Payment == nil:
		if overdueDays > 0 {
			penalty = corrected.Mul(penaltyRate).RoundCents()
			mora = corrected.Mul(moraRate.Mul(calc.Months30(overdueDays))).RoundCents()
		}
		total = corrected.Add(penalty).Add(mora)

	case !terms.Payment.Date.After(terms.DueDate):
		// Payment on or before the due date: net it against the corrected
		// subtotal, then charge penalty/mora on the residual only.
		paymentApplied = terms.Payment.Amount
		residual := corrected.Sub(paymentApplied)
		if overdueDays > 0 && residual.IsPositive() {
			penalty = residual.Mul(penaltyRate).RoundCents()
			mora = residual.Mul(moraRate.Mul(calc.Months30(overdueDays))).RoundCents()
		}
		total = residual.Add(penalty).Add(mora)

	default:
		// Payment after the due date: penalty and mora accrue on the full
		// corrected balance until the payment date; the payment then nets
		// against accrued charges before principal, and further mora runs
		// on the residual.
		paymentApplied = terms.Payment.Amount
		lateDays := calc.DaysBetween(terms.DueDate, terms.Payment.Date)
		penalty = corrected.Mul(penaltyRate).RoundCents()
		moraBefore := corrected.Mul(moraRate.Mul(calc.Months30(lateDays))).RoundCents()
		residual := corrected.Add(penalty).Add(moraBefore).Sub(paymentApplied)

		var moraAfter calc.Money
		if residual.IsPositive() && asOf.After(terms.Payment.Date) {
			remainingDays := calc.DaysBetween(terms.Payment.Date, asOf)
			moraAfter = residual.Mul(moraRate.Mul(calc.Months30(remainingDays))).RoundCents()
		}
		mora = moraBefore.Add(moraAfter)
		total = residual.Add(moraAfter)
	}

	r := &Result{
		Principal:      terms.Principal.RoundCents(),
		Interest:       interest,
		Correction:     correction,
		Penalty:        penalty,
		Mora:           mora,
		PaymentApplied: paymentApplied,
		Total:          total.RoundCents(),
		AccrualDays:    accrualDays,
		OverdueDays:    overdueDays,
	}
	r.Report = buildReport(terms, asOf, factor, r)
	return r, nil
}

// accrueInterest applies the stated monthly rate over days/30.
func accrueInterest(principal calc.Money, rate decimal.Decimal, typ InterestType, days int) (calc.Money, error) {
	if days <= 0 || rate.IsZero() {
		return calc.Money{}, nil
	}
	monthly := calc.Percent(rate)
	months := calc.Months30(days)

	switch typ {
	case InterestSimple:
		return principal.Mul(monthly.Mul(months)).RoundCents(), nil
	case InterestCompound:
		growth, err := one.Add(monthly).PowWithPrecision(months, 16)
		if err != nil {
			return calc.Money{}, fmt.Errorf("compound interest: %w", err)
		}
		return principal.Mul(growth.Sub(one)).RoundCents(), nil
	default:
		return calc.Money{}, calc.Invalid("interest_type", "unknown type %q", string(typ))
	}
}

// =============================================================================
// REPORT
// =============================================================================

func buildReport(terms ContractTerms, asOf calc.Date, factor decimal.Decimal, r *Result) calc.Report {
	var rep calc.Report

	rep.Section("Dados do contrato")
	rep.AddMoney("Valor principal", r.Principal)
	rep.Add("Data do contrato", terms.ContractDate.String())
	rep.Add("Data do vencimento", terms.DueDate.String())
	rep.Add("Data de apuração", asOf.String())
	if terms.Notes != "" {
		rep.Add("Observações", terms.Notes)
	}

	rep.Section("Correção monetária")
	if terms.Index == calc.IndexNone {
		rep.Add("Índice", "nenhum")
	} else {
		rep.Add("Índice", string(terms.Index))
		rep.Add("Fator acumulado", factor.Round(6).String())
	}
	rep.AddMoney("Correção aplicada", r.Correction)

	rep.Section("Juros")
	rep.Add("Tipo de juros", interestTypeLabel(terms.InterestType))
	rep.Add("Taxa mensal", terms.InterestRate.String()+"%")
	rep.Add("Dias de apuração", fmt.Sprintf("%d", r.AccrualDays))
	rep.AddMoney("Juros", r.Interest)

	rep.Section("Multa")
	rep.Add("Percentual", terms.PenaltyRate.String()+"%")
	rep.AddMoney("Multa", r.Penalty)

	rep.Section("Juros de mora")
	rep.Add("Taxa mensal", terms.MoraRate.String()+"%")
	rep.Add("Dias em atraso", fmt.Sprintf("%d", r.OverdueDays))
	rep.AddMoney("Juros de mora", r.Mora)

	if terms.Payment != nil {
		rep.Section("Pagamento parcial")
		rep.Add("Data do pagamento", terms.Payment.Date.String())
		rep.AddMoney("Valor pago", r.PaymentApplied)
		if terms.Payment.Note != "" {
			rep.Add("Observação", terms.Payment.Note)
		}
	}

	rep.Section("Total devido")
	if r.Total.IsNegative() {
		rep.AddMoney("Saldo credor do devedor", r.Total.Abs())
	} else {
		rep.AddMoney("Total devido", r.Total)
	}

	rep.Section("Fundamento legal")
	rep.Note("Correção monetária pelo índice contratado, incidente sobre principal e juros até o vencimento.")
	rep.Note("Multa e juros de mora a partir do vencimento, nos termos dos arts. 394 a 397 e 406 do Código Civil.")

	return rep
}

func interestTypeLabel(t InterestType) string {
	if t == InterestCompound {
		return "compostos"
	}
	return "simples"
}
