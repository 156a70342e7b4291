/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures of the API contract, decoupled from the engine types.
  Monetary values and rates travel as decimal STRINGS, never binary
  floats, so no rounding divergence is introduced on the wire. Dates are
  YYYY-MM-DD strings.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *Response / *DTO: types returned to clients

VALIDATION:
  DTO conversion only rejects values that cannot be parsed; every
  semantic rule lives in the engines' Validate methods so the API and
  other callers cannot drift apart.

SEE ALSO:
  - handlers.go: uses these types
  - server.go: the route table these types serve
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/arrears"
	"github.com/juriscalc/calc-engine/calc"
	"github.com/juriscalc/calc-engine/debt"
	"github.com/juriscalc/calc-engine/sentence"
)

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// PaymentDTO is a payment in request bodies.
type PaymentDTO struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Note   string `json:"note,omitempty"`
}

func parseMoney(field, value string) (calc.Money, error) {
	m, err := calc.MoneyFromString(value)
	if err != nil {
		return calc.Money{}, calc.Invalid(field, "not a decimal amount: %q", value)
	}
	return m, nil
}

func parseRate(field, value, fallback string) (decimal.Decimal, error) {
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, calc.Invalid(field, "not a decimal rate: %q", value)
	}
	return d, nil
}

func parseDate(field, value string) (calc.Date, error) {
	if value == "" {
		return calc.Date{}, calc.Invalid(field, "is required")
	}
	d, err := calc.ParseDate(value)
	if err != nil {
		return calc.Date{}, calc.Invalid(field, "not a date (use YYYY-MM-DD): %q", value)
	}
	return d, nil
}

// parseFraction accepts either a decimal ("0.1667") or a ratio ("1/6").
func parseFraction(field, value string) (decimal.Decimal, error) {
	f, err := calc.ParseFraction(value)
	if err != nil {
		return decimal.Decimal{}, calc.Invalid(field, "not a fraction: %q", value)
	}
	return f, nil
}

// =============================================================================
// DEBT
// =============================================================================

type DebtRequest struct {
	Principal    string      `json:"principal"`
	ContractDate string      `json:"contract_date"`
	DueDate      string      `json:"due_date"`
	InterestRate string      `json:"interest_rate"`
	InterestType string      `json:"interest_type"`
	Index        string      `json:"index,omitempty"`
	PenaltyRate  string      `json:"penalty_rate,omitempty"`
	MoraRate     string      `json:"mora_rate,omitempty"`
	Payment      *PaymentDTO `json:"payment,omitempty"`
	AsOf         string      `json:"as_of"`
	Notes        string      `json:"notes,omitempty"`
}

func (r DebtRequest) toDomain() (debt.ContractTerms, calc.Date, error) {
	var terms debt.ContractTerms
	var err error

	if terms.Principal, err = parseMoney("principal", r.Principal); err != nil {
		return terms, calc.Date{}, err
	}
	if terms.ContractDate, err = parseDate("contract_date", r.ContractDate); err != nil {
		return terms, calc.Date{}, err
	}
	if terms.DueDate, err = parseDate("due_date", r.DueDate); err != nil {
		return terms, calc.Date{}, err
	}
	if terms.InterestRate, err = parseRate("interest_rate", r.InterestRate, "0"); err != nil {
		return terms, calc.Date{}, err
	}
	terms.InterestType = debt.InterestType(r.InterestType)
	terms.Index = calc.IndexCode(r.Index)
	if terms.PenaltyRate, err = parseRate("penalty_rate", r.PenaltyRate, "0"); err != nil {
		return terms, calc.Date{}, err
	}
	if terms.MoraRate, err = parseRate("mora_rate", r.MoraRate, "0"); err != nil {
		return terms, calc.Date{}, err
	}
	terms.Notes = r.Notes

	if r.Payment != nil {
		var p debt.PartialPayment
		if p.Amount, err = parseMoney("payment.amount", r.Payment.Amount); err != nil {
			return terms, calc.Date{}, err
		}
		if p.Date, err = parseDate("payment.date", r.Payment.Date); err != nil {
			return terms, calc.Date{}, err
		}
		p.Note = r.Payment.Note
		terms.Payment = &p
	}

	asOf, err := parseDate("as_of", r.AsOf)
	if err != nil {
		return terms, calc.Date{}, err
	}
	return terms, asOf, nil
}

type DebtResponse struct {
	ID             string `json:"id,omitempty"`
	Principal      string `json:"principal"`
	Interest       string `json:"interest"`
	Correction     string `json:"correction"`
	Penalty        string `json:"penalty"`
	Mora           string `json:"mora"`
	PaymentApplied string `json:"payment_applied"`
	Total          string `json:"total"`
	AccrualDays    int    `json:"accrual_days"`
	OverdueDays    int    `json:"overdue_days"`
	Report         string `json:"report"`
}

func toDebtResponse(r *debt.Result) DebtResponse {
	return DebtResponse{
		Principal:      r.Principal.String(),
		Interest:       r.Interest.String(),
		Correction:     r.Correction.String(),
		Penalty:        r.Penalty.String(),
		Mora:           r.Mora.String(),
		PaymentApplied: r.PaymentApplied.String(),
		Total:          r.Total.String(),
		AccrualDays:    r.AccrualDays,
		OverdueDays:    r.OverdueDays,
		Report:         r.Report.String(),
	}
}

// =============================================================================
// ARREARS
// =============================================================================

type ArrearsRequest struct {
	MonthlyAmount   string       `json:"monthly_amount"`
	Dependents      int          `json:"dependents"`
	DependentAges   []int        `json:"dependent_ages,omitempty"`
	DueDay          int          `json:"due_day"`
	StartDate       string       `json:"start_date"`
	Payments        []PaymentDTO `json:"payments,omitempty"`
	IncomeReference string       `json:"income_reference,omitempty"`
	PenaltyRate     string       `json:"penalty_rate,omitempty"`
	MoraRate        string       `json:"mora_rate,omitempty"`
	AsOf            string       `json:"as_of"`
	Notes           string       `json:"notes,omitempty"`
}

func (r ArrearsRequest) toDomain() (arrears.SupportObligation, calc.Date, error) {
	var ob arrears.SupportObligation
	var err error

	if ob.MonthlyAmount, err = parseMoney("monthly_amount", r.MonthlyAmount); err != nil {
		return ob, calc.Date{}, err
	}
	ob.Dependents = r.Dependents
	ob.DependentAges = r.DependentAges
	ob.DueDay = r.DueDay
	if ob.StartDate, err = parseDate("start_date", r.StartDate); err != nil {
		return ob, calc.Date{}, err
	}
	if r.IncomeReference != "" {
		if ob.IncomeReference, err = parseMoney("income_reference", r.IncomeReference); err != nil {
			return ob, calc.Date{}, err
		}
	}
	// Brazilian-practice defaults: 2% penalty, 1% mora per month.
	if ob.PenaltyRate, err = parseRate("penalty_rate", r.PenaltyRate, "2"); err != nil {
		return ob, calc.Date{}, err
	}
	if ob.MoraRate, err = parseRate("mora_rate", r.MoraRate, "1"); err != nil {
		return ob, calc.Date{}, err
	}
	ob.Notes = r.Notes

	for _, p := range r.Payments {
		var payment arrears.Payment
		if payment.Amount, err = parseMoney("payments", p.Amount); err != nil {
			return ob, calc.Date{}, err
		}
		if payment.Date, err = parseDate("payments", p.Date); err != nil {
			return ob, calc.Date{}, err
		}
		payment.Note = p.Note
		ob.Payments = append(ob.Payments, payment)
	}

	asOf, err := parseDate("as_of", r.AsOf)
	if err != nil {
		return ob, calc.Date{}, err
	}
	return ob, asOf, nil
}

type InstallmentDTO struct {
	Seq     int    `json:"seq"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
	Paid    string `json:"paid"`
	Unpaid  string `json:"unpaid"`
	Penalty string `json:"penalty"`
	Mora    string `json:"mora"`
	Status  string `json:"status"`
}

type ArrearsResponse struct {
	ID               string           `json:"id,omitempty"`
	MonthlyAmount    string           `json:"monthly_amount"`
	IncomePercent    string           `json:"income_percent,omitempty"`
	OverduePrincipal string           `json:"overdue_principal"`
	Penalty          string           `json:"penalty"`
	Mora             string           `json:"mora"`
	Credit           string           `json:"credit"`
	Total            string           `json:"total"`
	Installments     []InstallmentDTO `json:"installments"`
	Report           string           `json:"report"`
}

func toArrearsResponse(r *arrears.Result) ArrearsResponse {
	resp := ArrearsResponse{
		MonthlyAmount:    r.MonthlyAmount.String(),
		OverduePrincipal: r.OverduePrincipal.RoundCents().String(),
		Penalty:          r.Penalty.RoundCents().String(),
		Mora:             r.Mora.RoundCents().String(),
		Credit:           r.Credit.RoundCents().String(),
		Total:            r.Total.String(),
		Report:           r.Report.String(),
	}
	if !r.IncomePercent.IsZero() {
		resp.IncomePercent = r.IncomePercent.String()
	}
	for _, row := range r.Installments {
		resp.Installments = append(resp.Installments, InstallmentDTO{
			Seq:     row.Seq,
			DueDate: row.DueDate.String(),
			Amount:  row.Amount.String(),
			Paid:    row.Paid.String(),
			Unpaid:  row.Unpaid.String(),
			Penalty: row.Penalty.String(),
			Mora:    row.Mora.String(),
			Status:  string(row.Status),
		})
	}
	return resp
}

// =============================================================================
// SENTENCE
// =============================================================================

type EpisodeDTO struct {
	Type       string `json:"type"`
	Start      string `json:"start"`
	End        string `json:"end,omitempty"`
	Computable bool   `json:"computable"`
	Note       string `json:"note,omitempty"`
}

type RemissionDTO struct {
	Date   string `json:"date"`
	Days   int    `json:"days"`
	Reason string `json:"reason"`
	Note   string `json:"note,omitempty"`
}

type EventDTO struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

type SentenceRequest struct {
	TotalDays           int            `json:"total_days"`
	InitialRegime       string         `json:"initial_regime"`
	ProgressionFraction string         `json:"progression_fraction"`
	ReleaseFraction     string         `json:"release_fraction"`
	Episodes            []EpisodeDTO   `json:"episodes"`
	Remissions          []RemissionDTO `json:"remissions,omitempty"`
	Events              []EventDTO     `json:"events,omitempty"`
	IncludeReleaseDay   bool           `json:"include_release_day"`
	AsOf                string         `json:"as_of"`
}

func (r SentenceRequest) toDomain() (sentence.Input, calc.Date, error) {
	var in sentence.Input
	var err error

	in.Sentence.TotalDays = r.TotalDays
	in.Sentence.InitialRegime = sentence.Regime(r.InitialRegime)
	if in.Sentence.ProgressionFraction, err = parseFraction("progression_fraction", r.ProgressionFraction); err != nil {
		return in, calc.Date{}, err
	}
	if in.Sentence.ReleaseFraction, err = parseFraction("release_fraction", r.ReleaseFraction); err != nil {
		return in, calc.Date{}, err
	}
	in.IncludeReleaseDay = r.IncludeReleaseDay

	for _, ep := range r.Episodes {
		episode := sentence.CustodyEpisode{
			Type:       sentence.EpisodeType(ep.Type),
			Computable: ep.Computable,
			Note:       ep.Note,
		}
		if episode.Start, err = parseDate("episodes", ep.Start); err != nil {
			return in, calc.Date{}, err
		}
		if ep.End != "" {
			end, err := parseDate("episodes", ep.End)
			if err != nil {
				return in, calc.Date{}, err
			}
			episode.End = &end
		}
		in.Episodes = append(in.Episodes, episode)
	}

	for _, g := range r.Remissions {
		grant := sentence.RemissionGrant{
			Days:   g.Days,
			Reason: sentence.RemissionReason(g.Reason),
			Note:   g.Note,
		}
		if grant.Date, err = parseDate("remissions", g.Date); err != nil {
			return in, calc.Date{}, err
		}
		in.Remissions = append(in.Remissions, grant)
	}

	for _, ev := range r.Events {
		event := sentence.ProcessEvent{Type: ev.Type, Note: ev.Note}
		if event.Date, err = parseDate("events", ev.Date); err != nil {
			return in, calc.Date{}, err
		}
		in.Events = append(in.Events, event)
	}

	asOf, err := parseDate("as_of", r.AsOf)
	if err != nil {
		return in, calc.Date{}, err
	}
	return in, asOf, nil
}

type MilestoneDTO struct {
	Date      string `json:"date"`
	Reached   bool   `json:"reached"`
	Threshold int    `json:"threshold_days"`
}

type SentenceResponse struct {
	ID            string       `json:"id,omitempty"`
	DaysServed    int          `json:"days_served"`
	RemissionDays int          `json:"remission_days"`
	NetDays       int          `json:"net_days"`
	Progression   MilestoneDTO `json:"progression"`
	Release       MilestoneDTO `json:"release"`
	End           MilestoneDTO `json:"end"`
	InCustody     bool         `json:"in_custody"`
	Provisional   bool         `json:"provisional"`
	Report        string       `json:"report"`
}

func toSentenceResponse(r *sentence.Result) SentenceResponse {
	toDTO := func(m sentence.Milestone) MilestoneDTO {
		return MilestoneDTO{Date: m.Date.String(), Reached: m.Reached, Threshold: m.Threshold}
	}
	return SentenceResponse{
		DaysServed:    r.DaysServed,
		RemissionDays: r.RemissionDays,
		NetDays:       r.NetDays,
		Progression:   toDTO(r.Progression),
		Release:       toDTO(r.Release),
		End:           toDTO(r.End),
		InCustody:     r.InCustody,
		Provisional:   r.Provisional,
		Report:        r.Report.String(),
	}
}

// =============================================================================
// HISTORY & INDEXES
// =============================================================================

// CalculationDTO is a stored calculation in API responses.
type CalculationDTO struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Kind      string `json:"kind"`
	Input     any    `json:"input,omitempty"`
	Result    any    `json:"result,omitempty"`
	Report    string `json:"report,omitempty"`
	CreatedAt string `json:"created_at"`
}

// FactorDTO is one monthly index factor.
type FactorDTO struct {
	Month  string `json:"month"`
	Factor string `json:"factor"`
}

// PutFactorsRequest upserts monthly factors for an index.
type PutFactorsRequest struct {
	Factors map[string]string `json:"factors"` // YYYY-MM -> decimal factor
}
