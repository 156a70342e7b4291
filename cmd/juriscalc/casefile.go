/*
casefile.go - YAML case-file formats

PURPOSE:
  A case file is the CLI's input: one YAML document describing a single
  calculation, plus optional inline correction factors so a case is fully
  reproducible offline.

FORMAT (debt example):

  as_of: 2024-06-30
  debt:
    principal: "10000.00"
    contract_date: 2024-01-15
    due_date: 2024-03-15
    interest_rate: "2"
    interest_type: compound
    index: ipca
    penalty_rate: "2"
    mora_rate: "1"
  factors:
    ipca:
      2024-02: "1.0042"
      2024-03: "1.0038"

Amounts and rates are decimal strings; dates are YYYY-MM-DD.
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/juriscalc/calc-engine/arrears"
	"github.com/juriscalc/calc-engine/calc"
	"github.com/juriscalc/calc-engine/debt"
	"github.com/juriscalc/calc-engine/sentence"
)

// caseFile is the top-level YAML document. Exactly one of Debt, Arrears or
// Sentence must be present, matching the subcommand.
type caseFile struct {
	AsOf    string                       `yaml:"as_of"`
	Debt    *debtCase                    `yaml:"debt,omitempty"`
	Arrears *arrearsCase                 `yaml:"arrears,omitempty"`
	Sent    *sentenceCase                `yaml:"sentence,omitempty"`
	Factors map[string]map[string]string `yaml:"factors,omitempty"` // index -> YYYY-MM -> factor
}

type paymentCase struct {
	Amount string `yaml:"amount"`
	Date   string `yaml:"date"`
	Note   string `yaml:"note,omitempty"`
}

type debtCase struct {
	Principal    string       `yaml:"principal"`
	ContractDate string       `yaml:"contract_date"`
	DueDate      string       `yaml:"due_date"`
	InterestRate string       `yaml:"interest_rate"`
	InterestType string       `yaml:"interest_type"`
	Index        string       `yaml:"index,omitempty"`
	PenaltyRate  string       `yaml:"penalty_rate,omitempty"`
	MoraRate     string       `yaml:"mora_rate,omitempty"`
	Payment      *paymentCase `yaml:"payment,omitempty"`
	Notes        string       `yaml:"notes,omitempty"`
}

type arrearsCase struct {
	MonthlyAmount   string        `yaml:"monthly_amount"`
	Dependents      int           `yaml:"dependents"`
	DependentAges   []int         `yaml:"dependent_ages,omitempty"`
	DueDay          int           `yaml:"due_day"`
	StartDate       string        `yaml:"start_date"`
	Payments        []paymentCase `yaml:"payments,omitempty"`
	IncomeReference string        `yaml:"income_reference,omitempty"`
	PenaltyRate     string        `yaml:"penalty_rate,omitempty"`
	MoraRate        string        `yaml:"mora_rate,omitempty"`
	Notes           string        `yaml:"notes,omitempty"`
}

type episodeCase struct {
	Type       string `yaml:"type"`
	Start      string `yaml:"start"`
	End        string `yaml:"end,omitempty"`
	Computable *bool  `yaml:"computable,omitempty"` // default true
	Note       string `yaml:"note,omitempty"`
}

type remissionCase struct {
	Date   string `yaml:"date"`
	Days   int    `yaml:"days"`
	Reason string `yaml:"reason"`
	Note   string `yaml:"note,omitempty"`
}

type eventCase struct {
	Date string `yaml:"date"`
	Type string `yaml:"type"`
	Note string `yaml:"note,omitempty"`
}

type sentenceCase struct {
	TotalDays           int             `yaml:"total_days"`
	InitialRegime       string          `yaml:"initial_regime"`
	ProgressionFraction string          `yaml:"progression_fraction"`
	ReleaseFraction     string          `yaml:"release_fraction"`
	Episodes            []episodeCase   `yaml:"episodes"`
	Remissions          []remissionCase `yaml:"remissions,omitempty"`
	Events              []eventCase     `yaml:"events,omitempty"`
	IncludeReleaseDay   bool            `yaml:"include_release_day,omitempty"`
}

// =============================================================================
// LOADING
// =============================================================================

func loadCaseFile(path string) (*caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	return &cf, nil
}

// asOf resolves the calculation date: the --as-of flag wins, then the case
// file, then today.
func (cf *caseFile) asOf(flagValue string) (calc.Date, error) {
	raw := flagValue
	if raw == "" {
		raw = cf.AsOf
	}
	if raw == "" {
		return calc.DateOf(time.Now().UTC()), nil
	}
	d, err := calc.ParseDate(raw)
	if err != nil {
		return calc.Date{}, fmt.Errorf("invalid as-of date %q (use YYYY-MM-DD)", raw)
	}
	return d, nil
}

// factorTable builds a provider from the inline factors, or Unity when the
// case carries none.
func (cf *caseFile) factorTable() (calc.FactorProvider, error) {
	if len(cf.Factors) == 0 {
		return calc.Unity{}, nil
	}
	table := calc.NewStaticTable()
	for code, months := range cf.Factors {
		for month, raw := range months {
			f, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid factor %s/%s: %q", code, month, raw)
			}
			table.Set(calc.IndexCode(code), month, f)
		}
	}
	return table, nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func parseCaseMoney(field, value string) (calc.Money, error) {
	m, err := calc.MoneyFromString(value)
	if err != nil {
		return calc.Money{}, fmt.Errorf("%s: not a decimal amount: %q", field, value)
	}
	return m, nil
}

func parseCaseRate(field, value, fallback string) (decimal.Decimal, error) {
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: not a decimal rate: %q", field, value)
	}
	return d, nil
}

func parseCaseDate(field, value string) (calc.Date, error) {
	d, err := calc.ParseDate(value)
	if err != nil {
		return calc.Date{}, fmt.Errorf("%s: not a date (use YYYY-MM-DD): %q", field, value)
	}
	return d, nil
}

func parseCaseFraction(field, value string) (decimal.Decimal, error) {
	f, err := calc.ParseFraction(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: not a fraction: %q", field, value)
	}
	return f, nil
}

func (c *debtCase) toDomain() (debt.ContractTerms, error) {
	var terms debt.ContractTerms
	var err error

	if terms.Principal, err = parseCaseMoney("principal", c.Principal); err != nil {
		return terms, err
	}
	if terms.ContractDate, err = parseCaseDate("contract_date", c.ContractDate); err != nil {
		return terms, err
	}
	if terms.DueDate, err = parseCaseDate("due_date", c.DueDate); err != nil {
		return terms, err
	}
	if terms.InterestRate, err = parseCaseRate("interest_rate", c.InterestRate, "0"); err != nil {
		return terms, err
	}
	terms.InterestType = debt.InterestType(c.InterestType)
	terms.Index = calc.IndexCode(c.Index)
	if terms.PenaltyRate, err = parseCaseRate("penalty_rate", c.PenaltyRate, "0"); err != nil {
		return terms, err
	}
	if terms.MoraRate, err = parseCaseRate("mora_rate", c.MoraRate, "0"); err != nil {
		return terms, err
	}
	terms.Notes = c.Notes

	if c.Payment != nil {
		var p debt.PartialPayment
		if p.Amount, err = parseCaseMoney("payment.amount", c.Payment.Amount); err != nil {
			return terms, err
		}
		if p.Date, err = parseCaseDate("payment.date", c.Payment.Date); err != nil {
			return terms, err
		}
		p.Note = c.Payment.Note
		terms.Payment = &p
	}
	return terms, nil
}

func (c *arrearsCase) toDomain() (arrears.SupportObligation, error) {
	var ob arrears.SupportObligation
	var err error

	if ob.MonthlyAmount, err = parseCaseMoney("monthly_amount", c.MonthlyAmount); err != nil {
		return ob, err
	}
	ob.Dependents = c.Dependents
	ob.DependentAges = c.DependentAges
	ob.DueDay = c.DueDay
	if ob.StartDate, err = parseCaseDate("start_date", c.StartDate); err != nil {
		return ob, err
	}
	if c.IncomeReference != "" {
		if ob.IncomeReference, err = parseCaseMoney("income_reference", c.IncomeReference); err != nil {
			return ob, err
		}
	}
	if ob.PenaltyRate, err = parseCaseRate("penalty_rate", c.PenaltyRate, "2"); err != nil {
		return ob, err
	}
	if ob.MoraRate, err = parseCaseRate("mora_rate", c.MoraRate, "1"); err != nil {
		return ob, err
	}
	ob.Notes = c.Notes

	for i, p := range c.Payments {
		var payment arrears.Payment
		if payment.Amount, err = parseCaseMoney(fmt.Sprintf("payments[%d].amount", i), p.Amount); err != nil {
			return ob, err
		}
		if payment.Date, err = parseCaseDate(fmt.Sprintf("payments[%d].date", i), p.Date); err != nil {
			return ob, err
		}
		payment.Note = p.Note
		ob.Payments = append(ob.Payments, payment)
	}
	return ob, nil
}

func (c *sentenceCase) toDomain() (sentence.Input, error) {
	var in sentence.Input
	var err error

	in.Sentence.TotalDays = c.TotalDays
	in.Sentence.InitialRegime = sentence.Regime(c.InitialRegime)
	if in.Sentence.ProgressionFraction, err = parseCaseFraction("progression_fraction", c.ProgressionFraction); err != nil {
		return in, err
	}
	if in.Sentence.ReleaseFraction, err = parseCaseFraction("release_fraction", c.ReleaseFraction); err != nil {
		return in, err
	}
	in.IncludeReleaseDay = c.IncludeReleaseDay

	for i, ep := range c.Episodes {
		episode := sentence.CustodyEpisode{
			Type:       sentence.EpisodeType(ep.Type),
			Computable: ep.Computable == nil || *ep.Computable,
			Note:       ep.Note,
		}
		if episode.Start, err = parseCaseDate(fmt.Sprintf("episodes[%d].start", i), ep.Start); err != nil {
			return in, err
		}
		if ep.End != "" {
			end, err := parseCaseDate(fmt.Sprintf("episodes[%d].end", i), ep.End)
			if err != nil {
				return in, err
			}
			episode.End = &end
		}
		in.Episodes = append(in.Episodes, episode)
	}

	for i, g := range c.Remissions {
		grant := sentence.RemissionGrant{
			Days:   g.Days,
			Reason: sentence.RemissionReason(g.Reason),
			Note:   g.Note,
		}
		if grant.Date, err = parseCaseDate(fmt.Sprintf("remissions[%d].date", i), g.Date); err != nil {
			return in, err
		}
		in.Remissions = append(in.Remissions, grant)
	}

	for i, ev := range c.Events {
		event := sentence.ProcessEvent{Type: ev.Type, Note: ev.Note}
		if event.Date, err = parseCaseDate(fmt.Sprintf("events[%d].date", i), ev.Date); err != nil {
			return in, err
		}
		in.Events = append(in.Events, event)
	}
	return in, nil
}
