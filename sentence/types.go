/*
Package sentence computes criminal-sentence execution schedules: cumulative
time served across discontinuous custody episodes, credited remission days,
and the calendar dates of regime progression, conditional release and
sentence end.

CREDIT ACCOUNTING:
  Custody may be interrupted (release and re-arrest), and episodes may
  overlap or be flagged non-computable. Credit is therefore accumulated
  over a merged timeline of computable intervals - one day of credit per
  covered calendar day, counted once however many episodes cover it - plus
  lump remission credits on their grant dates. Progression/release/end
  thresholds are fixed day counts against the ORIGINAL sentence total
  (floor(total x fraction)), reached by this running counter, never by
  projecting from a single anchor date.

PROJECTIONS:
  A threshold not yet reached by the historical timeline is projected
  forward assuming uninterrupted computable custody from the as-of date.
  When the subject is currently free that projection is provisional, and
  the report says so rather than asserting the dates as fact.

SEE ALSO:
  - timeline.go: interval merging and the chronological credit walk
  - engine.go: thresholds, status and report
*/
package sentence

import (
	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// INPUT
// =============================================================================

// EpisodeType classifies a custody episode.
type EpisodeType string

const (
	EpisodeFlagrant   EpisodeType = "flagrant_arrest"
	EpisodePreventive EpisodeType = "preventive_detention"
	EpisodeTemporary  EpisodeType = "temporary_detention"
	EpisodeSentence   EpisodeType = "sentence_service"
	EpisodeHouse      EpisodeType = "house_arrest"
	EpisodeCommitment EpisodeType = "institutional_commitment"
	EpisodeOther      EpisodeType = "other"
)

// CustodyEpisode is one continuous custody period. End absent = ongoing.
// Overlapping episodes are permitted; overlapping computable days credit
// once.
type CustodyEpisode struct {
	Type       EpisodeType
	Start      calc.Date
	End        *calc.Date
	Computable bool
	Note       string
}

// RemissionReason classifies a remission grant.
type RemissionReason string

const (
	RemissionWork    RemissionReason = "work"
	RemissionStudy   RemissionReason = "study"
	RemissionReading RemissionReason = "reading"
	RemissionOther   RemissionReason = "other"
)

// RemissionGrant is a day-for-day sentence credit.
type RemissionGrant struct {
	Date   calc.Date
	Days   int
	Reason RemissionReason
	Note   string
}

// ProcessEvent is an informational timeline annotation. It never enters
// the arithmetic.
type ProcessEvent struct {
	Date calc.Date
	Type string
	Note string
}

// Regime is a custodial regime.
type Regime string

const (
	RegimeClosed   Regime = "fechado"
	RegimeSemiOpen Regime = "semiaberto"
	RegimeOpen     Regime = "aberto"
)

// Sentence holds the sentence terms and the jurisdiction fractions.
type Sentence struct {
	TotalDays           int
	InitialRegime       Regime
	ProgressionFraction decimal.Decimal // (0, 1]
	ReleaseFraction     decimal.Decimal // (0, 1]
}

// Input is the full input record of one calculation.
type Input struct {
	Sentence   Sentence
	Episodes   []CustodyEpisode
	Remissions []RemissionGrant
	Events     []ProcessEvent

	// IncludeReleaseDay controls whether the end day of a closed episode
	// counts as a served day.
	IncludeReleaseDay bool
}

// Validate checks the input before any arithmetic.
func (in Input) Validate(asOf calc.Date) error {
	if in.Sentence.TotalDays <= 0 {
		return calc.Invalid("total_days", "must be positive")
	}
	if !fractionInRange(in.Sentence.ProgressionFraction) {
		return calc.Invalid("progression_fraction", "must be in (0, 1]")
	}
	if !fractionInRange(in.Sentence.ReleaseFraction) {
		return calc.Invalid("release_fraction", "must be in (0, 1]")
	}
	if asOf.IsZero() {
		return calc.Invalid("as_of", "is required")
	}
	for i, ep := range in.Episodes {
		if ep.Start.IsZero() {
			return calc.Invalid("episodes", "episode %d: start date is required", i+1)
		}
		if ep.End != nil && ep.End.Before(ep.Start) {
			return calc.Invalid("episodes", "episode %d: ends %s before it starts %s", i+1, *ep.End, ep.Start)
		}
	}
	for i, g := range in.Remissions {
		if g.Days <= 0 {
			return calc.Invalid("remissions", "grant %d: days must be positive", i+1)
		}
		if g.Date.IsZero() {
			return calc.Invalid("remissions", "grant %d: credit date is required", i+1)
		}
	}
	return nil
}

func fractionInRange(f decimal.Decimal) bool {
	return f.IsPositive() && !f.GreaterThan(decimal.NewFromInt(1))
}

// =============================================================================
// RESULT
// =============================================================================

// Milestone is a computed or projected threshold date.
type Milestone struct {
	Date      calc.Date
	Reached   bool // true when the threshold was crossed in the historical timeline
	Threshold int  // required net-served days
}

// Result is the outcome of one sentence-execution calculation.
type Result struct {
	DaysServed    int // computable custody days through asOf
	RemissionDays int // remission credits dated on or before asOf
	NetDays       int // DaysServed + RemissionDays

	Progression Milestone
	Release     Milestone
	End         Milestone

	InCustody   bool
	Provisional bool // projections assume custody that is not currently happening

	Report calc.Report
}
