package sentence_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
	"github.com/juriscalc/calc-engine/sentence"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func fraction(s string) decimal.Decimal {
	v, err := calc.ParseFraction(s)
	if err != nil {
		panic(err)
	}
	return v
}

func datePtr(s string) *calc.Date {
	d := calc.MustDate(s)
	return &d
}

// baseInput: 2190-day sentence (six years), progression at 1/6, release at
// 1/3, one ongoing computable custody episode.
func baseInput() sentence.Input {
	return sentence.Input{
		Sentence: sentence.Sentence{
			TotalDays:           2190,
			InitialRegime:       sentence.RegimeClosed,
			ProgressionFraction: fraction("1/6"),
			ReleaseFraction:     fraction("1/3"),
		},
		Episodes: []sentence.CustodyEpisode{
			{Type: sentence.EpisodeSentence, Start: calc.MustDate("2023-06-01"), Computable: true},
		},
	}
}

// =============================================================================
// TIME SERVED TESTS
// =============================================================================

func TestCompute_OngoingEpisode_InclusiveDayCount(t *testing.T) {
	// GIVEN: custody since Jun 1 2023, ongoing
	// WHEN: computing as of May 30 2024 (the 365th day)
	// THEN: 365 days served, progression threshold 365 reached exactly today

	in := baseInput()
	asOf := calc.MustDate("2024-05-30")

	result, err := sentence.Compute(in, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DaysServed != 365 {
		t.Errorf("days served = %d, want 365", result.DaysServed)
	}
	if result.Progression.Threshold != 365 {
		t.Errorf("progression threshold = %d, want floor(2190/6) = 365", result.Progression.Threshold)
	}
	if !result.Progression.Reached {
		t.Error("progression should be reached on the 365th served day")
	}
	if !result.Progression.Date.Equal(asOf) {
		t.Errorf("progression date = %s, want %s", result.Progression.Date, asOf)
	}
	if !result.InCustody {
		t.Error("subject is in ongoing custody")
	}
	if result.Provisional {
		t.Error("projections are firm while the subject is in custody")
	}
}

func TestCompute_MilestoneOrdering(t *testing.T) {
	in := baseInput()

	result, err := sentence.Compute(in, calc.MustDate("2024-05-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Release.Date.Before(result.Progression.Date) {
		t.Error("release cannot precede progression")
	}
	if result.End.Date.Before(result.Release.Date) {
		t.Error("sentence end cannot precede release")
	}
}

func TestCompute_DiscontinuousCustody_GapsDoNotCount(t *testing.T) {
	// GIVEN: 31 days of custody, 28 days free, then custody again
	// WHEN: computing 10 days into the second episode
	// THEN: served = 31 + 10; the gap contributes nothing

	in := baseInput()
	in.IncludeReleaseDay = true
	in.Episodes = []sentence.CustodyEpisode{
		{Type: sentence.EpisodePreventive, Start: calc.MustDate("2024-01-01"), End: datePtr("2024-01-31"), Computable: true},
		{Type: sentence.EpisodeSentence, Start: calc.MustDate("2024-02-28"), Computable: true},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-03-08"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DaysServed != 41 {
		t.Errorf("days served = %d, want 41", result.DaysServed)
	}
}

func TestCompute_OverlappingEpisodes_CountOnce(t *testing.T) {
	// Preventive detention and a house-arrest order covering the same weeks
	// must not double-credit the overlap.
	in := baseInput()
	in.IncludeReleaseDay = true
	in.Episodes = []sentence.CustodyEpisode{
		{Type: sentence.EpisodePreventive, Start: calc.MustDate("2024-01-01"), End: datePtr("2024-01-31"), Computable: true},
		{Type: sentence.EpisodeHouse, Start: calc.MustDate("2024-01-15"), End: datePtr("2024-02-10"), Computable: true},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Jan 1 .. Feb 10 inclusive = 41 days
	if result.DaysServed != 41 {
		t.Errorf("days served = %d, want 41", result.DaysServed)
	}
}

func TestCompute_NonComputableEpisode_NoCreditButCustody(t *testing.T) {
	// A non-computable episode earns no credit yet still means the subject
	// is in custody.
	in := baseInput()
	in.Episodes = []sentence.CustodyEpisode{
		{Type: sentence.EpisodeTemporary, Start: calc.MustDate("2024-01-01"), Computable: false},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-02-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DaysServed != 0 {
		t.Errorf("days served = %d, want 0", result.DaysServed)
	}
	if !result.InCustody {
		t.Error("non-computable custody is still custody")
	}
}

func TestCompute_IncludeReleaseDay(t *testing.T) {
	// The same closed episode is one day longer when the release day counts.
	episode := []sentence.CustodyEpisode{
		{Type: sentence.EpisodePreventive, Start: calc.MustDate("2024-01-01"), End: datePtr("2024-01-31"), Computable: true},
	}
	asOf := calc.MustDate("2024-06-01")

	excl := baseInput()
	excl.Episodes = episode
	incl := baseInput()
	incl.Episodes = episode
	incl.IncludeReleaseDay = true

	re, err := sentence.Compute(excl, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ri, err := sentence.Compute(incl, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if re.DaysServed != 30 {
		t.Errorf("exclusive served = %d, want 30", re.DaysServed)
	}
	if ri.DaysServed != 31 {
		t.Errorf("inclusive served = %d, want 31", ri.DaysServed)
	}
}

// =============================================================================
// REMISSION TESTS
// =============================================================================

func TestCompute_RemissionAdvancesMilestones(t *testing.T) {
	// GIVEN: 120 days served and a 12-day work remission
	// THEN: net = 132 and the projected dates move 12 days earlier

	plain := baseInput()
	asOf := calc.MustDate("2023-09-28") // 120 days in

	withRemission := baseInput()
	withRemission.Remissions = []sentence.RemissionGrant{
		{Date: calc.MustDate("2023-09-01"), Days: 12, Reason: sentence.RemissionWork},
	}

	rp, err := sentence.Compute(plain, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rr, err := sentence.Compute(withRemission, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rp.DaysServed != 120 || rr.DaysServed != 120 {
		t.Fatalf("served = %d/%d, want 120 both", rp.DaysServed, rr.DaysServed)
	}
	if rr.RemissionDays != 12 || rr.NetDays != 132 {
		t.Errorf("remission = %d net = %d, want 12/132", rr.RemissionDays, rr.NetDays)
	}
	want := rp.End.Date.AddDays(-12)
	if !rr.End.Date.Equal(want) {
		t.Errorf("end with remission = %s, want %s", rr.End.Date, want)
	}
}

func TestCompute_FutureRemission_Ignored(t *testing.T) {
	in := baseInput()
	in.Remissions = []sentence.RemissionGrant{
		{Date: calc.MustDate("2030-01-01"), Days: 100, Reason: sentence.RemissionStudy},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-01-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RemissionDays != 0 {
		t.Errorf("remission days = %d, want 0 (grant postdates as-of)", result.RemissionDays)
	}
}

func TestCompute_RemissionCrossesThresholdOnGrantDate(t *testing.T) {
	// GIVEN: a 100-day sentence, 60 days served when a 45-day remission lands
	// THEN: the end milestone is reached on the grant date itself

	in := sentence.Input{
		Sentence: sentence.Sentence{
			TotalDays:           100,
			InitialRegime:       sentence.RegimeOpen,
			ProgressionFraction: fraction("1/6"),
			ReleaseFraction:     fraction("1/3"),
		},
		Episodes: []sentence.CustodyEpisode{
			{Type: sentence.EpisodeSentence, Start: calc.MustDate("2024-01-01"), Computable: true},
		},
		Remissions: []sentence.RemissionGrant{
			{Date: calc.MustDate("2024-02-29"), Days: 45, Reason: sentence.RemissionReading},
		},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-03-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.End.Reached {
		t.Fatal("end should be reached within the historical timeline")
	}
	if got := result.End.Date.String(); got != "2024-02-29" {
		t.Errorf("end date = %s, want the remission grant date 2024-02-29", got)
	}
}

// =============================================================================
// PROJECTION AND STATUS TESTS
// =============================================================================

func TestCompute_ProjectionFromAsOf(t *testing.T) {
	// GIVEN: 100 days served out of 600, custody ongoing
	// THEN: end projected 500 days after as-of

	in := baseInput()
	in.Sentence.TotalDays = 600
	asOf := calc.MustDate("2023-09-08") // 100 days in

	result, err := sentence.Compute(in, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DaysServed != 100 {
		t.Fatalf("served = %d, want 100", result.DaysServed)
	}
	if result.End.Reached {
		t.Error("end cannot be reached yet")
	}
	want := asOf.AddDays(500)
	if !result.End.Date.Equal(want) {
		t.Errorf("projected end = %s, want %s", result.End.Date, want)
	}
}

func TestCompute_FreeSubject_ProvisionalProjection(t *testing.T) {
	// GIVEN: a closed episode, subject currently free, sentence unfinished
	// THEN: Provisional is set and the report states the assumption

	in := baseInput()
	in.Episodes = []sentence.CustodyEpisode{
		{Type: sentence.EpisodePreventive, Start: calc.MustDate("2024-01-01"), End: datePtr("2024-02-01"), Computable: true},
	}

	result, err := sentence.Compute(in, calc.MustDate("2024-06-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InCustody {
		t.Error("subject should be free")
	}
	if !result.Provisional {
		t.Error("projection for a free subject must be provisional")
	}
	if !strings.Contains(result.Report.String(), "em liberdade") {
		t.Error("report should state the subject is free")
	}
	if !strings.Contains(result.Report.String(), "pressupõem") {
		t.Error("report should state the continuity assumption")
	}
}

func TestCompute_SentenceFullyServed(t *testing.T) {
	in := baseInput()
	in.Sentence.TotalDays = 100
	in.Episodes = []sentence.CustodyEpisode{
		{Type: sentence.EpisodeSentence, Start: calc.MustDate("2024-01-01"), End: datePtr("2024-06-01"), Computable: true},
	}
	in.IncludeReleaseDay = true

	result, err := sentence.Compute(in, calc.MustDate("2024-12-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.End.Reached {
		t.Fatal("end should be reached")
	}
	// 100th day of custody starting Jan 1 is Apr 9.
	if got := result.End.Date.String(); got != "2024-04-09" {
		t.Errorf("end date = %s, want 2024-04-09", got)
	}
	if result.Provisional {
		t.Error("a finished sentence is never provisional")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestCompute_Validation(t *testing.T) {
	asOf := calc.MustDate("2024-06-30")

	tests := []struct {
		name   string
		mutate func(*sentence.Input)
		field  string
	}{
		{"non-positive total", func(in *sentence.Input) { in.Sentence.TotalDays = 0 }, "total_days"},
		{"fraction above one", func(in *sentence.Input) { in.Sentence.ProgressionFraction = fraction("7/6") }, "progression_fraction"},
		{"zero release fraction", func(in *sentence.Input) { in.Sentence.ReleaseFraction = fraction("0") }, "release_fraction"},
		{"episode ends before start", func(in *sentence.Input) {
			in.Episodes = []sentence.CustodyEpisode{{
				Type: sentence.EpisodePreventive, Start: calc.MustDate("2024-02-01"),
				End: datePtr("2024-01-01"), Computable: true,
			}}
		}, "episodes"},
		{"non-positive remission", func(in *sentence.Input) {
			in.Remissions = []sentence.RemissionGrant{{Date: calc.MustDate("2024-01-01"), Days: 0}}
		}, "remissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)

			_, err := sentence.Compute(in, asOf)
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
