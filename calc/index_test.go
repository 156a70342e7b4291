package calc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CUMULATIVE FACTOR TESTS
// =============================================================================

func ipcaTable() *StaticTable {
	table := NewStaticTable()
	table.Set(IndexIPCA, "2024-02", decimal.RequireFromString("1.01"))
	table.Set(IndexIPCA, "2024-03", decimal.RequireFromString("1.02"))
	table.Set(IndexIPCA, "2024-04", decimal.RequireFromString("1.005"))
	return table
}

func TestFactor_ProductOfMonthsAfterStart(t *testing.T) {
	// GIVEN: monthly factors for Feb-Apr 2024
	// WHEN: computing the factor from a January date to a March date
	// THEN: the product covers February and March, not January

	got, err := ipcaTable().Factor(IndexIPCA, MustDate("2024-01-15"), MustDate("2024-03-20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := decimal.RequireFromString("1.0302") // 1.01 * 1.02
	if !got.Equal(want) {
		t.Errorf("factor = %s, want %s", got, want)
	}
}

func TestFactor_SameMonthIsOne(t *testing.T) {
	// Two dates in the same month span no complete month: factor exactly 1.
	got, err := ipcaTable().Factor(IndexIPCA, MustDate("2024-02-01"), MustDate("2024-02-29"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("factor = %s, want 1", got)
	}
}

func TestFactor_SameDateIsOne(t *testing.T) {
	d := MustDate("2024-03-10")
	got, err := ipcaTable().Factor(IndexIPCA, d, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("factor = %s, want 1", got)
	}
}

func TestFactor_MissingMonthIsLookupError(t *testing.T) {
	// GIVEN: a table with no factor for May 2024
	// WHEN: a range crossing May is requested
	// THEN: a LookupError names the missing month; never a silent 1

	_, err := ipcaTable().Factor(IndexIPCA, MustDate("2024-03-01"), MustDate("2024-05-15"))
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected *LookupError, got %T", err)
	}
	if lookupErr.Month != "2024-05" {
		t.Errorf("missing month = %q, want 2024-05", lookupErr.Month)
	}
	if lookupErr.Index != IndexIPCA {
		t.Errorf("index = %q, want ipca", lookupErr.Index)
	}
}

func TestFactor_IndexNoneSkipsLookup(t *testing.T) {
	// An empty table would fail any lookup; IndexNone must not perform one.
	got, err := NewStaticTable().Factor(IndexNone, MustDate("2024-01-01"), MustDate("2024-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("factor = %s, want 1", got)
	}
}

func TestUnity_AlwaysOne(t *testing.T) {
	got, err := Unity{}.Factor(IndexIPCA, MustDate("2020-01-01"), MustDate("2024-01-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("factor = %s, want 1", got)
	}
}

func TestIndexCode_Valid(t *testing.T) {
	for _, code := range append(KnownIndexes(), IndexNone) {
		if !code.Valid() {
			t.Errorf("%q should be valid", code)
		}
	}
	if IndexCode("bitcoin").Valid() {
		t.Error("unknown code should be invalid")
	}
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestReport_String(t *testing.T) {
	var r Report
	r.Section("Total devido")
	r.AddMoney("Total devido", NewMoney(decimal.RequireFromString("10206.666")))
	r.Note("Observação final.")

	want := "Total devido\nTotal devido: R$ 10206.67\nObservação final."
	if got := r.String(); got != want {
		t.Errorf("report rendered as:\n%s\nwant:\n%s", got, want)
	}
}
