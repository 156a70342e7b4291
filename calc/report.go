package calc

import (
	"strings"
)

// =============================================================================
// REPORT - Ordered, human-readable calculation breakdown
// =============================================================================

// Report is the line-oriented breakdown every engine returns alongside its
// numeric totals. It is suitable for direct display or copy-to-clipboard.
// Section headers are significant to downstream formatting (the consuming
// UI recognizes them by substring), so their order follows the boundary
// contract: principal, correction, interest, penalty, mora, total, footer.
type Report struct {
	Lines []ReportLine
}

// ReportLine is one labeled line. Header lines have an empty Value and
// render as the label alone.
type ReportLine struct {
	Label  string
	Value  string
	Header bool
}

// Section appends a section header.
func (r *Report) Section(title string) {
	r.Lines = append(r.Lines, ReportLine{Label: title, Header: true})
}

// Add appends a labeled value line.
func (r *Report) Add(label, value string) {
	r.Lines = append(r.Lines, ReportLine{Label: label, Value: value})
}

// AddMoney appends a labeled currency line rendered as "R$ <amount>".
func (r *Report) AddMoney(label string, m Money) {
	r.Add(label, "R$ "+m.RoundCents().String())
}

// Note appends an unlabeled remark line.
func (r *Report) Note(text string) {
	r.Lines = append(r.Lines, ReportLine{Label: text})
}

// String renders the report. Headers are followed by their lines; labeled
// lines render as "Label: Value".
func (r *Report) String() string {
	var b strings.Builder
	for i, l := range r.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case l.Header:
			b.WriteString(l.Label)
		case l.Value == "":
			b.WriteString(l.Label)
		default:
			b.WriteString(l.Label)
			b.WriteString(": ")
			b.WriteString(l.Value)
		}
	}
	return b.String()
}
