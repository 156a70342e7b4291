package sentence

import (
	"sort"

	"github.com/juriscalc/calc-engine/calc"
)

// =============================================================================
// CUSTODY TIMELINE - merged computable intervals + lump remission credits
// =============================================================================

// interval is an inclusive range of credited calendar days.
type interval struct {
	start calc.Date
	last  calc.Date
}

func (iv interval) days() int { return calc.DaysBetween(iv.start, iv.last) + 1 }

// lump is a remission credit landing on a single date.
type lump struct {
	date calc.Date
	days int
}

// creditTimeline is the chronological credit structure the engine walks:
// sorted non-overlapping intervals (1 day of credit per covered day) and
// sorted lump credits.
type creditTimeline struct {
	intervals []interval
	lumps     []lump
}

// buildTimeline clips computable episodes to asOf, merges overlaps and
// gathers remission credits dated on or before asOf. includeReleaseDay
// decides whether a closed episode's end day is credited; the asOf day of
// an ongoing episode always counts (it has been served).
func buildTimeline(episodes []CustodyEpisode, remissions []RemissionGrant, asOf calc.Date, includeReleaseDay bool) creditTimeline {
	var raw []interval
	for _, ep := range episodes {
		if !ep.Computable || ep.Start.After(asOf) {
			continue
		}
		last := asOf
		if ep.End != nil {
			last = *ep.End
			if !includeReleaseDay {
				last = last.AddDays(-1)
			}
			last = last.Min(asOf)
		}
		if last.Before(ep.Start) {
			continue
		}
		raw = append(raw, interval{start: ep.Start, last: last})
	}

	sort.Slice(raw, func(i, j int) bool { return raw[i].start.Before(raw[j].start) })

	var merged []interval
	for _, iv := range raw {
		if n := len(merged); n > 0 && !iv.start.After(merged[n-1].last.AddDays(1)) {
			if iv.last.After(merged[n-1].last) {
				merged[n-1].last = iv.last
			}
			continue
		}
		merged = append(merged, iv)
	}

	var lumps []lump
	for _, g := range remissions {
		if g.Date.After(asOf) {
			continue
		}
		lumps = append(lumps, lump{date: g.Date, days: g.Days})
	}
	sort.SliceStable(lumps, func(i, j int) bool { return lumps[i].date.Before(lumps[j].date) })

	return creditTimeline{intervals: merged, lumps: lumps}
}

// servedDays is the total credited custody days.
func (tl creditTimeline) servedDays() int {
	total := 0
	for _, iv := range tl.intervals {
		total += iv.days()
	}
	return total
}

// remissionDays is the total lump credit.
func (tl creditTimeline) remissionDays() int {
	total := 0
	for _, l := range tl.lumps {
		total += l.days
	}
	return total
}

// crossDate finds the calendar date on which the running net-served
// counter reaches n. It walks the historical timeline chronologically,
// interleaving lump credits at their grant dates; when history is not
// enough it projects forward from asOf assuming uninterrupted computable
// custody. The second return value reports whether the threshold was
// crossed within the historical timeline.
func (tl creditTimeline) crossDate(n int, asOf calc.Date) (calc.Date, bool) {
	if n <= 0 {
		if len(tl.intervals) > 0 {
			return tl.intervals[0].start, true
		}
		return asOf, false
	}

	cum := 0
	li := 0

	applyLumpsBefore := func(limit calc.Date) (calc.Date, bool) {
		for li < len(tl.lumps) && tl.lumps[li].date.Before(limit) {
			cum += tl.lumps[li].days
			if cum >= n {
				return tl.lumps[li].date, true
			}
			li++
		}
		return calc.Date{}, false
	}

	for _, iv := range tl.intervals {
		if d, ok := applyLumpsBefore(iv.start); ok {
			return d, true
		}

		cursor := iv.start
		for li < len(tl.lumps) && !tl.lumps[li].date.After(iv.last) {
			span := calc.DaysBetween(cursor, tl.lumps[li].date) + 1
			if cum+span >= n {
				return cursor.AddDays(n - cum - 1), true
			}
			cum += span
			cum += tl.lumps[li].days
			if cum >= n {
				return tl.lumps[li].date, true
			}
			cursor = tl.lumps[li].date.AddDays(1)
			li++
		}
		if cursor.BeforeOrEqual(iv.last) {
			span := calc.DaysBetween(cursor, iv.last) + 1
			if cum+span >= n {
				return cursor.AddDays(n - cum - 1), true
			}
			cum += span
		}
	}

	// Lumps dated after the last custody interval.
	for li < len(tl.lumps) {
		cum += tl.lumps[li].days
		if cum >= n {
			return tl.lumps[li].date, true
		}
		li++
	}

	// History exhausted: project forward. The asOf day is already counted
	// when an interval covers it, so each further custody day adds one.
	return asOf.AddDays(n - cum), false
}
