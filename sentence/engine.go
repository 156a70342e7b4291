package sentence

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juriscalc/calc-engine/calc"
)

// Compute runs one sentence-execution calculation as of the given date.
// Thresholds are fixed against the original sentence total
// (floor(total x fraction)); the dates on which the running net-served
// counter crosses them come from the chronological walk in timeline.go.
func Compute(in Input, asOf calc.Date) (*Result, error) {
	if err := in.Validate(asOf); err != nil {
		return nil, err
	}

	tl := buildTimeline(in.Episodes, in.Remissions, asOf, in.IncludeReleaseDay)

	r := &Result{
		DaysServed:    tl.servedDays(),
		RemissionDays: tl.remissionDays(),
		InCustody:     inCustody(in.Episodes, asOf),
	}
	r.NetDays = r.DaysServed + r.RemissionDays

	total := decimal.NewFromInt(int64(in.Sentence.TotalDays))
	progThreshold := int(total.Mul(in.Sentence.ProgressionFraction).Floor().IntPart())
	releaseThreshold := int(total.Mul(in.Sentence.ReleaseFraction).Floor().IntPart())

	r.Progression = milestone(tl, progThreshold, asOf)
	r.Release = milestone(tl, releaseThreshold, asOf)
	r.End = milestone(tl, in.Sentence.TotalDays, asOf)

	r.Provisional = !r.InCustody && !r.End.Reached
	r.Report = buildReport(in, asOf, r)
	return r, nil
}

func milestone(tl creditTimeline, threshold int, asOf calc.Date) Milestone {
	date, reached := tl.crossDate(threshold, asOf)
	return Milestone{Date: date, Reached: reached, Threshold: threshold}
}

// inCustody reports whether any episode, computable or not, covers asOf.
// An episode ending exactly on asOf no longer covers it (the subject was
// released that day).
func inCustody(episodes []CustodyEpisode, asOf calc.Date) bool {
	for _, ep := range episodes {
		if ep.Start.After(asOf) {
			continue
		}
		if ep.End == nil || ep.End.After(asOf) {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORT
// =============================================================================

func buildReport(in Input, asOf calc.Date, r *Result) calc.Report {
	var rep calc.Report

	rep.Section("Pena")
	rep.Add("Pena total", fmt.Sprintf("%d dias", in.Sentence.TotalDays))
	rep.Add("Regime inicial", string(in.Sentence.InitialRegime))
	rep.Add("Fração para progressão", in.Sentence.ProgressionFraction.String())
	rep.Add("Fração para livramento", in.Sentence.ReleaseFraction.String())
	rep.Add("Data de apuração", asOf.String())

	rep.Section("Custódia")
	for i, ep := range in.Episodes {
		end := "em curso"
		if ep.End != nil {
			end = ep.End.String()
		}
		credit := "computável"
		if !ep.Computable {
			credit = "não computável"
		}
		rep.Add(fmt.Sprintf("Período %d (%s)", i+1, episodeLabel(ep.Type)),
			fmt.Sprintf("%s a %s, %s", ep.Start, end, credit))
	}
	rep.Add("Dias cumpridos", fmt.Sprintf("%d", r.DaysServed))

	rep.Section("Remições")
	for _, g := range in.Remissions {
		rep.Add(g.Date.String(), fmt.Sprintf("%d dias (%s)", g.Days, remissionLabel(g.Reason)))
	}
	rep.Add("Total remido", fmt.Sprintf("%d dias", r.RemissionDays))
	rep.Add("Total computado", fmt.Sprintf("%d dias", r.NetDays))

	rep.Section("Marcos da execução")
	addMilestone(&rep, "Progressão de regime", r.Progression)
	addMilestone(&rep, "Livramento condicional", r.Release)
	addMilestone(&rep, "Término da pena", r.End)
	if r.Provisional {
		rep.Note("Datas projetadas pressupõem retomada e continuidade ininterrupta da custódia computável; o apenado encontra-se atualmente em liberdade.")
	} else if !r.End.Reached {
		rep.Note("Datas futuras pressupõem continuidade ininterrupta da custódia computável.")
	}

	rep.Section("Situação atual")
	if r.InCustody {
		rep.Add("Situação", "em custódia")
	} else {
		rep.Add("Situação", "em liberdade")
	}

	if len(in.Events) > 0 {
		rep.Section("Eventos do processo")
		for _, ev := range in.Events {
			rep.Add(ev.Date.String(), fmt.Sprintf("%s - %s", ev.Type, ev.Note))
		}
	}

	rep.Section("Fundamento legal")
	rep.Note("Progressão de regime conforme o art. 112 da Lei de Execução Penal.")
	rep.Note("Remição de pena na forma do art. 126 da Lei de Execução Penal.")
	rep.Note("Livramento condicional conforme o art. 83 do Código Penal.")

	return rep
}

func addMilestone(rep *calc.Report, label string, m Milestone) {
	if m.Reached {
		rep.Add(label, fmt.Sprintf("atingido em %s (%d dias exigidos)", m.Date, m.Threshold))
	} else {
		rep.Add(label, fmt.Sprintf("projetado para %s (%d dias exigidos)", m.Date, m.Threshold))
	}
}

func episodeLabel(t EpisodeType) string {
	switch t {
	case EpisodeFlagrant:
		return "prisão em flagrante"
	case EpisodePreventive:
		return "prisão preventiva"
	case EpisodeTemporary:
		return "prisão temporária"
	case EpisodeSentence:
		return "cumprimento de pena"
	case EpisodeHouse:
		return "prisão domiciliar"
	case EpisodeCommitment:
		return "internação"
	default:
		return "outro"
	}
}

func remissionLabel(r RemissionReason) string {
	switch r {
	case RemissionWork:
		return "trabalho"
	case RemissionStudy:
		return "estudo"
	case RemissionReading:
		return "leitura"
	default:
		return "outro"
	}
}
