/*
main.go - Offline calculation CLI

PURPOSE:
  Runs a single calculation from a YAML case file, entirely offline: the
  case file carries any correction factors it needs. Prints a summary
  table followed by the full report.

USAGE:
  juriscalc debt case.yaml
  juriscalc arrears case.yaml --as-of 2024-06-30
  juriscalc sentence case.yaml

SEE ALSO:
  - casefile.go: the YAML format
*/
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/juriscalc/calc-engine/arrears"
	"github.com/juriscalc/calc-engine/debt"
	"github.com/juriscalc/calc-engine/sentence"
)

var asOfFlag string

func main() {
	root := &cobra.Command{
		Use:           "juriscalc",
		Short:         "Financial and sentence calculations for Brazilian legal practice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&asOfFlag, "as-of", "", "calculation date (YYYY-MM-DD, default: case file or today)")

	root.AddCommand(debtCmd(), arrearsCmd(), sentenceCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func debtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debt <case.yaml>",
		Short: "Bank-contract debt: correction, interest, penalty and mora",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCaseFile(args[0])
			if err != nil {
				return err
			}
			if cf.Debt == nil {
				return fmt.Errorf("case file has no debt section")
			}

			terms, err := cf.Debt.toDomain()
			if err != nil {
				return err
			}
			asOf, err := cf.asOf(asOfFlag)
			if err != nil {
				return err
			}
			indexes, err := cf.factorTable()
			if err != nil {
				return err
			}

			result, err := debt.Compute(terms, asOf, indexes)
			if err != nil {
				return err
			}

			t := newTable("Componente", "Valor (R$)")
			t.AppendRow(table.Row{"Principal", result.Principal.String()})
			t.AppendRow(table.Row{"Correção monetária", result.Correction.String()})
			t.AppendRow(table.Row{"Juros", result.Interest.String()})
			t.AppendRow(table.Row{"Multa", result.Penalty.String()})
			t.AppendRow(table.Row{"Juros de mora", result.Mora.String()})
			if !result.PaymentApplied.IsZero() {
				t.AppendRow(table.Row{"Pagamento aplicado", result.PaymentApplied.Neg().String()})
			}
			t.AppendFooter(table.Row{"Total", result.Total.String()})
			t.Render()

			fmt.Println()
			fmt.Println(result.Report.String())
			return nil
		},
	}
}

func arrearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arrears <case.yaml>",
		Short: "Alimony arrears: installment schedule netted against payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCaseFile(args[0])
			if err != nil {
				return err
			}
			if cf.Arrears == nil {
				return fmt.Errorf("case file has no arrears section")
			}

			ob, err := cf.Arrears.toDomain()
			if err != nil {
				return err
			}
			asOf, err := cf.asOf(asOfFlag)
			if err != nil {
				return err
			}

			result, err := arrears.Compute(ob, asOf)
			if err != nil {
				return err
			}

			t := newTable("Parcela", "Vencimento", "Valor", "Pago", "Em aberto", "Multa", "Mora", "Situação")
			for _, row := range result.Installments {
				t.AppendRow(table.Row{
					row.Seq, row.DueDate.String(),
					row.Amount.String(), row.Paid.String(), row.Unpaid.String(),
					row.Penalty.String(), row.Mora.String(),
					installmentLabel(row.Status),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", result.Total.String()})
			t.Render()

			fmt.Println()
			fmt.Println(result.Report.String())
			return nil
		},
	}
}

func sentenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentence <case.yaml>",
		Short: "Sentence execution: time served, remission and milestone dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadCaseFile(args[0])
			if err != nil {
				return err
			}
			if cf.Sent == nil {
				return fmt.Errorf("case file has no sentence section")
			}

			in, err := cf.Sent.toDomain()
			if err != nil {
				return err
			}
			asOf, err := cf.asOf(asOfFlag)
			if err != nil {
				return err
			}

			result, err := sentence.Compute(in, asOf)
			if err != nil {
				return err
			}

			t := newTable("Marco", "Data", "Situação", "Dias exigidos")
			t.AppendRow(milestoneRow("Progressão de regime", result.Progression))
			t.AppendRow(milestoneRow("Livramento condicional", result.Release))
			t.AppendRow(milestoneRow("Término da pena", result.End))
			t.AppendFooter(table.Row{"Dias computados", result.NetDays, "", ""})
			t.Render()

			fmt.Println()
			fmt.Println(result.Report.String())
			return nil
		},
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func newTable(headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(headers))
	return t
}

func milestoneRow(label string, m sentence.Milestone) table.Row {
	status := "projetado"
	if m.Reached {
		status = "atingido"
	}
	return table.Row{label, m.Date.String(), status, m.Threshold}
}

func installmentLabel(s arrears.InstallmentStatus) string {
	switch s {
	case arrears.InstallmentPaid:
		return "quitada"
	case arrears.InstallmentPartial:
		return "parcial"
	default:
		return "em aberto"
	}
}
