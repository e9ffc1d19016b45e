package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
	"github.com/rezonia/nfe-processor/internal/report"
)

var (
	reportOutput  string
	reportModel   string
	reportSearch  string
	reportPage    int
	reportPerPage int
)

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Flatten fiscal XML files into a tabular report",
	Long: `Flatten one or more NFe/CTe XML files into report rows under a named
projection ("model"). Projections with product columns produce one row
per line item; the others produce one row per document.

The --search filter matches any projected value, case-insensitively,
before pagination. Exports (-o file.xlsx / file.csv) always cover the
full filtered set, not just the current page.

Available models:
` + modelList() + `

Examples:
  nfe-processor report notas/*.xml
  nfe-processor report notas/ --model "NFe Emitente/Destinatário/Produtos" -o relatorio.xlsx
  nfe-processor report notas/ --search "14200166000187" -f csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func modelList() string {
	var b strings.Builder
	for _, p := range report.Projections() {
		fmt.Fprintf(&b, "  - %s\n", p.Name)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file; .xlsx and .csv select the format")
	reportCmd.Flags().StringVar(&reportModel, "model", "", "Report model (default: "+report.Default().Name+")")
	reportCmd.Flags().StringVar(&reportSearch, "search", "", "Filter rows by substring, any column")
	reportCmd.Flags().IntVar(&reportPage, "page", 1, "1-based page to print (ignored for exports)")
	reportCmd.Flags().IntVar(&reportPerPage, "per-page", 100, "Rows per page (ignored for exports)")
}

func runReport(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to report on")
	}

	var docs []*model.Document
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", file, err)
			continue
		}
		doc, err := nfe.ParseNamed(file, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", file, err)
			continue
		}
		docs = append(docs, doc)
	}

	tbl := report.NewTable()
	tbl.SetDocuments(docs)
	if reportModel != "" && !tbl.SetProjection(reportModel) {
		return fmt.Errorf("unknown report model %q", reportModel)
	}
	tbl.SetQuery(reportSearch)
	tbl.SetPerPage(reportPerPage)
	tbl.SetPage(reportPage)

	if reportOutput != "" {
		return exportReport(tbl)
	}
	return printReport(tbl)
}

func exportReport(tbl *report.Table) error {
	f, err := os.Create(reportOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := tbl.Filtered()
	printVerbose("Exporting %d rows to %s\n", len(rows), reportOutput)

	switch {
	case strings.HasSuffix(reportOutput, ".xlsx"):
		return report.WriteXLSX(f, tbl.Projection(), rows)
	case strings.HasSuffix(reportOutput, ".csv"):
		return report.WriteCSV(f, tbl.Projection(), rows)
	default:
		return fmt.Errorf("output must end in .xlsx or .csv")
	}
}

func printReport(tbl *report.Table) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl.Rows())

	case "csv":
		return report.WriteCSV(os.Stdout, tbl.Projection(), tbl.Rows())

	case "table":
		p := tbl.Projection()
		for _, key := range p.Columns {
			fmt.Printf("%s\t", report.HeaderLabel(key))
		}
		fmt.Println()
		for _, row := range tbl.Rows() {
			for _, key := range p.Columns {
				fmt.Printf("%s\t", row[key])
			}
			fmt.Println()
		}
		fmt.Printf("\n%d rows (page %d)\n", tbl.TotalRows(), tbl.Page())
		return nil

	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}
