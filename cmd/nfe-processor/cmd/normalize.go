package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
)

var normalizeOutput string

// NormalizeResult pairs a file with its normalized document or error.
type NormalizeResult struct {
	File     string          `json:"file"`
	Document *model.Document `json:"document,omitempty"`
	Error    string          `json:"error,omitempty"`
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [files...]",
	Short: "Normalize fiscal XML files into structured documents",
	Long: `Normalize one or more NFe/CTe XML files into the structured document
model. Files that fail to parse are reported individually; one broken
file never stops the others.

Examples:
  nfe-processor normalize nota.xml
  nfe-processor normalize notas/*.xml -o documentos.json
  nfe-processor normalize notas/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Output file (default: stdout)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to normalize\n", len(files))

	results := make([]NormalizeResult, 0, len(files))
	for _, file := range files {
		printVerbose("Normalizing: %s\n", file)

		result := NormalizeResult{File: file}
		data, err := os.ReadFile(file)
		if err != nil {
			result.Error = err.Error()
		} else if doc, err := nfe.ParseNamed(file, data); err != nil {
			result.Error = err.Error()
		} else {
			result.Document = doc
		}
		results = append(results, result)
	}

	return outputNormalizeResults(results)
}

func outputNormalizeResults(results []NormalizeResult) error {
	out := os.Stdout
	if normalizeOutput != "" {
		f, err := os.Create(normalizeOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)

	case "table":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tTYPE\tNUMBER\tISSUER\tTOTAL\tERROR")
		for _, r := range results {
			if r.Document == nil {
				fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
				r.File, r.Document.Type, r.Document.Identification.Number,
				r.Document.Issuer.Name, r.Document.Totals.Grand)
		}
		return tw.Flush()

	case "csv":
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"file", "type", "number", "issuer", "total", "error"}); err != nil {
			return err
		}
		for _, r := range results {
			record := []string{r.File, "", "", "", "", r.Error}
			if r.Document != nil {
				record[1] = string(r.Document.Type)
				record[2] = r.Document.Identification.Number
				record[3] = r.Document.Issuer.Name
				record[4] = r.Document.Totals.Grand.String()
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}
