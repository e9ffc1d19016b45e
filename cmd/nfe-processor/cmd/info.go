package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/parser/nfe"
)

// InfoResult describes one inspected file.
type InfoResult struct {
	File string `json:"file"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show the detected document type of fiscal XML files",
	Long: `Inspect files and report the detected document type (NFe, CTe or
unknown) without fully normalizing them.

Examples:
  nfe-processor info nota.xml
  nfe-processor info notas/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	results := make([]InfoResult, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		docType := nfe.DetectType(data)
		name := string(docType)
		if name == "" {
			name = "unknown"
		}
		results = append(results, InfoResult{File: file, Type: name, Size: len(data)})
	}

	switch outputFormat {
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tTYPE\tSIZE")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", r.File, r.Type, r.Size)
		}
		return tw.Flush()
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
}
