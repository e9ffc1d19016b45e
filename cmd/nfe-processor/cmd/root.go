package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/config"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	renderURL    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nfe-processor",
	Short: "Process Brazilian fiscal XML documents (NFe and CTe)",
	Long: `NFe Processor is a CLI tool for working with Brazilian fiscal XML
documents.

Supports:
  - Normalizing NFe/CTe XML into a structured document model
  - Batch conversion to PDF (DANFE) through a rendering service
  - Flattened tabular reports with export to xlsx/csv
  - Access key and structure validation

Examples:
  # Normalize a single XML file
  nfe-processor normalize nota.xml

  # Convert a directory of XMLs to a zip of PDFs
  nfe-processor convert notas/ -o documentos.zip

  # Report with the products projection, exported as xlsx
  nfe-processor report notas/*.xml --model "NFe Emitente/Destinatário/Produtos" -o relatorio.xlsx

  # Validate access keys
  nfe-processor validate 43200714200166000187550010000000046550000046`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table, csv)")
	rootCmd.PersistentFlags().StringVar(&renderURL, "render-url", "", "Rendering service base URL (env: NFE_RENDER_URL)")

	cobra.OnInitialize(initConfig)
}

// initConfig loads .env plus the environment; flags win over both.
func initConfig() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		loaded = &config.Config{}
	}
	cfg = loaded

	if renderURL == "" {
		renderURL = cfg.RenderURL
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// collectFiles expands globs and directories into a flat list of XML
// file paths.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isXMLFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
				continue
			}
			files = append(files, arg)
			continue
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err == nil && !info.IsDir() {
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func isXMLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}
