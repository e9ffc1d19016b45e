package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/convert"
	"github.com/rezonia/nfe-processor/internal/render"
)

var (
	convertOutput   string
	convertWorkers  int
	convertTimeout  time.Duration
	convertValidate bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert fiscal XML files to a zip of DANFE PDFs",
	Long: `Convert one or more NFe XML files to PDF through the rendering
service and bundle the results into a zip archive. Each entry keeps
the source file name with the extension replaced by .pdf.

A batch accepts at most 100 files. Files that fail to parse or render
are listed on stderr and left out of the archive; the remaining files
are still converted.

Examples:
  nfe-processor convert nota.xml
  nfe-processor convert notas/ -o documentos.zip
  nfe-processor convert notas/*.xml --workers 8 --render-url http://render.internal`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "documentos.zip", "Output zip file")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "Concurrent conversions (default: 4)")
	convertCmd.Flags().DurationVar(&convertTimeout, "timeout", 5*time.Minute, "Total batch timeout")
	convertCmd.Flags().BoolVar(&convertValidate, "validate-pdf", false, "Reject rendered bytes that are not valid PDFs")
}

func runConvert(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to convert")
	}

	items := make([]convert.Item, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		items = append(items, convert.Item{Name: file, Data: data})
	}

	printVerbose("Converting %d files via %s\n", len(items), renderURL)

	opts := []convert.Option{}
	if convertWorkers > 0 {
		opts = append(opts, convert.WithWorkers(convertWorkers))
	}
	if convertValidate {
		opts = append(opts, convert.WithPDFValidation())
	}
	pipeline := convert.NewPipeline(render.NewClient(renderURL), opts...)

	ctx, cancel := context.WithTimeout(cmd.Context(), convertTimeout)
	defer cancel()

	result, err := pipeline.Convert(ctx, items)
	if err != nil {
		return err
	}

	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %s\n", f.Name, f.Reason)
	}

	archive, err := convert.Package(result.Artifacts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(convertOutput, archive, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Converted %d/%d files into %s\n",
		len(result.Artifacts), len(items), convertOutput)
	return nil
}
