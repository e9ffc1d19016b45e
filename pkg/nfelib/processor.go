package nfelib

import (
	"context"
	"io"

	"github.com/rezonia/nfe-processor/internal/convert"
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/render"
	"github.com/rezonia/nfe-processor/internal/report"
)

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	// RenderURL is the base URL of the DANFE rendering service. Required
	// for Convert; Parse and Report work without it.
	RenderURL string
	// Workers bounds conversion parallelism. Zero means the default.
	Workers int
	// ValidatePDF rejects rendered bytes that are not valid PDFs.
	ValidatePDF bool
}

// Processor bundles normalization, conversion and reporting behind one
// façade.
type Processor struct {
	pipeline *convert.Pipeline
}

// NewProcessor creates a processor with the given options.
func NewProcessor(opts ProcessorOptions) *Processor {
	var pipelineOpts []convert.Option
	if opts.Workers > 0 {
		pipelineOpts = append(pipelineOpts, convert.WithWorkers(opts.Workers))
	}
	if opts.ValidatePDF {
		pipelineOpts = append(pipelineOpts, convert.WithPDFValidation())
	}

	return &Processor{
		pipeline: convert.NewPipeline(render.NewClient(opts.RenderURL), pipelineOpts...),
	}
}

// Parse normalizes a single document read from r.
func (p *Processor) Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &model.ParseError{Message: "failed to read input", Cause: err}
	}
	return Parse(data)
}

// File is one named XML input for batch operations.
type File struct {
	Name string
	Data []byte
}

// Failure re-exports the per-item conversion failure record.
type Failure = convert.Failure

// Row re-exports the report row type: projected column key → display
// string.
type Row = report.Row

// ConvertResult carries the batch conversion outcome.
type ConvertResult struct {
	// Archive is the zip of converted PDFs, entry per artifact.
	Archive []byte
	// Converted counts successful items.
	Converted int
	// Failures describes every item that did not convert.
	Failures []Failure
}

// Convert renders the files to PDF and packages them as a zip. At most
// 100 files per batch; individual failures do not abort the batch, but
// a batch where nothing converts returns an error.
func (p *Processor) Convert(ctx context.Context, files []File) (*ConvertResult, error) {
	items := make([]convert.Item, len(files))
	for i, f := range files {
		items[i] = convert.Item{Name: f.Name, Data: f.Data}
	}

	result, err := p.pipeline.Convert(ctx, items)
	if err != nil {
		return nil, err
	}

	archive, err := convert.Package(result.Artifacts)
	if err != nil {
		return nil, err
	}

	return &ConvertResult{
		Archive:   archive,
		Converted: len(result.Artifacts),
		Failures:  result.Failures,
	}, nil
}

// ReportModels lists the available report projections by name.
func ReportModels() []string {
	var names []string
	for _, p := range report.Projections() {
		names = append(names, p.Name)
	}
	return names
}

// Report flattens the documents under the named projection (empty name
// means the default), filters by query, and returns the full filtered
// row set.
func Report(docs []*Document, projectionName, query string) ([]Row, error) {
	p := report.Default()
	if projectionName != "" {
		found, ok := report.Lookup(projectionName)
		if !ok {
			return nil, model.NewValidationError("model", projectionName, "unknown report model")
		}
		p = found
	}
	return report.Filter(report.Flatten(docs, p), query), nil
}
