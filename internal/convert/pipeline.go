// Package convert runs batches of fiscal XMLs through normalization and
// the rendering service, producing per-item PDF artifacts and a zip
// archive. Items fail individually; a batch never aborts because one
// document is broken.
package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
	"github.com/rezonia/nfe-processor/internal/render"
)

// MaxBatchSize caps how many inputs a single batch accepts.
const MaxBatchSize = 100

const defaultWorkers = 4

// ErrBatchTooLarge rejects an oversized batch at intake, before any
// item is processed.
var ErrBatchTooLarge = fmt.Errorf("batch exceeds the maximum of %d files", MaxBatchSize)

// Item is one raw XML input with its display name.
type Item struct {
	Name string
	Data []byte
}

// Artifact pairs an input with its normalized document and rendered
// PDF bytes.
type Artifact struct {
	Name     string
	Document *model.Document
	PDF      []byte
}

// Failure records why one item could not be converted.
type Failure struct {
	Name   string
	Reason string
}

// Result is the outcome of a batch: artifacts in input order, failures
// for every item that did not convert.
type Result struct {
	Artifacts []Artifact
	Failures  []Failure
}

// Pipeline converts batches of XML inputs into PDF artifacts.
type Pipeline struct {
	renderer    render.Renderer
	workers     int
	validatePDF bool
	log         *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of concurrent conversions.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPDFValidation makes the pipeline reject rendered bytes that are
// not a structurally sound PDF.
func WithPDFValidation() Option {
	return func(p *Pipeline) { p.validatePDF = true }
}

// WithLogger attaches a logger; by default the pipeline is silent.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPipeline creates a conversion pipeline backed by the given
// renderer.
func NewPipeline(renderer render.Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer: renderer,
		workers:  defaultWorkers,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// itemOutcome is the per-slot result of one conversion.
type itemOutcome struct {
	artifact *Artifact
	failure  *Failure
}

// Convert processes every item with bounded parallelism. Artifacts come
// back in input order regardless of completion order; failed items are
// simply absent from the artifact list and present in Failures.
// Cancelling ctx finishes in-flight items and abandons the rest.
func (p *Pipeline) Convert(ctx context.Context, items []Item) (*Result, error) {
	if len(items) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	outcomes := make([]itemOutcome, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)

dispatch:
	for i := range items {
		select {
		case <-ctx.Done():
			// abandon queued items; in-flight ones run to completion
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = p.convertOne(ctx, items[idx])
		}(i)
	}
	wg.Wait()

	result := &Result{}
	for i, out := range outcomes {
		switch {
		case out.artifact != nil:
			result.Artifacts = append(result.Artifacts, *out.artifact)
		case out.failure != nil:
			result.Failures = append(result.Failures, *out.failure)
		default:
			// dispatch stopped before this item started
			result.Failures = append(result.Failures, Failure{
				Name:   items[i].Name,
				Reason: "cancelled before processing",
			})
		}
	}

	p.log.Info("batch converted",
		zap.Int("items", len(items)),
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (p *Pipeline) convertOne(ctx context.Context, item Item) itemOutcome {
	doc, err := nfe.ParseNamed(item.Name, item.Data)
	if err != nil {
		p.log.Warn("normalization failed", zap.String("file", item.Name), zap.Error(err))
		return itemOutcome{failure: &Failure{Name: item.Name, Reason: err.Error()}}
	}

	pdf, err := p.renderer.Render(ctx, doc)
	if err != nil {
		p.log.Warn("rendering failed", zap.String("file", item.Name), zap.Error(err))
		return itemOutcome{failure: &Failure{Name: item.Name, Reason: err.Error()}}
	}

	if p.validatePDF {
		if err := ValidatePDF(pdf); err != nil {
			return itemOutcome{failure: &Failure{
				Name:   item.Name,
				Reason: fmt.Sprintf("rendered artifact is not a valid PDF: %v", err),
			}}
		}
	}

	return itemOutcome{artifact: &Artifact{Name: item.Name, Document: doc, PDF: pdf}}
}

// IsCapacityError reports whether err is the batch-size rejection, so
// callers can distinguish it from per-item failures.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrBatchTooLarge)
}
