// Package render holds the client side of the external DANFE rendering
// service and the access-key barcode generator. The core never lays out
// PDFs itself; it hands a normalized document to the service and gets
// bytes back.
package render

import (
	"context"

	"github.com/rezonia/nfe-processor/internal/model"
)

// Renderer produces a printable DANFE from a normalized document.
// Implementations must be deterministic for the same document and
// safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, doc *model.Document) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, doc *model.Document) ([]byte, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, doc *model.Document) ([]byte, error) {
	return f(ctx, doc)
}
