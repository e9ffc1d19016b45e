// Package nfelib provides a public API for processing Brazilian fiscal
// XML documents (NFe and CTe).
//
// This package exposes the core types for normalizing fiscal XML into
// a structured document model, converting batches to PDF through a
// rendering service, and flattening document sets into tabular reports.
//
// Example usage:
//
//	doc, err := nfelib.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc.Issuer.Name, doc.Totals.Grand)
package nfelib

import (
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
)

// Re-export core types for public API
type (
	Document       = model.Document
	Identification = model.Identification
	Party          = model.Party
	Address        = model.Address
	LineItem       = model.LineItem
	Totals         = model.Totals
	Transport      = model.Transport
	Installment    = model.Installment
	PaymentInfo    = model.PaymentInfo
	Protocol       = model.Protocol
	TaxDetail      = model.TaxDetail
	StatusCode     = model.StatusCode
	DocType        = model.DocType
)

// Re-export document types
const (
	DocTypeNFe     = model.DocTypeNFe
	DocTypeCTe     = model.DocTypeCTe
	DocTypeUnknown = model.DocTypeUnknown
)

// Re-export error types
type (
	ParseError        = model.ParseError
	DocumentTypeError = model.DocumentTypeError
	StructureError    = model.StructureError
	ValidationError   = model.ValidationError
	RenderError       = model.RenderError
	LookupError       = model.LookupError
)

// Parse normalizes a fiscal XML document.
func Parse(data []byte) (*Document, error) {
	return nfe.Parse(data)
}

// DetectType reports the document type without full normalization.
func DetectType(data []byte) DocType {
	return nfe.DetectType(data)
}

// ValidAccessKey reports whether s is a well-formed 44-digit access key.
func ValidAccessKey(s string) bool {
	return model.ValidAccessKey(s)
}
