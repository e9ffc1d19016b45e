// Package nfe normalizes Brazilian fiscal XML documents (NFe, and a
// reduced CTe form) into the canonical document model. Parsing is a
// pure function: the same input always yields a field-for-field
// identical Document.
//
// Only three conditions are fatal: malformed XML, an XML that is
// neither NFe nor CTe, and an NFe missing its infNFe block. Every other
// missing node degrades to an empty field.
package nfe

import (
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/field"
)

// Parse normalizes a raw fiscal XML document.
func Parse(data []byte) (*model.Document, error) {
	return ParseNamed("", data)
}

// ParseNamed is Parse with a display name attached to parse errors, for
// batch reporting.
func ParseNamed(name string, data []byte) (*model.Document, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, model.NewParseError(name, "undecodable input encoding", err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(decoded); err != nil {
		return nil, model.NewParseError(name, "malformed XML", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(name, "empty XML document", nil)
	}

	switch {
	case field.Element(root, "infNFe") != nil:
		return parseNFe(root)
	case field.Element(root, "infCte") != nil:
		return parseCTe(root), nil
	default:
		return nil, &model.DocumentTypeError{Root: root.Tag}
	}
}

// DetectType reports the document type without a full parse. Malformed
// input detects as DocTypeUnknown.
func DetectType(data []byte) model.DocType {
	decoded, err := decode(data)
	if err != nil {
		return model.DocTypeUnknown
	}
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(decoded); err != nil {
		return model.DocTypeUnknown
	}
	root := doc.Root()
	switch {
	case field.Element(root, "infNFe") != nil:
		return model.DocTypeNFe
	case field.Element(root, "infCte") != nil:
		return model.DocTypeCTe
	default:
		return model.DocTypeUnknown
	}
}

// dec parses a declared decimal value. Absent or unparseable values
// normalize to zero, which consumers treat as "unknown".
func dec(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
