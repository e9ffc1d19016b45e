package nfe

import (
	"github.com/beevik/etree"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/field"
)

// parseCTe extracts the reduced transport-document form: issuer and
// recipient identity only. This is intentionally minimal, not a full
// CTe implementation.
func parseCTe(root *etree.Element) *model.Document {
	emit := field.Element(root, "emit")
	dest := field.Element(root, "dest")

	doc := &model.Document{
		Type: model.DocTypeCTe,
		Issuer: model.Party{
			CNPJ: field.Value(emit, "CNPJ"),
			Name: field.Value(emit, "xNome"),
		},
		Recipient: model.Party{
			CNPJ: field.Value(dest, "CNPJ"),
			Name: field.Value(dest, "xNome"),
		},
	}

	if infProt := field.Element(root, "infProt"); infProt != nil {
		doc.Protocol = parseProtocol(infProt)
	}
	return doc
}
