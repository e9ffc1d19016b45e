package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/nfe-processor/internal/model"
)

// Row maps projected column keys to display strings. Rows only carry
// the columns of the projection that produced them.
type Row map[string]string

// Flatten projects docs into rows. Non-exploding projections yield one
// row per document; exploding projections yield one row per line item,
// with document-level values repeated on each. A document without line
// items contributes no rows to an exploding projection.
func Flatten(docs []*model.Document, p Projection) []Row {
	var rows []Row
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if !p.Explodes() {
			rows = append(rows, projectRow(doc, nil, p))
			continue
		}
		for i := range doc.LineItems {
			rows = append(rows, projectRow(doc, &doc.LineItems[i], p))
		}
	}
	return rows
}

func projectRow(doc *model.Document, item *model.LineItem, p Projection) Row {
	row := make(Row, len(p.Columns))
	for _, col := range p.Columns {
		row[col] = columnValue(doc, item, col)
	}
	return row
}

func columnValue(doc *model.Document, item *model.LineItem, col string) string {
	switch col {
	case ColKey:
		return doc.AccessKey()
	case ColEmissionDate:
		return doc.Identification.EmissionDate
	case ColEmitterTaxID:
		return doc.Issuer.TaxID()
	case ColEmitter:
		return doc.Issuer.Name
	case ColReceiverTaxID:
		return doc.Recipient.TaxID()
	case ColReceiver:
		return doc.Recipient.Name
	case ColNumber:
		return doc.Identification.Number
	case ColValue:
		return decString(doc.Totals.Grand)
	}

	if item == nil {
		return ""
	}
	switch col {
	case ColProductCode:
		return item.Code
	case ColProductName:
		return item.Description
	case ColProductQuantity:
		return decString(item.Quantity)
	case ColProductUnitVal:
		return decString(item.UnitValue)
	case ColICMSOrigin:
		return item.Tax.ICMS.Origin
	case ColICMSCST:
		return item.Tax.ICMS.StatusCode.String()
	case ColICMSModality:
		return item.Tax.ICMS.Modality
	case ColICMSBase:
		return decString(item.Tax.ICMS.Base)
	case ColICMSRate:
		return decString(item.Tax.ICMS.Rate)
	case ColICMSValue:
		return decString(item.Tax.ICMS.Value)
	}
	return ""
}

// zero decimals mean the source never declared the field
func decString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// Filter keeps rows where any projected value contains query,
// case-insensitively. An empty query keeps everything. Filtering always
// runs over the full flattened set, before pagination.
func Filter(rows []Row, query string) []Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	needle := strings.ToLower(query)

	var out []Row
	for _, row := range rows {
		for _, v := range row {
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Paginate selects the 1-based page of size perPage from rows. Pages
// past the end return an empty slice; the last page may be short.
func Paginate(rows []Row, page, perPage int) []Row {
	if page < 1 || perPage < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(rows) {
		return nil
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
