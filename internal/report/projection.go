// Package report flattens normalized documents into tabular rows under
// named projections, with free-text filtering, pagination and
// spreadsheet export.
package report

// Projection is a named, ordered set of report columns. Projections
// containing line-item columns explode each document into one row per
// line item; the others produce one row per document.
type Projection struct {
	Name    string
	Columns []string
}

// Column keys recognized by the projections. Document-level keys repeat
// on every exploded row; item-level keys vary per line item.
const (
	ColKey             = "key"
	ColEmissionDate    = "emissionDate"
	ColEmitterTaxID    = "emitterCnpjCpf"
	ColEmitter         = "emitter"
	ColReceiverTaxID   = "receiverCnpjCpf"
	ColReceiver        = "receiver"
	ColNumber          = "number"
	ColValue           = "value"
	ColProductCode     = "productCode"
	ColProductName     = "productName"
	ColProductQuantity = "productQuantity"
	ColProductUnitVal  = "productUnitValue"
	ColICMSOrigin      = "icmsOrig"
	ColICMSCST         = "icmsCST"
	ColICMSModality    = "icmsModBC"
	ColICMSBase        = "icmsVBC"
	ColICMSRate        = "icmsPICMS"
	ColICMSValue       = "icmsVICMS"
)

var lineItemColumns = map[string]bool{
	ColProductCode:     true,
	ColProductName:     true,
	ColProductQuantity: true,
	ColProductUnitVal:  true,
	ColICMSOrigin:      true,
	ColICMSCST:         true,
	ColICMSModality:    true,
	ColICMSBase:        true,
	ColICMSRate:        true,
	ColICMSValue:       true,
}

var documentColumns = []string{
	ColKey, ColEmissionDate, ColEmitterTaxID, ColEmitter,
	ColReceiverTaxID, ColReceiver, ColNumber, ColValue,
}

var builtins = []Projection{
	{
		Name:    "NFe Emitente/Destinatário",
		Columns: documentColumns,
	},
	{
		Name: "NFe Emitente/Destinatário/Produtos",
		Columns: []string{
			ColKey, ColEmissionDate, ColEmitter, ColReceiver, ColNumber,
			ColValue, ColProductCode, ColProductName, ColProductQuantity,
			ColProductUnitVal,
		},
	},
	{
		Name: "NFe Emitente/Destinatário/Produtos (ICMS)",
		Columns: []string{
			ColKey, ColNumber, ColProductCode, ColProductName,
			ColICMSOrigin, ColICMSCST, ColICMSModality, ColICMSBase,
			ColICMSRate, ColICMSValue,
		},
	},
	{
		Name:    "CTe Modelo Simples",
		Columns: documentColumns,
	},
}

// Projections returns the built-in projections in display order.
func Projections() []Projection {
	out := make([]Projection, len(builtins))
	copy(out, builtins)
	return out
}

// Default is the projection used when none is selected.
func Default() Projection { return builtins[0] }

// Lookup finds a built-in projection by name.
func Lookup(name string) (Projection, bool) {
	for _, p := range builtins {
		if p.Name == name {
			return p, true
		}
	}
	return Projection{}, false
}

// Explodes reports whether the projection contains at least one
// line-item column, i.e. one document becomes one row per line item.
func (p Projection) Explodes() bool {
	for _, c := range p.Columns {
		if lineItemColumns[c] {
			return true
		}
	}
	return false
}
