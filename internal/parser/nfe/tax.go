package nfe

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/field"
)

// parseTaxDetail resolves the per-item tax groups. Each group (ICMS,
// IPI, PIS, COFINS) holds exactly one sub-variant element in the
// source; the first present one wins, and a missing group yields an
// empty sub-record.
func parseTaxDetail(imposto *etree.Element) model.TaxDetail {
	return model.TaxDetail{
		TotalTax: dec(field.Value(imposto, "vTotTrib")),
		ICMS:     parseICMS(field.Element(imposto, "ICMS")),
		IPI:      parseIPI(field.Element(imposto, "IPI")),
		PIS:      parsePIS(field.Element(imposto, "PIS")),
		COFINS:   parseCOFINS(field.Element(imposto, "COFINS")),
	}
}

func parseICMS(icms *etree.Element) model.ICMS {
	variant := field.FirstChild(icms)
	if variant == nil {
		return model.ICMS{}
	}

	out := model.ICMS{
		Variant:  variant.Tag,
		Origin:   field.Value(variant, "orig"),
		Modality: field.Value(variant, "modBC"),
		Base:     dec(field.Value(variant, "vBC")),
		Rate:     dec(field.Value(variant, "pICMS")),
		Value:    dec(field.Value(variant, "vICMS")),
	}

	// ICMSSN* variants belong to Simples Nacional and carry a CSOSN;
	// everything else carries a CST
	if strings.HasPrefix(variant.Tag, "ICMSSN") {
		out.StatusCode = model.CSOSN(field.Value(variant, "CSOSN"))
	} else {
		out.StatusCode = model.CST(field.Value(variant, "CST"))
	}
	return out
}

func parseIPI(ipi *etree.Element) model.IPI {
	variant := firstVariant(ipi, "IPITrib", "IPINT")
	if variant == nil {
		return model.IPI{}
	}
	return model.IPI{
		Variant: variant.Tag,
		CST:     field.Value(variant, "CST"),
		Base:    dec(field.Value(variant, "vBC")),
		Rate:    dec(field.Value(variant, "pIPI")),
		Value:   dec(field.Value(variant, "vIPI")),
	}
}

func parsePIS(pis *etree.Element) model.PIS {
	variant := firstVariant(pis, "PISAliq", "PISQtde", "PISNT", "PISOutr")
	if variant == nil {
		return model.PIS{}
	}
	return model.PIS{
		Variant: variant.Tag,
		CST:     field.Value(variant, "CST"),
		Base:    dec(field.Value(variant, "vBC")),
		Rate:    dec(field.Value(variant, "pPIS")),
		Value:   dec(field.Value(variant, "vPIS")),
	}
}

func parseCOFINS(cofins *etree.Element) model.COFINS {
	variant := firstVariant(cofins, "COFINSAliq", "COFINSQtde", "COFINSNT", "COFINSOutr")
	if variant == nil {
		return model.COFINS{}
	}
	return model.COFINS{
		Variant: variant.Tag,
		CST:     field.Value(variant, "CST"),
		Base:    dec(field.Value(variant, "vBC")),
		Rate:    dec(field.Value(variant, "pCOFINS")),
		Value:   dec(field.Value(variant, "vCOFINS")),
	}
}

// firstVariant picks the first of the known sub-variant tags present
// under e, falling back to the first child element so unknown variants
// still extract their common fields.
func firstVariant(e *etree.Element, tags ...string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, tag := range tags {
		if v := field.Element(e, tag); v != nil {
			return v
		}
	}
	return field.FirstChild(e)
}
