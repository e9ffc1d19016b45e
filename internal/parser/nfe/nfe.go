package nfe

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/field"
)

func parseNFe(root *etree.Element) (*model.Document, error) {
	inf := field.Element(root, "infNFe")
	if inf == nil {
		// presence was checked by the caller; a vanished block means the
		// document lied about its type
		return nil, &model.StructureError{DocType: model.DocTypeNFe, Missing: "infNFe"}
	}

	ide := field.Element(inf, "ide")
	emit := field.Element(inf, "emit")
	dest := field.Element(inf, "dest")
	total := field.Element(inf, "total")
	transp := field.Element(inf, "transp")
	cobr := field.Element(inf, "cobr")
	pag := field.Element(inf, "pag")
	infAdic := field.Element(inf, "infAdic")
	// protNFe sits outside infNFe, under the nfeProc envelope
	infProt := field.Element(root, "infProt")

	doc := &model.Document{
		Type:           model.DocTypeNFe,
		Identification: parseIdentification(inf, ide),
		Issuer:         parseParty(emit, "enderEmit"),
		Recipient:      parseParty(dest, "enderDest"),
		LineItems:      parseLineItems(inf),
		Totals:         parseTotals(total),
		Transport:      parseTransport(transp),
		Billing:        parseBilling(cobr),
		Payments:       parsePayments(pag),
		Change:         field.Value(pag, "vTroco"),
		AdditionalInfo: model.AdditionalInfo{
			Complementary: field.Value(infAdic, "infCpl"),
			FiscalNote:    field.Value(infAdic, "infAdFisco"),
		},
		Protocol: parseProtocol(infProt),
	}
	return doc, nil
}

func parseIdentification(inf, ide *etree.Element) model.Identification {
	id := model.Identification{
		Number:          field.Value(ide, "nNF"),
		Series:          field.Value(ide, "serie"),
		Model:           field.Value(ide, "mod"),
		EmissionDate:    field.Value(ide, "dhEmi"),
		ExitDate:        field.Value(ide, "dhSaiEnt"),
		OperationNature: field.Value(ide, "natOp"),
		OperationType:   field.Value(ide, "tpNF"),
		Environment:     model.Environment(field.Value(ide, "tpAmb")),
		Municipality:    field.Value(ide, "cMunFG"),
		Purpose:         field.Value(ide, "finNFe"),
		EmissionProcess: field.Value(ide, "procEmi"),
		AppVersion:      field.Value(ide, "verProc"),
	}

	// the infNFe Id attribute is "NFe" + access key
	if raw := field.Attr(inf, "Id"); raw != "" {
		key := strings.TrimPrefix(raw, "NFe")
		if model.ValidAccessKey(key) {
			id.AccessKey = key
		}
	}
	return id
}

func parseParty(e *etree.Element, addrTag string) model.Party {
	return model.Party{
		CNPJ:       field.Value(e, "CNPJ"),
		CPF:        field.Value(e, "CPF"),
		Name:       field.Value(e, "xNome"),
		TradeName:  field.Value(e, "xFant"),
		StateRegID: field.Value(e, "IE"),
		TaxRegime:  field.Value(e, "CRT"),
		Address:    parseAddress(field.Element(e, addrTag)),
	}
}

func parseAddress(e *etree.Element) model.Address {
	return model.Address{
		Street:     field.Value(e, "xLgr"),
		Number:     field.Value(e, "nro"),
		District:   field.Value(e, "xBairro"),
		CityCode:   field.Value(e, "cMun"),
		City:       field.Value(e, "xMun"),
		State:      field.Value(e, "UF"),
		PostalCode: field.Value(e, "CEP"),
		Country:    field.Value(e, "xPais"),
		Phone:      field.Value(e, "fone"),
	}
}

func parseLineItems(inf *etree.Element) []model.LineItem {
	dets := field.Elements(inf, "det")
	items := make([]model.LineItem, 0, len(dets))
	for _, det := range dets {
		prod := field.Element(det, "prod")
		item := model.LineItem{
			Number:      field.Attr(det, "nItem"),
			Code:        field.Value(prod, "cProd"),
			EAN:         field.Value(prod, "cEAN"),
			Description: field.Value(prod, "xProd"),
			NCM:         field.Value(prod, "NCM"),
			CFOP:        field.Value(prod, "CFOP"),
			Unit:        field.Value(prod, "uCom"),
			Quantity:    dec(field.Value(prod, "qCom")),
			UnitValue:   dec(field.Value(prod, "vUnCom")),
			Total:       dec(field.Value(prod, "vProd")),
			Discount:    dec(field.Value(prod, "vDesc")),
			Info:        field.Value(det, "infAdProd"),
			Tax:         parseTaxDetail(field.Element(det, "imposto")),
		}
		items = append(items, item)
	}
	return items
}

func parseTotals(total *etree.Element) model.Totals {
	icmsTot := field.Element(total, "ICMSTot")
	return model.Totals{
		TaxBase:      dec(field.Value(icmsTot, "vBC")),
		TaxValue:     dec(field.Value(icmsTot, "vICMS")),
		STBase:       dec(field.Value(icmsTot, "vBCST")),
		STValue:      dec(field.Value(icmsTot, "vST")),
		Products:     dec(field.Value(icmsTot, "vProd")),
		Freight:      dec(field.Value(icmsTot, "vFrete")),
		Insurance:    dec(field.Value(icmsTot, "vSeg")),
		Discount:     dec(field.Value(icmsTot, "vDesc")),
		IPI:          dec(field.Value(icmsTot, "vIPI")),
		PIS:          dec(field.Value(icmsTot, "vPIS")),
		COFINS:       dec(field.Value(icmsTot, "vCOFINS")),
		OtherExpense: dec(field.Value(icmsTot, "vOutro")),
		Grand:        dec(field.Value(icmsTot, "vNF")),
	}
}

func parseTransport(transp *etree.Element) model.Transport {
	carrier := field.Element(transp, "transporta")
	vehicle := field.Element(transp, "veicTransp")

	t := model.Transport{
		FreightMode:  field.Value(transp, "modFrete"),
		CarrierCNPJ:  field.Value(carrier, "CNPJ"),
		CarrierName:  field.Value(carrier, "xNome"),
		CarrierAddr:  field.Value(carrier, "xEnder"),
		CarrierCity:  field.Value(carrier, "xMun"),
		CarrierState: field.Value(carrier, "UF"),
		VehiclePlate: field.Value(vehicle, "placa"),
		VehicleState: field.Value(vehicle, "UF"),
	}

	for _, vol := range field.Elements(transp, "vol") {
		t.Volumes = append(t.Volumes, model.Volume{
			Quantity:    field.Value(vol, "qVol"),
			Kind:        field.Value(vol, "esp"),
			Brand:       field.Value(vol, "marca"),
			Numbering:   field.Value(vol, "nVol"),
			NetWeight:   field.Value(vol, "pesoL"),
			GrossWeight: field.Value(vol, "pesoB"),
		})
	}
	return t
}

func parseBilling(cobr *etree.Element) []model.Installment {
	dups := field.Elements(cobr, "dup")
	if len(dups) == 0 {
		return nil
	}
	out := make([]model.Installment, 0, len(dups))
	for _, dup := range dups {
		out = append(out, model.Installment{
			Number:  field.Value(dup, "nDup"),
			DueDate: field.Value(dup, "dVenc"),
			Value:   dec(field.Value(dup, "vDup")),
		})
	}
	return out
}

func parsePayments(pag *etree.Element) []model.PaymentInfo {
	detPags := field.Elements(pag, "detPag")
	if len(detPags) == 0 {
		return nil
	}
	out := make([]model.PaymentInfo, 0, len(detPags))
	for _, p := range detPags {
		out = append(out, model.PaymentInfo{
			Method: field.Value(p, "tPag"),
			Value:  dec(field.Value(p, "vPag")),
		})
	}
	return out
}

func parseProtocol(infProt *etree.Element) *model.Protocol {
	if infProt == nil {
		return nil
	}
	return &model.Protocol{
		Environment: model.Environment(field.Value(infProt, "tpAmb")),
		AppVersion:  field.Value(infProt, "verAplic"),
		AccessKey:   field.Value(infProt, "chNFe"),
		ReceiptTime: field.Value(infProt, "dhRecbto"),
		Number:      field.Value(infProt, "nProt"),
		DigestValue: field.Value(infProt, "digVal"),
		StatusCode:  field.Value(infProt, "cStat"),
		StatusText:  field.Value(infProt, "xMotivo"),
	}
}
