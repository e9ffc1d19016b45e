package report

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"
)

// headerLabels maps column keys to the human-readable header used both
// on screen and in exported files.
var headerLabels = map[string]string{
	ColKey:             "Chave",
	ColEmissionDate:    "Emissão",
	ColEmitterTaxID:    "Emitente CNPJ/CPF",
	ColEmitter:         "Emitente",
	ColReceiverTaxID:   "Destinatário CNPJ/CPF",
	ColReceiver:        "Destinatário",
	ColNumber:          "Número",
	ColValue:           "Valor",
	ColProductCode:     "Código",
	ColProductName:     "Nome",
	ColProductQuantity: "Quantidade",
	ColProductUnitVal:  "Valor Unitário",
	ColICMSOrigin:      "ICMS Origem",
	ColICMSCST:         "ICMS CST",
	ColICMSModality:    "ICMS Mod. BC",
	ColICMSBase:        "ICMS Base",
	ColICMSRate:        "ICMS Alíquota",
	ColICMSValue:       "ICMS Valor",
}

// HeaderLabel returns the display label of a column key; unknown keys
// fall back to the key itself.
func HeaderLabel(key string) string {
	if label, ok := headerLabels[key]; ok {
		return label
	}
	return key
}

const exportSheet = "Relatório"

// WriteXLSX writes the rows as a spreadsheet: one header row of display
// labels in projection column order, one data row per report row. The
// caller decides which row set to pass; exports conventionally take the
// filtered set, not the current page.
func WriteXLSX(w io.Writer, p Projection, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	for col, key := range p.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, HeaderLabel(key)); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, key := range p.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheet, cell, row[key]); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// WriteCSV writes the rows as CSV with the same header labels and
// column order as WriteXLSX.
func WriteCSV(w io.Writer, p Projection, rows []Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(p.Columns))
	for i, key := range p.Columns {
		header[i] = HeaderLabel(key)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(p.Columns))
	for _, row := range rows {
		for i, key := range p.Columns {
			record[i] = row[key]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
