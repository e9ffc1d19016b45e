package report_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/report"
)

func sampleDoc(number string, items ...string) *model.Document {
	doc := &model.Document{
		Type: model.DocTypeNFe,
		Identification: model.Identification{
			AccessKey:    "4320071420016600018755001000000004655000" + number,
			Number:       number,
			EmissionDate: "2020-07-15T10:30:00-03:00",
		},
		Issuer:    model.Party{CNPJ: "14200166000187", Name: "Comercio Alfa Ltda"},
		Recipient: model.Party{CPF: "12345678901", Name: "Beatriz Souza"},
		Totals:    model.Totals{Grand: decimal.RequireFromString("150.00")},
	}
	for i, desc := range items {
		doc.LineItems = append(doc.LineItems, model.LineItem{
			Number:      fmt.Sprint(i + 1),
			Code:        fmt.Sprintf("P%03d", i+1),
			Description: desc,
			Quantity:    decimal.RequireFromString("2"),
			UnitValue:   decimal.RequireFromString("25.00"),
			Tax: model.TaxDetail{ICMS: model.ICMS{
				Variant:    "ICMS20",
				Origin:     "0",
				StatusCode: model.CST("20"),
				Base:       decimal.RequireFromString("50.00"),
				Rate:       decimal.RequireFromString("18.00"),
				Value:      decimal.RequireFromString("9.00"),
			}},
		})
	}
	return doc
}

func mustProjection(t *testing.T, name string) report.Projection {
	t.Helper()
	p, ok := report.Lookup(name)
	require.True(t, ok, "projection %q", name)
	return p
}

func TestProjections_Builtins(t *testing.T) {
	names := make([]string, 0)
	for _, p := range report.Projections() {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "NFe Emitente/Destinatário")
	assert.Contains(t, names, "NFe Emitente/Destinatário/Produtos")
	assert.Contains(t, names, "NFe Emitente/Destinatário/Produtos (ICMS)")
	assert.Contains(t, names, "CTe Modelo Simples")

	assert.False(t, mustProjection(t, "NFe Emitente/Destinatário").Explodes())
	assert.True(t, mustProjection(t, "NFe Emitente/Destinatário/Produtos").Explodes())

	_, ok := report.Lookup("inexistente")
	assert.False(t, ok)
}

func TestFlatten_OneRowPerDocument(t *testing.T) {
	docs := []*model.Document{
		sampleDoc("001", "Parafuso", "Porca"),
		sampleDoc("002"),
	}

	rows := report.Flatten(docs, mustProjection(t, "NFe Emitente/Destinatário"))
	require.Len(t, rows, 2)
	assert.Equal(t, "001", rows[0]["number"])
	assert.Equal(t, "Comercio Alfa Ltda", rows[0]["emitter"])
	assert.Equal(t, "14200166000187", rows[0]["emitterCnpjCpf"])
	assert.Equal(t, "12345678901", rows[0]["receiverCnpjCpf"], "CPF recipient")
	assert.Equal(t, "150.00", rows[0]["value"])
	assert.NotContains(t, rows[0], "productName", "rows only carry projected columns")
}

func TestFlatten_ExplodesInOrder(t *testing.T) {
	docs := []*model.Document{sampleDoc("001", "A", "B", "C")}

	rows := report.Flatten(docs, mustProjection(t, "NFe Emitente/Destinatário/Produtos"))
	require.Len(t, rows, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, rows[i]["productName"])
		assert.Equal(t, "001", rows[i]["number"], "document fields repeat per row")
	}
}

func TestFlatten_NoLineItemsUnderExplodingProjection(t *testing.T) {
	docs := []*model.Document{sampleDoc("001")}

	rows := report.Flatten(docs, mustProjection(t, "NFe Emitente/Destinatário/Produtos"))
	assert.Empty(t, rows)
}

func TestFlatten_ICMSColumns(t *testing.T) {
	docs := []*model.Document{sampleDoc("001", "Parafuso")}

	rows := report.Flatten(docs, mustProjection(t, "NFe Emitente/Destinatário/Produtos (ICMS)"))
	require.Len(t, rows, 1)
	assert.Equal(t, "0", rows[0]["icmsOrig"])
	assert.Equal(t, "20", rows[0]["icmsCST"])
	assert.Equal(t, "50.00", rows[0]["icmsVBC"])
	assert.Equal(t, "18.00", rows[0]["icmsPICMS"])
	assert.Equal(t, "9.00", rows[0]["icmsVICMS"])
}

func TestFilter(t *testing.T) {
	rows := []report.Row{
		{"number": "100", "emitter": "Alfa"},
		{"number": "200", "emitter": "Beta"},
		{"number": "300", "emitter": "ALFA Filial"},
	}

	assert.Len(t, report.Filter(rows, ""), 3)
	assert.Len(t, report.Filter(rows, "alfa"), 2, "case-insensitive")

	only := report.Filter(rows, "200")
	require.Len(t, only, 1)
	assert.Equal(t, "Beta", only[0]["emitter"])
}

func TestPaginate(t *testing.T) {
	rows := make([]report.Row, 25)
	for i := range rows {
		rows[i] = report.Row{"number": fmt.Sprint(i)}
	}

	page3 := report.Paginate(rows, 3, 10)
	require.Len(t, page3, 5)
	assert.Equal(t, "20", page3[0]["number"])
	assert.Equal(t, "24", page3[4]["number"])

	assert.Len(t, report.Paginate(rows, 1, 10), 10)
	assert.Empty(t, report.Paginate(rows, 4, 10))
	assert.Empty(t, report.Paginate(rows, 0, 10), "pages are 1-based")
}

func TestTable_PageReanchoring(t *testing.T) {
	tbl := report.NewTable()
	tbl.SetDocuments([]*model.Document{sampleDoc("001", "A", "B")})
	tbl.SetPerPage(1)
	tbl.SetPage(2)
	require.Equal(t, 2, tbl.Page())
	require.Equal(t, 1, tbl.PerPage())

	// projection change resets the page
	require.True(t, tbl.SetProjection("NFe Emitente/Destinatário/Produtos"))
	assert.Equal(t, 1, tbl.Page())

	tbl.SetPage(2)
	tbl.SetQuery("A")
	assert.Equal(t, 1, tbl.Page(), "query change resets the page")

	tbl.SetPage(2)
	tbl.SetDocuments([]*model.Document{sampleDoc("002")})
	assert.Equal(t, 1, tbl.Page(), "document change resets the page")

	assert.False(t, tbl.SetProjection("desconhecido"))
}

func TestTable_FilteredIgnoresPagination(t *testing.T) {
	tbl := report.NewTable()
	tbl.SetDocuments([]*model.Document{
		sampleDoc("001"), sampleDoc("002"), sampleDoc("003"),
	})
	tbl.SetPerPage(1)
	tbl.SetPage(2)

	assert.Len(t, tbl.Rows(), 1)
	assert.Len(t, tbl.Filtered(), 3, "export set is the filtered set, not the page")
	assert.Equal(t, 3, tbl.TotalRows())
}

func TestWriteCSV(t *testing.T) {
	p := mustProjection(t, "NFe Emitente/Destinatário")
	rows := report.Flatten([]*model.Document{sampleDoc("001")}, p)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, p, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"Chave", "Emissão", "Emitente CNPJ/CPF", "Emitente",
		"Destinatário CNPJ/CPF", "Destinatário", "Número", "Valor",
	}, records[0])
	assert.Equal(t, "001", records[1][6])
	assert.Equal(t, "150.00", records[1][7])
}

func TestWriteXLSX(t *testing.T) {
	p := mustProjection(t, "NFe Emitente/Destinatário")
	rows := report.Flatten([]*model.Document{sampleDoc("001")}, p)

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, p, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Relatório", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Chave", header)

	number, err := f.GetCellValue("Relatório", "G2")
	require.NoError(t, err)
	assert.Equal(t, "001", number)
}

func TestHeaderLabel_UnknownKeyFallsBack(t *testing.T) {
	assert.Equal(t, "Valor", report.HeaderLabel("value"))
	assert.Equal(t, "custom", report.HeaderLabel("custom"))
}
