package nfelib_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-processor/pkg/nfelib"
)

const sampleNFe = `<?xml version="1.0" encoding="UTF-8"?>
<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe43200714200166000187550010000000046550000046" versao="4.00">
    <ide><nNF>46</nNF><serie>1</serie></ide>
    <emit><CNPJ>14200166000187</CNPJ><xNome>Comercio Alfa Ltda</xNome></emit>
    <dest><CPF>12345678901</CPF><xNome>Beatriz Souza</xNome></dest>
    <det nItem="1"><prod><cProd>P001</cProd><xProd>Parafuso</xProd></prod></det>
    <total><ICMSTot><vNF>150.00</vNF></ICMSTot></total>
  </infNFe>
</NFe>`

func TestParse(t *testing.T) {
	doc, err := nfelib.Parse([]byte(sampleNFe))
	require.NoError(t, err)
	assert.Equal(t, nfelib.DocTypeNFe, doc.Type)
	assert.Equal(t, "Comercio Alfa Ltda", doc.Issuer.Name)
	assert.Equal(t, "43200714200166000187550010000000046550000046", doc.AccessKey())
}

func TestProcessor_Parse(t *testing.T) {
	p := nfelib.NewProcessor(nfelib.ProcessorOptions{})
	doc, err := p.Parse(strings.NewReader(sampleNFe))
	require.NoError(t, err)
	assert.Equal(t, "46", doc.Identification.Number)
}

func TestProcessor_Convert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 stub"))
	}))
	defer srv.Close()

	p := nfelib.NewProcessor(nfelib.ProcessorOptions{RenderURL: srv.URL})
	result, err := p.Convert(context.Background(), []nfelib.File{
		{Name: "nota.xml", Data: []byte(sampleNFe)},
		{Name: "quebrada.xml", Data: []byte("<NFe><broken")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "quebrada.xml", result.Failures[0].Name)

	zr, err := zip.NewReader(bytes.NewReader(result.Archive), int64(len(result.Archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "nota.pdf", zr.File[0].Name)
}

func TestReport(t *testing.T) {
	doc, err := nfelib.Parse([]byte(sampleNFe))
	require.NoError(t, err)

	rows, err := nfelib.Report([]*nfelib.Document{doc}, "NFe Emitente/Destinatário/Produtos", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Parafuso", rows[0]["productName"])

	_, err = nfelib.Report([]*nfelib.Document{doc}, "inexistente", "")
	assert.Error(t, err)
}

func TestReportModels(t *testing.T) {
	assert.Contains(t, nfelib.ReportModels(), "CTe Modelo Simples")
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, nfelib.DocTypeNFe, nfelib.DetectType([]byte(sampleNFe)))
	assert.Equal(t, nfelib.DocTypeUnknown, nfelib.DetectType([]byte("<recibo/>")))
}

func TestValidAccessKey(t *testing.T) {
	assert.True(t, nfelib.ValidAccessKey("43200714200166000187550010000000046550000046"))
	assert.False(t, nfelib.ValidAccessKey("1234"))
}
