package model_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-processor/internal/model"
)

func TestStatusCode_Exclusivity(t *testing.T) {
	cst := model.CST("00")
	code, ok := cst.CST()
	require.True(t, ok)
	assert.Equal(t, "00", code)
	_, ok = cst.CSOSN()
	assert.False(t, ok)

	csosn := model.CSOSN("102")
	code, ok = csosn.CSOSN()
	require.True(t, ok)
	assert.Equal(t, "102", code)
	_, ok = csosn.CST()
	assert.False(t, ok)
}

func TestStatusCode_Zero(t *testing.T) {
	var s model.StatusCode
	assert.True(t, s.IsZero())
	_, ok := s.CST()
	assert.False(t, ok)
	_, ok = s.CSOSN()
	assert.False(t, ok)
	assert.Equal(t, "", s.String())

	// empty code never yields a regime
	assert.True(t, model.CST("").IsZero())
	assert.True(t, model.CSOSN("").IsZero())
}

func TestStatusCode_JSON(t *testing.T) {
	tests := []struct {
		name string
		code model.StatusCode
		want string
	}{
		{"cst", model.CST("20"), `{"cst":"20"}`},
		{"csosn", model.CSOSN("500"), `{"csosn":"500"}`},
		{"zero", model.StatusCode{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.code)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back model.StatusCode
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.code, back)
		})
	}
}

func TestValidAccessKey(t *testing.T) {
	assert.True(t, model.ValidAccessKey("43200714200166000187550010000000046550000046"))
	assert.False(t, model.ValidAccessKey("432007142001660001875500100000000465500000461")) // 45
	assert.False(t, model.ValidAccessKey("4320071420016600018755001000000004655000004"))   // 43
	assert.False(t, model.ValidAccessKey("4320071420016600018755001000000004655000004X"))
	assert.False(t, model.ValidAccessKey(""))
}

func TestValidTaxIDs(t *testing.T) {
	assert.True(t, model.ValidCNPJ("14200166000187"))
	assert.False(t, model.ValidCNPJ("14.200.166/0001-87"))
	assert.False(t, model.ValidCNPJ("1420016600018"))
	assert.True(t, model.ValidCPF("12345678901"))
	assert.False(t, model.ValidCPF("123456789012"))
}

func TestParty_TaxID(t *testing.T) {
	assert.Equal(t, "14200166000187", model.Party{CNPJ: "14200166000187"}.TaxID())
	assert.Equal(t, "12345678901", model.Party{CPF: "12345678901"}.TaxID())
	assert.Equal(t, "", model.Party{}.TaxID())
}

func TestDocument_AccessKey(t *testing.T) {
	doc := model.Document{
		Identification: model.Identification{AccessKey: "id-key"},
	}
	assert.Equal(t, "id-key", doc.AccessKey())

	doc.Protocol = &model.Protocol{AccessKey: "prot-key"}
	assert.Equal(t, "prot-key", doc.AccessKey())
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := model.Document{
		Type: model.DocTypeNFe,
		Identification: model.Identification{
			Number:          "46",
			Series:          "1",
			OperationNature: "Venda",
			Environment:     model.EnvProduction,
		},
		LineItems: []model.LineItem{
			{
				Number:      "1",
				Code:        "P001",
				Description: "Parafuso",
				Quantity:    decimal.RequireFromString("10"),
				UnitValue:   decimal.RequireFromString("1.50"),
				Total:       decimal.RequireFromString("15.00"),
				Tax: model.TaxDetail{
					ICMS: model.ICMS{
						Variant:    "ICMS00",
						Origin:     "0",
						StatusCode: model.CST("00"),
					},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back model.Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc.Identification, back.Identification)
	require.Len(t, back.LineItems, 1)
	assert.Equal(t, doc.LineItems[0].Tax.ICMS.StatusCode, back.LineItems[0].Tax.ICMS.StatusCode)
	assert.True(t, doc.LineItems[0].Total.Equal(back.LineItems[0].Total))
}
