package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/registry"
)

const testCNPJ = "14200166000187"

func TestCNPJClient_Lookup_NestedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testCNPJ, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"razao_social": "Comercio Alfa Ltda",
			"estabelecimento": {
				"nome_fantasia": "Alfa",
				"situacao_cadastral": {"descricao": "Ativa"},
				"cidade": {"nome": "Porto Alegre"},
				"estado": {"sigla": "RS"},
				"data_inicio_atividade": "2010-03-01"
			}
		}`))
	}))
	defer srv.Close()

	logs := logstore.NewMemory()
	client := registry.NewCNPJClient(srv.URL, registry.WithCNPJLogStore(logs))

	company, err := client.Lookup(context.Background(), testCNPJ)
	require.NoError(t, err)
	assert.Equal(t, "Comercio Alfa Ltda", company.Name)
	assert.Equal(t, "Alfa", company.TradeName)
	assert.Equal(t, "Ativa", company.Status)
	assert.Equal(t, "Porto Alegre", company.City)
	assert.Equal(t, "RS", company.State)
	assert.Equal(t, "2010-03-01", company.OpenedAt)

	entries, err := logs.List(logstore.CategoryLookup)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
	assert.Equal(t, testCNPJ, entries[0].Subject)
}

func TestCNPJClient_Lookup_FlatPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nome": "Padaria Beta", "situacao": "BAIXADA", "uf": "SP", "municipio": "Campinas"}`))
	}))
	defer srv.Close()

	client := registry.NewCNPJClient(srv.URL)
	company, err := client.Lookup(context.Background(), testCNPJ)
	require.NoError(t, err)
	assert.Equal(t, "Padaria Beta", company.Name)
	assert.Equal(t, "BAIXADA", company.Status)
	assert.Equal(t, "SP", company.State)
	assert.Equal(t, "Campinas", company.City)
}

func TestCNPJClient_Lookup_InvalidCNPJ(t *testing.T) {
	client := registry.NewCNPJClient("http://unused")
	_, err := client.Lookup(context.Background(), "12.345.678/0001-99")

	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "cnpj", valErr.Field)
}

func TestCNPJClient_Lookup_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		reason model.LookupReason
	}{
		{http.StatusNotFound, model.LookupNotFound},
		{http.StatusTooManyRequests, model.LookupRateLimited},
		{http.StatusInternalServerError, model.LookupFailed},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		logs := logstore.NewMemory()
		client := registry.NewCNPJClient(srv.URL, registry.WithCNPJLogStore(logs))
		_, err := client.Lookup(context.Background(), testCNPJ)
		srv.Close()

		var lookupErr *model.LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, tt.reason, lookupErr.Reason)
		assert.Equal(t, tt.status, lookupErr.Status)

		entries, listErr := logs.List(logstore.CategoryLookup)
		require.NoError(t, listErr)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Success)
		assert.NotEmpty(t, entries[0].Message)
	}
}

func TestCNPJClient_Lookup_Network(t *testing.T) {
	client := registry.NewCNPJClient("http://127.0.0.1:1")
	_, err := client.Lookup(context.Background(), testCNPJ)

	var lookupErr *model.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, model.LookupNetwork, lookupErr.Reason)
	assert.Zero(t, lookupErr.Status)
}

func TestProductClient_LookupEAN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gtins/7891000100103.json", r.URL.Path)
		assert.Equal(t, "token-123", r.Header.Get("X-Cosmos-Token"))
		w.Write([]byte(`{"gtin": "7891000100103", "description": "Leite Integral 1L", "ncm": {"code": "04012010"}, "brand": {"name": "Marca X"}}`))
	}))
	defer srv.Close()

	client := registry.NewProductClient(srv.URL, "token-123")
	product, err := client.LookupEAN(context.Background(), "7891000100103")
	require.NoError(t, err)
	assert.Equal(t, "Leite Integral 1L", product.Description)
	assert.Equal(t, "04012010", product.NCM)
	assert.Equal(t, "Marca X", product.Brand)
}

func TestProductClient_LookupNCM_FallsThroughEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/retailers/ncms/04012010" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"products": [{"description": "Leite A"}, {"description": "Leite B"}]}`))
	}))
	defer srv.Close()

	client := registry.NewProductClient(srv.URL, "t")
	products, err := client.LookupNCM(context.Background(), "04012010")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Leite A", products[0].Description)

	// first endpoint 404s, the second answers
	assert.Equal(t, []string{"/ncms/04012010/products", "/retailers/ncms/04012010"}, paths)
}

func TestProductClient_LookupNCM_AllNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := registry.NewProductClient(srv.URL, "t")
	_, err := client.LookupNCM(context.Background(), "99999999")

	var lookupErr *model.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, model.LookupNotFound, lookupErr.Reason)
}

func TestProductClient_LookupNCM_AuthFailureStopsProbing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := registry.NewProductClient(srv.URL, "bad-token")
	_, err := client.LookupNCM(context.Background(), "04012010")

	var lookupErr *model.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, model.LookupUnauthorized, lookupErr.Reason)
	assert.Equal(t, 1, calls, "only a 404 moves to the next endpoint")
}

func TestIBPTClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/TabelaIBPTax15.1.B.csv", r.URL.Path)
		w.Write([]byte("codigo;ex;tipo\n04012010;0;0\n"))
	}))
	defer srv.Close()

	logs := logstore.NewMemory()
	client := registry.NewIBPTClient(srv.URL, registry.WithIBPTLogStore(logs))

	data, err := client.Download(context.Background(), "TabelaIBPTax15.1.B")
	require.NoError(t, err)
	assert.Equal(t, "codigo;ex;tipo\n04012010;0;0\n", string(data))

	entries, err := logs.List(logstore.CategoryDownload)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
	assert.Equal(t, "TabelaIBPTax15.1.B", entries[0].Subject)
}

func TestIBPTClient_Download_FailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	logs := logstore.NewMemory()
	client := registry.NewIBPTClient(srv.URL, registry.WithIBPTLogStore(logs))

	_, err := client.Download(context.Background(), "TabelaInexistente")
	var lookupErr *model.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, model.LookupNotFound, lookupErr.Reason)

	entries, listErr := logs.List(logstore.CategoryDownload)
	require.NoError(t, listErr)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.NotEmpty(t, entries[0].Message)
}

func TestIBPTClient_Download_EmptyTable(t *testing.T) {
	logs := logstore.NewMemory()
	client := registry.NewIBPTClient("http://unused", registry.WithIBPTLogStore(logs))

	var valErr *model.ValidationError
	_, err := client.Download(context.Background(), "")
	require.ErrorAs(t, err, &valErr)

	// rejected before any request; nothing to log
	entries, listErr := logs.List(logstore.CategoryDownload)
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestDefaultIBPTTables(t *testing.T) {
	assert.Equal(t, []string{"TabelaIBPTaxBA15.1.B", "TabelaIBPTax15.1.B"}, registry.DefaultIBPTTables)
}

func TestProductClient_EmptyInputs(t *testing.T) {
	client := registry.NewProductClient("http://unused", "t")

	var valErr *model.ValidationError
	_, err := client.LookupNCM(context.Background(), "  ")
	require.ErrorAs(t, err, &valErr)

	_, err = client.LookupEAN(context.Background(), "")
	require.ErrorAs(t, err, &valErr)
}
