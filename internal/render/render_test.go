package render_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/render"
)

const testKey = "43200714200166000187550010000000046550000046"

func TestClient_Render_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/render", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	client := render.NewClient(srv.URL)
	pdf, err := client.Render(context.Background(), &model.Document{Type: model.DocTypeNFe})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(pdf))
}

func TestClient_Render_BadInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"missing infNFe"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := render.NewClient(srv.URL)
	_, err := client.Render(context.Background(), &model.Document{})

	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.True(t, renderErr.BadInput)
	assert.Equal(t, http.StatusUnprocessableEntity, renderErr.Status)
	assert.Contains(t, renderErr.Message, "missing infNFe")
}

func TestClient_Render_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := render.NewClient(srv.URL)
	_, err := client.Render(context.Background(), &model.Document{})

	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.False(t, renderErr.BadInput)
	assert.Equal(t, http.StatusInternalServerError, renderErr.Status)
}

func TestClient_RenderXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	client := render.NewClient(srv.URL)
	pdf, err := client.RenderXML(context.Background(), []byte("<NFe/>"))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestClient_Unreachable(t *testing.T) {
	client := render.NewClient("http://127.0.0.1:1")
	_, err := client.Render(context.Background(), &model.Document{})

	var renderErr *model.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Zero(t, renderErr.Status)
}

func TestBarcode(t *testing.T) {
	img, err := render.Barcode(testKey)
	require.NoError(t, err)
	require.True(t, len(img) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4], "output is a PNG")

	// pure function: identical input, identical bytes
	again, err := render.Barcode(testKey)
	require.NoError(t, err)
	assert.Equal(t, img, again)
}

func TestBarcode_InvalidKey(t *testing.T) {
	_, err := render.Barcode("1234")
	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "accessKey", valErr.Field)
}
