package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
)

// Product is the normalized product record from the catalog provider.
type Product struct {
	GTIN        string `json:"gtin,omitempty"`
	Description string `json:"description"`
	NCM         string `json:"ncm,omitempty"`
	Brand       string `json:"brand,omitempty"`
}

const productTokenHeader = "X-Cosmos-Token"

// ProductClient queries the product catalog by NCM or EAN/GTIN.
type ProductClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logs       logstore.Store
	log        *zap.Logger
}

// ProductOption configures a ProductClient.
type ProductOption func(*ProductClient)

// WithProductHTTPClient overrides the HTTP client.
func WithProductHTTPClient(c *http.Client) ProductOption {
	return func(cl *ProductClient) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithProductLogStore records lookup outcomes in the lookup log.
func WithProductLogStore(s logstore.Store) ProductOption {
	return func(cl *ProductClient) { cl.logs = s }
}

// WithProductLogger attaches a logger.
func WithProductLogger(log *zap.Logger) ProductOption {
	return func(cl *ProductClient) {
		if log != nil {
			cl.log = log
		}
	}
}

// NewProductClient creates a catalog client. The token goes out on
// every request in the provider's auth header.
func NewProductClient(baseURL, token string, opts ...ProductOption) *ProductClient {
	cl := &ProductClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// LookupNCM lists products filed under an NCM code. Providers expose
// this under different paths depending on the account type, so the
// known endpoints are tried in order and a 404 moves on to the next.
func (c *ProductClient) LookupNCM(ctx context.Context, code string) ([]Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.NewValidationError("ncm", code, "must not be empty")
	}

	encoded := url.PathEscape(code)
	endpoints := []string{
		fmt.Sprintf("/ncms/%s/products", encoded),
		fmt.Sprintf("/retailers/ncms/%s", encoded),
		fmt.Sprintf("/ncms/%s/products.json", encoded),
	}

	for _, path := range endpoints {
		doc, err := c.get(ctx, code, path)
		if err != nil {
			var lookupErr *model.LookupError
			if errors.As(err, &lookupErr) && lookupErr.Reason == model.LookupNotFound {
				continue // next endpoint
			}
			c.record(code, err)
			return nil, err
		}
		products := productsFrom(doc)
		c.record(code, nil)
		return products, nil
	}

	err := model.NewLookupError(code, http.StatusNotFound, nil)
	c.record(code, err)
	return nil, err
}

// LookupEAN fetches a single product by its EAN/GTIN barcode.
func (c *ProductClient) LookupEAN(ctx context.Context, ean string) (*Product, error) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return nil, model.NewValidationError("ean", ean, "must not be empty")
	}

	doc, err := c.get(ctx, ean, fmt.Sprintf("/gtins/%s.json", url.PathEscape(ean)))
	c.record(ean, err)
	if err != nil {
		return nil, err
	}
	p := productFrom(doc)
	return &p, nil
}

func (c *ProductClient) get(ctx context.Context, subject, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, model.NewLookupError(subject, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(productTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewLookupError(subject, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewLookupError(subject, resp.StatusCode, nil)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, model.NewLookupError(subject, 0, err)
	}
	return doc, nil
}

func productFrom(doc map[string]any) Product {
	return Product{
		GTIN:        probe(doc, "gtin", "ean", "barcode"),
		Description: probe(doc, "description", "name", "nome"),
		NCM:         probe(doc, "ncm.code", "ncm"),
		Brand:       probe(doc, "brand.name", "brand", "marca"),
	}
}

func productsFrom(doc map[string]any) []Product {
	list, ok := doc["products"].([]any)
	if !ok {
		// single-product payload
		if p := productFrom(doc); p != (Product{}) {
			return []Product{p}
		}
		return nil
	}

	var out []Product
	for _, raw := range list {
		if m, ok := raw.(map[string]any); ok {
			out = append(out, productFrom(m))
		}
	}
	return out
}

func (c *ProductClient) record(subject string, err error) {
	if err != nil {
		c.log.Warn("product lookup failed", zap.String("subject", subject), zap.Error(err))
	}

	if c.logs == nil {
		return
	}
	entry := logstore.NewEntry(subject, err == nil, "")
	if err != nil {
		entry.Message = err.Error()
	}
	if appendErr := c.logs.Append(logstore.CategoryLookup, entry); appendErr != nil {
		c.log.Warn("lookup log append failed", zap.Error(appendErr))
	}
}
