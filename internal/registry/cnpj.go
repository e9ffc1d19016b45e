package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
)

// Company is the normalized company record assembled from whatever
// shape the registry answered with.
type Company struct {
	CNPJ      string `json:"cnpj"`
	Name      string `json:"name"`
	TradeName string `json:"tradeName,omitempty"`
	Status    string `json:"status,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	OpenedAt  string `json:"openedAt,omitempty"`
}

// CNPJClient looks companies up by CNPJ in a public registry.
type CNPJClient struct {
	baseURL    string
	httpClient *http.Client
	logs       logstore.Store
	log        *zap.Logger
}

// CNPJOption configures a CNPJClient.
type CNPJOption func(*CNPJClient)

// WithCNPJHTTPClient overrides the HTTP client.
func WithCNPJHTTPClient(c *http.Client) CNPJOption {
	return func(cl *CNPJClient) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithCNPJLogStore records every lookup outcome in the lookup log.
func WithCNPJLogStore(s logstore.Store) CNPJOption {
	return func(cl *CNPJClient) { cl.logs = s }
}

// WithCNPJLogger attaches a logger.
func WithCNPJLogger(log *zap.Logger) CNPJOption {
	return func(cl *CNPJClient) {
		if log != nil {
			cl.log = log
		}
	}
}

// NewCNPJClient creates a client against the given registry base URL.
func NewCNPJClient(baseURL string, opts ...CNPJOption) *CNPJClient {
	cl := &CNPJClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Lookup fetches the company registered under cnpj. The input must be
// exactly 14 digits, unformatted. Provider failures come back as
// LookupError with the status mapped to a reason.
func (c *CNPJClient) Lookup(ctx context.Context, cnpj string) (*Company, error) {
	if !model.ValidCNPJ(cnpj) {
		return nil, model.NewValidationError("cnpj", cnpj, "must be 14 digits")
	}

	company, err := c.fetch(ctx, cnpj)
	c.record(cnpj, company, err)
	return company, err
}

func (c *CNPJClient) fetch(ctx context.Context, cnpj string) (*Company, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, cnpj)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, model.NewLookupError(cnpj, 0, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewLookupError(cnpj, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewLookupError(cnpj, resp.StatusCode, nil)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, model.NewLookupError(cnpj, 0, err)
	}

	return companyFrom(cnpj, doc), nil
}

// companyFrom tolerates the two payload families seen in the wild: the
// flat legacy shape and the nested estabelecimento shape.
func companyFrom(cnpj string, doc map[string]any) *Company {
	return &Company{
		CNPJ: cnpj,
		Name: probe(doc, "razao_social", "nome", "name"),
		TradeName: probe(doc,
			"estabelecimento.nome_fantasia", "fantasia", "nome_fantasia", "trade_name"),
		Status: probe(doc,
			"estabelecimento.situacao_cadastral.descricao",
			"estabelecimento.situacao_cadastral",
			"situacao", "status"),
		City: probe(doc,
			"estabelecimento.cidade.nome", "municipio", "cidade", "city"),
		State: probe(doc,
			"estabelecimento.estado.sigla", "uf", "estado", "state"),
		OpenedAt: probe(doc,
			"estabelecimento.data_inicio_atividade", "abertura", "data_abertura"),
	}
}

func (c *CNPJClient) record(cnpj string, company *Company, err error) {
	if err != nil {
		c.log.Warn("cnpj lookup failed", zap.String("cnpj", cnpj), zap.Error(err))
	} else {
		c.log.Info("cnpj lookup ok", zap.String("cnpj", cnpj), zap.String("name", company.Name))
	}

	if c.logs == nil {
		return
	}
	entry := logstore.NewEntry(cnpj, err == nil, "")
	if err != nil {
		entry.Message = err.Error()
	}
	if appendErr := c.logs.Append(logstore.CategoryLookup, entry); appendErr != nil {
		c.log.Warn("lookup log append failed", zap.Error(appendErr))
	}
}
