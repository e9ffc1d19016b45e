package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
)

// DefaultIBPTTables are the tax table files fetched when no explicit
// table names are given.
var DefaultIBPTTables = []string{
	"TabelaIBPTaxBA15.1.B",
	"TabelaIBPTax15.1.B",
}

// IBPTClient downloads IBPT tax table CSVs from a configured mirror.
// Every download outcome, success or failure, lands in the download
// log.
type IBPTClient struct {
	baseURL    string
	httpClient *http.Client
	logs       logstore.Store
	log        *zap.Logger
}

// IBPTOption configures an IBPTClient.
type IBPTOption func(*IBPTClient)

// WithIBPTHTTPClient overrides the HTTP client.
func WithIBPTHTTPClient(c *http.Client) IBPTOption {
	return func(cl *IBPTClient) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithIBPTLogStore records every download outcome in the download log.
func WithIBPTLogStore(s logstore.Store) IBPTOption {
	return func(cl *IBPTClient) { cl.logs = s }
}

// WithIBPTLogger attaches a logger.
func WithIBPTLogger(log *zap.Logger) IBPTOption {
	return func(cl *IBPTClient) {
		if log != nil {
			cl.log = log
		}
	}
}

// NewIBPTClient creates a client against the given mirror base URL.
func NewIBPTClient(baseURL string, opts ...IBPTOption) *IBPTClient {
	cl := &IBPTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Download fetches the named table as CSV bytes. The .csv extension is
// appended here; callers pass the bare table name, which also serves as
// the download log subject.
func (c *IBPTClient) Download(ctx context.Context, table string) ([]byte, error) {
	if table == "" {
		return nil, model.NewValidationError("table", table, "must not be empty")
	}

	data, err := c.fetch(ctx, table)
	c.record(table, err)
	return data, err
}

func (c *IBPTClient) fetch(ctx context.Context, table string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s.csv", c.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, model.NewLookupError(table, 0, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewLookupError(table, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewLookupError(table, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewLookupError(table, 0, err)
	}
	return data, nil
}

func (c *IBPTClient) record(table string, err error) {
	if err != nil {
		c.log.Warn("ibpt download failed", zap.String("table", table), zap.Error(err))
	} else {
		c.log.Info("ibpt download ok", zap.String("table", table))
	}

	if c.logs == nil {
		return
	}
	entry := logstore.NewEntry(table, err == nil, "")
	if err != nil {
		entry.Message = err.Error()
	}
	if appendErr := c.logs.Append(logstore.CategoryDownload, entry); appendErr != nil {
		c.log.Warn("download log append failed", zap.Error(appendErr))
	}
}
