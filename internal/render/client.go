package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rezonia/nfe-processor/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client talks to the external document rendering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a rendering client for the given service base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render posts the normalized document and returns the PDF bytes.
func (c *Client) Render(ctx context.Context, doc *model.Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, &model.RenderError{Message: "encode document", Cause: err}
	}
	return c.post(ctx, "/render", "application/json", body)
}

// RenderXML posts a raw fiscal XML and returns the PDF bytes. The
// service normalizes the document itself in this mode.
func (c *Client) RenderXML(ctx context.Context, xml []byte) ([]byte, error) {
	return c.post(ctx, "/render", "application/xml", xml)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &model.RenderError{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.RenderError{Message: "rendering service unreachable", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.RenderError{Message: "read response", Cause: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &model.RenderError{
			Status:   resp.StatusCode,
			BadInput: true,
			Message:  responseMessage(data),
		}
	default:
		return nil, &model.RenderError{
			Status:  resp.StatusCode,
			Message: responseMessage(data),
		}
	}
}

func responseMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "rendering service error"
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

var _ Renderer = (*Client)(nil)
