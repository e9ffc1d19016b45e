package server

import (
	"github.com/rezonia/nfe-processor/internal/convert"
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/report"
)

// NormalizeResponse is the response for the normalize endpoint.
type NormalizeResponse struct {
	Document *model.Document `json:"document"`
}

// ConvertResponse is the JSON form of a batch conversion outcome.
// Artifact bytes are base64 in JSON; the archive endpoint returns a
// zip instead.
type ConvertResponse struct {
	Artifacts []ConvertedFile   `json:"artifacts"`
	Failures  []convert.Failure `json:"failures,omitempty"`
}

// ConvertedFile is one converted input.
type ConvertedFile struct {
	Name string `json:"name"`
	PDF  []byte `json:"pdf"`
}

// ReportResponse is one page of a flattened report.
type ReportResponse struct {
	Projection string            `json:"projection"`
	Columns    []string          `json:"columns"`
	Rows       []report.Row      `json:"rows"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	Failures   []convert.Failure `json:"failures,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
