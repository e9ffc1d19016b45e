package model

import "fmt"

// ParseError represents a fatal XML parsing failure.
type ParseError struct {
	Name    string // display name of the input, when known
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse %s: %s (%v)", e.name(), e.Message, e.Cause)
	}
	return fmt.Sprintf("parse %s: %s", e.name(), e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) name() string {
	if e.Name == "" {
		return "document"
	}
	return e.Name
}

// NewParseError creates a new parse error.
func NewParseError(name, message string, cause error) *ParseError {
	return &ParseError{Name: name, Message: message, Cause: cause}
}

// DocumentTypeError is returned when the XML carries neither an infNFe
// nor an infCte element.
type DocumentTypeError struct {
	Root string // root element tag, for diagnostics
}

func (e *DocumentTypeError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("unrecognized document type (root <%s>)", e.Root)
	}
	return "unrecognized document type"
}

// StructureError is returned when a document claims a type but lacks the
// mandatory structural block for it.
type StructureError struct {
	DocType DocType
	Missing string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s document missing required block <%s>", e.DocType, e.Missing)
}

// ValidationError represents a rejected identifier or input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// RenderError represents a failure of the external rendering service.
// BadInput distinguishes client-error responses from service failures.
type RenderError struct {
	Status   int
	BadInput bool
	Message  string
	Cause    error
}

func (e *RenderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("render failed (HTTP %d): %s", e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("render failed: %s (%v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("render failed: %s", e.Message)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// LookupReason classifies registry lookup failures by provider status.
type LookupReason string

const (
	LookupNotFound     LookupReason = "not_found"
	LookupUnauthorized LookupReason = "unauthorized"
	LookupForbidden    LookupReason = "forbidden"
	LookupRateLimited  LookupReason = "rate_limited"
	LookupFailed       LookupReason = "failed"
	LookupNetwork      LookupReason = "network"
)

// LookupError represents an external registry failure, already mapped to
// a domain reason at the call site.
type LookupError struct {
	Subject string
	Reason  LookupReason
	Status  int
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("lookup %s: %s (HTTP %d)", e.Subject, e.Reason, e.Status)
	}
	return fmt.Sprintf("lookup %s: %s", e.Subject, e.Reason)
}

func (e *LookupError) Unwrap() error { return e.Cause }

// NewLookupError creates a lookup error from a provider status code.
// Status 0 means the request never got a response.
func NewLookupError(subject string, status int, cause error) *LookupError {
	reason := LookupFailed
	switch status {
	case 0:
		reason = LookupNetwork
	case 401:
		reason = LookupUnauthorized
	case 403:
		reason = LookupForbidden
	case 404:
		reason = LookupNotFound
	case 429:
		reason = LookupRateLimited
	}
	return &LookupError{Subject: subject, Reason: reason, Status: status, Cause: cause}
}
