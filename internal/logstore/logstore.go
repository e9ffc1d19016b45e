// Package logstore keeps append-only event logs per category: registry
// lookups, document downloads and validation runs. Stores are injected
// into whatever produces entries; there is no package-level default.
package logstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category names a log. Only the known categories are accepted.
type Category string

const (
	CategoryLookup     Category = "lookup"
	CategoryDownload   Category = "download"
	CategoryValidation Category = "validation"
)

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{CategoryLookup, CategoryDownload, CategoryValidation}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryLookup, CategoryDownload, CategoryValidation:
		return true
	}
	return false
}

// ErrUnknownCategory rejects operations on category names outside the
// fixed set.
type ErrUnknownCategory struct {
	Category string
}

func (e *ErrUnknownCategory) Error() string {
	return fmt.Sprintf("unknown log category %q", e.Category)
}

// Entry is one logged event.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
}

// NewEntry stamps an entry with a fresh id and the current time.
func NewEntry(subject string, success bool, message string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Subject:   subject,
		Success:   success,
		Message:   message,
	}
}

// Store is an append-only log keyed by category.
type Store interface {
	// Append adds an entry to the category's log.
	Append(category Category, entry Entry) error
	// List returns all entries of the category, oldest first.
	List(category Category) ([]Entry, error)
	// Clear removes every entry of the category.
	Clear(category Category) error
}
