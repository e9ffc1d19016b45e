package logstore

import "sync"

// Memory is an in-process Store for tests and ephemeral runs.
type Memory struct {
	mu      sync.Mutex
	entries map[Category][]Entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[Category][]Entry)}
}

func (m *Memory) Append(category Category, entry Entry) error {
	if !category.Valid() {
		return &ErrUnknownCategory{Category: string(category)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[category] = append(m.entries[category], entry)
	return nil
}

func (m *Memory) List(category Category) ([]Entry, error) {
	if !category.Valid() {
		return nil, &ErrUnknownCategory{Category: string(category)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries[category]))
	copy(out, m.entries[category])
	return out, nil
}

func (m *Memory) Clear(category Category) error {
	if !category.Valid() {
		return &ErrUnknownCategory{Category: string(category)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, category)
	return nil
}

var _ Store = (*Memory)(nil)
