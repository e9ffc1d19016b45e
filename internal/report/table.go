package report

import "github.com/rezonia/nfe-processor/internal/model"

const defaultPerPage = 100

// Table is the stateful view over a document set: active projection,
// filter query and current page. Changing the documents, the projection
// or the query re-anchors the page to 1; rows are recomputed on demand
// and never cached across changes.
type Table struct {
	docs       []*model.Document
	projection Projection
	query      string
	page       int
	perPage    int
}

// NewTable starts with the default projection, no query, page 1.
func NewTable() *Table {
	return &Table{
		projection: Default(),
		page:       1,
		perPage:    defaultPerPage,
	}
}

// SetDocuments replaces the underlying document set.
func (t *Table) SetDocuments(docs []*model.Document) {
	t.docs = docs
	t.page = 1
}

// SetProjection switches the active projection by name. Unknown names
// leave the projection unchanged and report false.
func (t *Table) SetProjection(name string) bool {
	p, ok := Lookup(name)
	if !ok {
		return false
	}
	if p.Name != t.projection.Name {
		t.projection = p
		t.page = 1
	}
	return true
}

// SetQuery updates the filter query.
func (t *Table) SetQuery(query string) {
	if query != t.query {
		t.query = query
		t.page = 1
	}
}

// SetPage moves to the given 1-based page.
func (t *Table) SetPage(page int) {
	if page >= 1 {
		t.page = page
	}
}

// SetPerPage changes the page size, keeping the current page index.
func (t *Table) SetPerPage(n int) {
	if n >= 1 {
		t.perPage = n
	}
}

// Projection returns the active projection.
func (t *Table) Projection() Projection { return t.projection }

// Page returns the current 1-based page index.
func (t *Table) Page() int { return t.page }

// PerPage returns the current page size.
func (t *Table) PerPage() int { return t.perPage }

// Filtered returns the full filtered row set, ignoring pagination.
// Export always works from this set.
func (t *Table) Filtered() []Row {
	return Filter(Flatten(t.docs, t.projection), t.query)
}

// Rows returns the current page of the filtered set.
func (t *Table) Rows() []Row {
	return Paginate(t.Filtered(), t.page, t.perPage)
}

// TotalRows returns the filtered row count, for pagination displays.
func (t *Table) TotalRows() int {
	return len(t.Filtered())
}
