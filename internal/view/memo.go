package view

import (
	"golang.org/x/text/collate"

	"github.com/five82/potluck/internal/cache"
)

// Memo rebuilds a View only when the cache version or the query changes.
// It is not safe for concurrent use.
type Memo struct {
	coll    *collate.Collator
	version uint64
	query   string
	view    View
	valid   bool
}

// NewMemo returns a Memo that sorts names for locale.
func NewMemo(locale string) *Memo {
	return &Memo{coll: NewCollator(locale)}
}

// View returns the view of snap for query.
func (m *Memo) View(snap cache.Snapshot, query string) View {
	if m.valid && m.version == snap.Version && m.query == query {
		return m.view
	}
	if m.coll == nil {
		m.coll = NewCollator("")
	}
	m.view = Build(snap.Records, query, m.coll)
	m.version = snap.Version
	m.query = query
	m.valid = true
	return m.view
}
