package layout

import (
	"strconv"
	"strings"
	"sync"
)

const defaultMemoSize = 64

// Memo caches Columns results keyed by the exact item set, so repeated
// renders of an unchanged day skip the packing pass.
type Memo struct {
	mu      sync.Mutex
	limit   int
	entries map[string][]Placement
	order   []string
}

func NewMemo(limit int) *Memo {
	if limit <= 0 {
		limit = defaultMemoSize
	}
	return &Memo{limit: limit, entries: make(map[string][]Placement)}
}

func fingerprint(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.Key)
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(it.Start.Unix(), 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(it.End.Unix(), 10))
		b.WriteByte(';')
	}
	return b.String()
}

// Columns returns Columns(items), reusing a previous result when the items
// are unchanged.
func (m *Memo) Columns(items []Item) []Placement {
	key := fingerprint(items)

	m.mu.Lock()
	if cached, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return append([]Placement(nil), cached...)
	}
	m.mu.Unlock()

	result := Columns(items)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		if len(m.order) >= m.limit {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
		m.order = append(m.order, key)
		m.entries[key] = result
	}
	return append([]Placement(nil), result...)
}

// Len returns the number of cached layouts.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
