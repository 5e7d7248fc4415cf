package collection

import (
	"iter"

	"github.com/keeldata/keel/pkg/model"
)

// IterKind selects what an iterator yields.
type IterKind int

// Iterator modes.
const (
	// IterValues yields the models themselves.
	IterValues IterKind = iota
	// IterKeys yields resolved ids (falling back to cids).
	IterKeys
	// IterEntries yields key/model pairs.
	IterEntries
)

// Entry is one step of an iteration. Key is populated in keys and entries
// modes, Model in values and entries modes.
type Entry struct {
	Key   string
	Model *model.Model
}

// Iterator is a single-pass, forward-only cursor over a collection. Each
// advance reads the collection live at the current position, so mutation
// during iteration is reflected in subsequent reads. Once the cursor reaches
// the collection's length it is permanently exhausted, even if the collection
// later grows.
type Iterator struct {
	c     *Collection
	kind  IterKind
	index int
	done  bool
}

// Values returns an iterator over the collection's models.
func (c *Collection) Values() *Iterator {
	return &Iterator{c: c, kind: IterValues}
}

// Keys returns an iterator over the collection's resolved ids. Models
// without a server id yield their cid.
func (c *Collection) Keys() *Iterator {
	return &Iterator{c: c, kind: IterKeys}
}

// Entries returns an iterator over key/model pairs.
func (c *Collection) Entries() *Iterator {
	return &Iterator{c: c, kind: IterEntries}
}

// Next advances the cursor. It returns false once the collection is
// exhausted, and from then on always returns false.
func (it *Iterator) Next() (Entry, bool) {
	if it.done || it.c == nil || it.index >= it.c.Len() {
		it.done = true
		return Entry{}, false
	}

	m := it.c.At(it.index)
	it.index++

	switch it.kind {
	case IterKeys:
		return Entry{Key: keyOf(m)}, true
	case IterEntries:
		return Entry{Key: keyOf(m), Model: m}, true
	default:
		return Entry{Model: m}, true
	}
}

// Seq adapts the iterator for range-over-func loops. The sequence consumes
// the same cursor, so it is single-pass like the iterator itself.
func (it *Iterator) Seq() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for {
			entry, ok := it.Next()
			if !ok {
				return
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// keyOf resolves a model's iteration key: its id, or its cid when it has
// no server id yet.
func keyOf(m *model.Model) string {
	if id := m.ID(); id != "" {
		return id
	}
	return m.CID()
}
