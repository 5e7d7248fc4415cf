// Package collection provides the core of the keel data layer: an ordered,
// uniquely-indexed, event-emitting aggregate of models.
//
// A Collection owns an ordered list of models (the authoritative order) plus
// a secondary index keyed by both cid and resolved server id. Incoming data
// is reconciled against current membership by Set, which adds, merges, and
// removes with the minimum necessary events. When a comparator is
// configured, order is maintained automatically after every mutation that
// doesn't explicitly disable sorting.
//
// Collections re-emit every event of every model they own, so listening to
// a collection observes all of its members. Event dispatch is synchronous
// and re-entrant; collections perform no internal locking and must be
// confined to one goroutine.
package collection

import (
	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/events"
	"github.com/keeldata/keel/pkg/model"
	"github.com/keeldata/keel/pkg/sync"
)

// Collection is an ordered, indexed, observable set of models.
type Collection struct {
	events.Emitter

	models []*model.Model
	byID   map[string]*model.Model

	comparator  *Comparator
	idAttribute string
	url         string
	factory     Factory
	syncer      sync.Syncer
	parser      Parser

	// wildcard subscription per owned model, keyed by cid
	subs map[string]*events.Subscription
}

// Factory coerces raw attributes into a model. Returning an error rejects
// the item; the collection drops it and fires "invalid".
type Factory func(attrs model.Attrs) (*model.Model, error)

// New creates an empty collection.
func New(opts ...Option) *Collection {
	c := &Collection{
		byID:        make(map[string]*model.Model),
		idAttribute: model.DefaultIDAttribute,
		subs:        make(map[string]*events.Subscription),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.factory == nil {
		c.factory = c.defaultFactory
	}

	return c
}

// defaultFactory builds a plain model carrying the collection's id
// attribute and syncer.
func (c *Collection) defaultFactory(attrs model.Attrs) (*model.Model, error) {
	m := model.New(attrs,
		model.WithIDAttribute(c.idAttribute),
		model.WithSyncer(c.syncer),
	)
	return m, nil
}

// Len returns the number of models, always equal to the length of Models().
func (c *Collection) Len() int {
	return len(c.models)
}

// IsEmpty reports whether the collection holds no models.
func (c *Collection) IsEmpty() bool {
	return len(c.models) == 0
}

// Models returns a copy of the ordered backing list.
func (c *Collection) Models() []*model.Model {
	out := make([]*model.Model, len(c.models))
	copy(out, c.models)
	return out
}

// Comparator returns the configured ordering, or nil for an unsorted
// collection.
func (c *Collection) Comparator() *Comparator {
	return c.comparator
}

// SetComparator replaces the ordering rule. The collection is not resorted
// until the next sorting mutation or explicit Sort.
func (c *Collection) SetComparator(cmp *Comparator) {
	c.comparator = cmp
}

// IDAttribute returns the attribute key models in this collection resolve
// their server id from.
func (c *Collection) IDAttribute() string {
	return c.idAttribute
}

// ModelID resolves the index key for raw attributes.
func (c *Collection) ModelID(attrs model.Attrs) string {
	return model.IDString(attrs[c.idAttribute])
}

// URL resolves the collection's endpoint.
func (c *Collection) URL() (string, error) {
	if c.url == "" {
		return "", errors.ErrNoURL
	}
	return c.url, nil
}

// Get returns the model matching key, or nil. The key may be a model
// (matched by cid, then id), an id or cid string, raw attributes (resolved
// through the id attribute), or a raw id value such as an int.
func (c *Collection) Get(key any) *model.Model {
	switch k := key.(type) {
	case nil:
		return nil
	case *model.Model:
		if k == nil {
			return nil
		}
		if m, ok := c.byID[k.CID()]; ok {
			return m
		}
		if id := k.ID(); id != "" {
			return c.byID[id]
		}
		return nil
	case string:
		return c.byID[k]
	case model.Attrs:
		if m, ok := c.byID[c.ModelID(k)]; ok {
			return m
		}
		return nil
	case map[string]any:
		return c.Get(model.Attrs(k))
	default:
		if id := model.IDString(key); id != "" {
			return c.byID[id]
		}
		return nil
	}
}

// Has reports whether a model matching key is present.
func (c *Collection) Has(key any) bool {
	return c.Get(key) != nil
}

// At returns the model at the given position. Negative indices count from
// the end; out-of-range returns nil.
func (c *Collection) At(index int) *model.Model {
	if index < 0 {
		index += len(c.models)
	}
	if index < 0 || index >= len(c.models) {
		return nil
	}
	return c.models[index]
}

// IndexOf returns the position of a model matching key, or -1.
func (c *Collection) IndexOf(key any) int {
	m := c.Get(key)
	if m == nil {
		return -1
	}
	for i, cur := range c.models {
		if cur == m {
			return i
		}
	}
	return -1
}

// Slice returns models in [from, to). Negative bounds count from the end;
// bounds are clamped.
func (c *Collection) Slice(from, to int) []*model.Model {
	n := len(c.models)
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	from = clamp(from, 0, n)
	to = clamp(to, from, n)
	out := make([]*model.Model, to-from)
	copy(out, c.models[from:to])
	return out
}

// Sort orders the backing list by the configured comparator and fires
// "sort". Calling Sort on a collection without a comparator is a contract
// violation and panics.
func (c *Collection) Sort(opts ...SetOption) {
	if c.comparator == nil {
		panic(errors.ErrNoComparator)
	}

	options := newSetOptions(opts...)
	c.comparator.sort(c.models)

	if !options.silent {
		c.Trigger("sort", c)
	}
}

// Pluck extracts the named attribute from every model, in order.
func (c *Collection) Pluck(field string) []any {
	out := make([]any, len(c.models))
	for i, m := range c.models {
		out[i] = m.Get(field)
	}
	return out
}

// ToJSON returns the serializable state of every model, in order.
func (c *Collection) ToJSON() []model.Attrs {
	out := make([]model.Attrs, len(c.models))
	for i, m := range c.models {
		out[i] = m.ToJSON()
	}
	return out
}

// SyncData implements sync.Target.
func (c *Collection) SyncData() any {
	return c.ToJSON()
}

// Clone returns a collection with the same configuration and membership.
// Models are shared by reference; event subscriptions are not copied.
func (c *Collection) Clone() *Collection {
	clone := New(
		WithIDAttribute(c.idAttribute),
		WithURL(c.url),
		WithFactory(c.factory),
		WithSyncer(c.syncer),
	)
	clone.comparator = c.comparator
	clone.Set(c.Models(), Silent())
	return clone
}

// Push appends a model, returning it.
func (c *Collection) Push(m *model.Model, opts ...SetOption) *model.Model {
	added := c.Add([]*model.Model{m}, append(opts, At(len(c.models)))...)
	if len(added) == 0 {
		return nil
	}
	return added[0]
}

// Pop removes and returns the last model, or nil when empty.
func (c *Collection) Pop(opts ...SetOption) *model.Model {
	m := c.At(len(c.models) - 1)
	if m == nil {
		return nil
	}
	return c.RemoveOne(m, opts...)
}

// Unshift prepends a model, returning it.
func (c *Collection) Unshift(m *model.Model, opts ...SetOption) *model.Model {
	added := c.Add([]*model.Model{m}, append(opts, At(0))...)
	if len(added) == 0 {
		return nil
	}
	return added[0]
}

// Shift removes and returns the first model, or nil when empty.
func (c *Collection) Shift(opts ...SetOption) *model.Model {
	m := c.At(0)
	if m == nil {
		return nil
	}
	return c.RemoveOne(m, opts...)
}

// addReference registers a model in the index and starts forwarding its
// events. Registration happens before the model is spliced into the order,
// so duplicate detection within one reconciliation batch sees it.
func (c *Collection) addReference(m *model.Model) {
	c.byID[m.CID()] = m
	if id := m.ID(); id != "" {
		c.byID[id] = m
	}
	if m.Owner() == nil {
		m.SetOwner(c)
	}
	c.subs[m.CID()] = m.OnAll(func(event string, args ...any) {
		c.onModelEvent(m, event, args)
	})
}

// removeReference severs the model/collection subscription after the model
// has left the index.
func (c *Collection) removeReference(m *model.Model) {
	if sub, ok := c.subs[m.CID()]; ok {
		sub.Cancel()
		delete(c.subs, m.CID())
	}
	if m.Owner() == c {
		m.SetOwner(nil)
	}
}

// unindex purges both key forms for a model. Removal always unindexes
// before any removal event is emitted, so re-entrant observers never see a
// half-removed model.
func (c *Collection) unindex(m *model.Model) {
	delete(c.byID, m.CID())
	if id := m.ID(); id != "" {
		if cur, ok := c.byID[id]; ok && cur == m {
			delete(c.byID, id)
		}
	}
}

// onModelEvent re-emits an owned model's events verbatim, additionally
// reacting to destroy signals and identity changes.
func (c *Collection) onModelEvent(m *model.Model, event string, args []any) {
	// add/remove events describe membership in a specific collection;
	// only forward our own.
	if event == "add" || event == "remove" {
		if len(args) < 2 || args[1] != any(c) {
			return
		}
	}

	switch event {
	case "destroy":
		c.Remove([]*model.Model{m})
	case "change:" + c.idAttribute:
		prev := model.IDString(m.Previous(c.idAttribute))
		if prev != "" {
			if cur, ok := c.byID[prev]; ok && cur == m {
				delete(c.byID, prev)
			}
		}
		if id := m.ID(); id != "" {
			c.byID[id] = m
		}
	}

	c.Trigger(event, args...)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
