package collection

import (
	"github.com/keeldata/keel/pkg/model"
	"github.com/keeldata/keel/pkg/sync"
)

// Option configures a collection at construction.
type Option func(*Collection)

// WithIDAttribute sets the attribute key models in this collection resolve
// their server id from. This is explicit per-collection configuration; there
// is no global convention.
func WithIDAttribute(key string) Option {
	return func(c *Collection) {
		if key != "" {
			c.idAttribute = key
		}
	}
}

// WithComparator makes the collection a sorted set under the given ordering.
func WithComparator(cmp *Comparator) Option {
	return func(c *Collection) {
		c.comparator = cmp
	}
}

// WithURL sets the collection's endpoint.
func WithURL(url string) Option {
	return func(c *Collection) {
		c.url = url
	}
}

// WithFactory sets the coercion from raw attributes to models.
func WithFactory(factory Factory) Option {
	return func(c *Collection) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithSyncer sets the persistence adapter for this collection and the
// models its default factory builds.
func WithSyncer(s sync.Syncer) Option {
	return func(c *Collection) {
		c.syncer = s
	}
}

// WithParser sets the conversion from raw sync responses to attribute
// items, replacing the default top-level JSON array.
func WithParser(p Parser) Option {
	return func(c *Collection) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithModels seeds the collection, silently.
func WithModels(models []*model.Model) Option {
	return func(c *Collection) {
		c.Set(models, Silent())
	}
}

// setOptions configures a reconciliation pass. The zero configuration of a
// plain Set enables add, remove, and merge.
type setOptions struct {
	add    bool
	remove bool
	merge  bool

	at     *int
	sort   bool // sorting enabled (default true)
	silent bool
}

// SetOption configures a Set, Add, Remove, Reset, or Sort call.
type SetOption func(*setOptions)

// Silent suppresses the events the mutation would normally fire.
func Silent() SetOption {
	return func(o *setOptions) {
		o.silent = true
	}
}

// At splices newly added models in at the given index instead of the end.
// Negative values count from the end plus one; out-of-range clamps.
func At(index int) SetOption {
	return func(o *setOptions) {
		i := index
		o.at = &i
	}
}

// WithoutAdd disables adding models not already present.
func WithoutAdd() SetOption {
	return func(o *setOptions) {
		o.add = false
	}
}

// WithoutRemove disables removing models absent from the input.
func WithoutRemove() SetOption {
	return func(o *setOptions) {
		o.remove = false
	}
}

// WithoutMerge disables merging input attributes into existing models.
func WithoutMerge() SetOption {
	return func(o *setOptions) {
		o.merge = false
	}
}

// WithMerge enables merging for operations that default it off, like Add.
func WithMerge() SetOption {
	return func(o *setOptions) {
		o.merge = true
	}
}

// WithoutSort suppresses comparator-driven resorting for this mutation.
func WithoutSort() SetOption {
	return func(o *setOptions) {
		o.sort = false
	}
}

func newSetOptions(opts ...SetOption) *setOptions {
	options := &setOptions{add: true, remove: true, merge: true, sort: true}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
