package keel

import (
	"github.com/keeldata/keel/pkg/collection"
	"github.com/keeldata/keel/pkg/events"
	"github.com/keeldata/keel/pkg/model"
)

// Version is the keel library version.
const Version = "0.1.0"

// Re-exported core types.
type (
	// Model is an observable attribute bag. See pkg/model.
	Model = model.Model

	// Attrs is the attribute mapping carried by a model.
	Attrs = model.Attrs

	// Collection is an ordered, indexed, observable set of models.
	// See pkg/collection.
	Collection = collection.Collection

	// Emitter is the synchronous event hub mixed into models and
	// collections. See pkg/events.
	Emitter = events.Emitter
)

// NewModel creates a model holding the given attributes.
func NewModel(attrs Attrs, opts ...model.Option) *Model {
	return model.New(attrs, opts...)
}

// NewCollection creates an empty collection.
func NewCollection(opts ...collection.Option) *Collection {
	return collection.New(opts...)
}
