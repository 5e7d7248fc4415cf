// Package model provides the observable attribute bag at the bottom of the
// keel data layer. A Model carries a process-unique client id (cid), an
// optional server id under a configurable id attribute, and a mutable set of
// attributes. Attribute changes fire "change:<field>" events followed by a
// single "change" event, which collections re-emit for every model they own.
package model

import (
	"maps"
	"net/url"
	"reflect"
	"sort"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/events"
	"github.com/keeldata/keel/pkg/sync"
)

// Attrs is the attribute mapping carried by a model. Values decoded from
// JSON follow encoding/json conventions (float64 numbers, nested
// map[string]any objects).
type Attrs map[string]any

// Copy returns a shallow copy of the attributes.
func (a Attrs) Copy() Attrs {
	if a == nil {
		return Attrs{}
	}
	out := make(Attrs, len(a))
	maps.Copy(out, a)
	return out
}

// Validator checks a prospective attribute state and returns an error to
// reject it. Returning nil accepts the state.
type Validator func(attrs Attrs) error

// Owner is the collection-shaped back-reference a model uses to resolve its
// URL when it has no url root of its own.
type Owner interface {
	URL() (string, error)
}

// Model is a mutable, observable record.
//
// Models are not safe for concurrent use; all interaction with a model and
// any collection that owns it must happen on one goroutine.
type Model struct {
	events.Emitter

	cid         string
	idAttribute string
	attributes  Attrs
	previous    Attrs
	changed     Attrs
	changing    bool
	pending     bool

	validator     Validator
	validationErr error

	urlRoot string
	owner   Owner
	syncer  sync.Syncer
}

// New creates a model holding the given attributes. A fresh cid is assigned;
// cids are never reused within a process.
func New(attrs Attrs, opts ...Option) *Model {
	m := &Model{
		cid:         newCID(),
		idAttribute: DefaultIDAttribute,
		attributes:  attrs.Copy(),
		previous:    Attrs{},
		changed:     Attrs{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// newCID generates a process-unique client identifier.
func newCID() string {
	return "c" + ulid.Make().String()
}

// CID returns the client identifier, stable for the model's lifetime.
func (m *Model) CID() string {
	return m.cid
}

// IDAttribute returns the attribute key holding the server identifier.
func (m *Model) IDAttribute() string {
	return m.idAttribute
}

// ID returns the server identifier as a string, or "" when the model has
// not been assigned one.
func (m *Model) ID() string {
	return IDString(m.attributes[m.idAttribute])
}

// IsNew reports whether the model has no server identifier yet.
func (m *Model) IsNew() bool {
	return m.ID() == ""
}

// Get returns an attribute value, or nil when absent.
func (m *Model) Get(key string) any {
	return m.attributes[key]
}

// Has reports whether an attribute is present and non-nil.
func (m *Model) Has(key string) bool {
	return m.attributes[key] != nil
}

// Attributes returns a copy of the current attributes.
func (m *Model) Attributes() Attrs {
	return m.attributes.Copy()
}

// ToJSON returns the serializable state of the model, a copy of its
// attributes.
func (m *Model) ToJSON() Attrs {
	return m.attributes.Copy()
}

// Set applies attribute changes, firing "change:<field>" per touched field
// and an aggregate "change" event once the outermost call finishes. A nested
// Set performed by a change handler folds into the outer call's change
// cycle, and changes made during "change" dispatch re-fire the aggregate
// event until handlers stop changing attributes.
//
// With WithValidation, the prospective state is checked first; a rejection
// records the validation error, fires "invalid", and leaves the attributes
// untouched.
func (m *Model) Set(attrs Attrs, opts ...SetOption) error {
	if attrs == nil {
		return nil
	}

	options := newSetOptions(opts...)

	if options.validate && m.validator != nil {
		merged := m.attributes.Copy()
		for key, value := range attrs {
			if options.unset {
				delete(merged, key)
			} else {
				merged[key] = value
			}
		}
		if err := m.validator(merged); err != nil {
			m.validationErr = err
			if !options.silent {
				m.Trigger("invalid", m, err)
			}
			return err
		}
	}
	m.validationErr = nil

	changing := m.changing
	m.changing = true

	if !changing {
		m.previous = m.attributes.Copy()
		m.changed = Attrs{}
	}
	if m.attributes == nil {
		m.attributes = Attrs{}
	}

	// Change events fire in sorted key order so dispatch is deterministic.
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changedKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		value := attrs[key]
		current, exists := m.attributes[key]
		if options.unset {
			if !exists {
				continue
			}
			delete(m.attributes, key)
			m.changed[key] = nil
			changedKeys = append(changedKeys, key)
			continue
		}
		if exists && equal(current, value) {
			continue
		}
		m.attributes[key] = value
		m.changed[key] = value
		changedKeys = append(changedKeys, key)
	}

	if !options.silent {
		if len(changedKeys) > 0 {
			m.pending = true
		}
		for _, key := range changedKeys {
			m.Trigger("change:"+key, m, m.attributes[key])
		}
	}

	if !changing {
		if !options.silent {
			// Changes made by change handlers re-fire the aggregate
			// event until handlers stop changing attributes.
			for m.pending {
				m.pending = false
				m.Trigger("change", m)
			}
		}
		m.pending = false
		m.changing = false
	}

	return nil
}

// Unset removes attributes, firing the same change events as Set.
func (m *Model) Unset(keys ...string) {
	attrs := make(Attrs, len(keys))
	for _, key := range keys {
		attrs[key] = nil
	}
	_ = m.Set(attrs, setUnset())
}

// Clear removes every attribute.
func (m *Model) Clear() {
	attrs := make(Attrs, len(m.attributes))
	for key := range m.attributes {
		attrs[key] = nil
	}
	_ = m.Set(attrs, setUnset())
}

// HasChanged reports whether any attribute (or the named attribute) changed
// in the last change cycle.
func (m *Model) HasChanged(keys ...string) bool {
	if len(keys) == 0 {
		return len(m.changed) > 0
	}
	for _, key := range keys {
		if _, ok := m.changed[key]; ok {
			return true
		}
	}
	return false
}

// Changed returns a copy of the attributes touched in the last change cycle.
// Unset attributes appear with a nil value.
func (m *Model) Changed() Attrs {
	return m.changed.Copy()
}

// Previous returns an attribute's value before the last change cycle.
func (m *Model) Previous(key string) any {
	return m.previous[key]
}

// PreviousAttributes returns a copy of the full attribute state before the
// last change cycle.
func (m *Model) PreviousAttributes() Attrs {
	return m.previous.Copy()
}

// Validate runs the configured validator against the current attributes and
// records the result. Models without a validator always pass.
func (m *Model) Validate() error {
	if m.validator == nil {
		return nil
	}
	err := m.validator(m.attributes)
	m.validationErr = err
	if err != nil {
		m.Trigger("invalid", m, err)
	}
	return err
}

// ValidationError returns the failure recorded by the last validation, or
// nil when the last validation passed.
func (m *Model) ValidationError() error {
	return m.validationErr
}

// SetOwner records the collection back-reference used for URL resolution.
// Collections call this when a model joins or leaves them.
func (m *Model) SetOwner(owner Owner) {
	m.owner = owner
}

// Owner returns the collection back-reference, or nil.
func (m *Model) Owner() Owner {
	return m.owner
}

// Clone returns a model with the same attributes and configuration but a
// fresh cid and no owner.
func (m *Model) Clone() *Model {
	clone := New(m.attributes,
		WithIDAttribute(m.idAttribute),
		WithURLRoot(m.urlRoot),
	)
	clone.validator = m.validator
	clone.syncer = m.syncer
	return clone
}

// URL resolves the endpoint for this model: its url root, or its owner's
// URL, suffixed with the escaped server id when it has one.
func (m *Model) URL() (string, error) {
	base := m.urlRoot
	if base == "" && m.owner != nil {
		ownerURL, err := m.owner.URL()
		if err != nil {
			return "", err
		}
		base = ownerURL
	}
	if base == "" {
		return "", errors.ErrNoURL
	}
	if m.IsNew() {
		return base, nil
	}
	return joinURL(base, url.PathEscape(m.ID())), nil
}

// joinURL appends a path segment without doubling slashes.
func joinURL(base, segment string) string {
	if base == "" {
		return segment
	}
	if base[len(base)-1] == '/' {
		return base + segment
	}
	return base + "/" + segment
}

// equal compares attribute values structurally.
func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// IDString normalizes a raw id attribute value to its string key form.
// JSON-decoded numeric ids format without a trailing fraction, so 7 and
// 7.0 key identically.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	default:
		return ""
	}
}
