package collection

import (
	"reflect"

	"github.com/keeldata/keel/pkg/model"
)

// Selector is the typed argument the aggregate operations take wherever a
// field name, a match object, or a function would be accepted. Build one
// with Accessor, Predicate, Matcher, or Derive.
type Selector struct {
	field string
	pred  func(*model.Model) bool
	attrs model.Attrs
	fn    func(*model.Model) any
}

// Accessor selects by attribute: Value extracts the named attribute, Match
// tests it for truthiness.
func Accessor(field string) Selector {
	return Selector{field: field}
}

// Predicate selects by function.
func Predicate(fn func(*model.Model) bool) Selector {
	return Selector{pred: fn}
}

// Matcher selects models whose attributes equal every given pair.
func Matcher(attrs model.Attrs) Selector {
	return Selector{attrs: attrs}
}

// Derive computes an arbitrary value per model, for value-producing
// operations like Map, SortBy, and GroupBy.
func Derive(fn func(*model.Model) any) Selector {
	return Selector{fn: fn}
}

// Value extracts the selector's value for a model.
func (s Selector) Value(m *model.Model) any {
	switch {
	case s.fn != nil:
		return s.fn(m)
	case s.pred != nil:
		return s.pred(m)
	case s.attrs != nil:
		return s.matches(m)
	default:
		return m.Get(s.field)
	}
}

// Match reports whether a model satisfies the selector.
func (s Selector) Match(m *model.Model) bool {
	switch {
	case s.pred != nil:
		return s.pred(m)
	case s.attrs != nil:
		return s.matches(m)
	case s.fn != nil:
		return truthy(s.fn(m))
	default:
		return truthy(m.Get(s.field))
	}
}

func (s Selector) matches(m *model.Model) bool {
	for key, want := range s.attrs {
		if !equal(m.Get(key), want) {
			return false
		}
	}
	return true
}

// equal compares attribute values structurally.
func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// truthy follows attribute-value truthiness: nil, false, empty strings, and
// numeric zero are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return true
	}
}
