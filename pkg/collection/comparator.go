package collection

import (
	"fmt"
	"sort"

	"github.com/keeldata/keel/pkg/model"
)

// Comparator defines the ordering of a sorted collection. Exactly one of
// the three variants is active: a field name, a one-argument key extractor,
// or a two-argument less function. The first two sort by comparing extracted
// keys; the last compares models directly. All variants sort stably.
type Comparator struct {
	field string
	key   func(*model.Model) any
	less  func(a, b *model.Model) bool
}

// ByField orders models by the named attribute.
func ByField(field string) *Comparator {
	return &Comparator{field: field}
}

// ByKey orders models by an extracted sort key.
func ByKey(fn func(*model.Model) any) *Comparator {
	return &Comparator{key: fn}
}

// ByLess orders models by a direct two-argument comparison.
func ByLess(fn func(a, b *model.Model) bool) *Comparator {
	return &Comparator{less: fn}
}

// sortAttr returns the attribute the ordering depends on, or "" when the
// dependency cannot be named (function comparators).
func (c *Comparator) sortAttr() string {
	return c.field
}

// sort orders models in place, stably.
func (c *Comparator) sort(models []*model.Model) {
	switch {
	case c.less != nil:
		sort.SliceStable(models, func(i, j int) bool {
			return c.less(models[i], models[j])
		})
	case c.key != nil:
		sort.SliceStable(models, func(i, j int) bool {
			return compareValues(c.key(models[i]), c.key(models[j])) < 0
		})
	default:
		sort.SliceStable(models, func(i, j int) bool {
			return compareValues(models[i].Get(c.field), models[j].Get(c.field)) < 0
		})
	}
}

// compareValues orders two attribute values: nil first, numbers numerically,
// booleans false before true; mixed or opaque types fall back to their
// string forms so the ordering stays total.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	sa, sb := stringValue(a), stringValue(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// toFloat widens any numeric attribute value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// stringValue renders a value for fallback comparison and grouping keys.
func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
