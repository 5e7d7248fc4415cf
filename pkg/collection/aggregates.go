package collection

import (
	"math/rand"

	"github.com/keeldata/keel/pkg/model"
)

// Aggregate operations over the collection's ordered backing list. Each
// takes a Selector, so callers pass a field name (Accessor), a match object
// (Matcher), or a function (Predicate/Derive) interchangeably.

// Each calls fn for every model, in order.
func (c *Collection) Each(fn func(m *model.Model, index int)) {
	for i, m := range c.models {
		fn(m, i)
	}
}

// Map collects the selector's value for every model, in order.
func (c *Collection) Map(sel Selector) []any {
	out := make([]any, len(c.models))
	for i, m := range c.models {
		out[i] = sel.Value(m)
	}
	return out
}

// Reduce folds the models left to right.
func (c *Collection) Reduce(fn func(acc any, m *model.Model, index int) any, initial any) any {
	acc := initial
	for i, m := range c.models {
		acc = fn(acc, m, i)
	}
	return acc
}

// Filter returns the models matching the selector, in order.
func (c *Collection) Filter(sel Selector) []*model.Model {
	var out []*model.Model
	for _, m := range c.models {
		if sel.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Reject returns the models not matching the selector, in order.
func (c *Collection) Reject(sel Selector) []*model.Model {
	var out []*model.Model
	for _, m := range c.models {
		if !sel.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the first model matching the selector, or nil.
func (c *Collection) Find(sel Selector) *model.Model {
	for _, m := range c.models {
		if sel.Match(m) {
			return m
		}
	}
	return nil
}

// Every reports whether all models match the selector.
func (c *Collection) Every(sel Selector) bool {
	for _, m := range c.models {
		if !sel.Match(m) {
			return false
		}
	}
	return true
}

// Some reports whether any model matches the selector.
func (c *Collection) Some(sel Selector) bool {
	for _, m := range c.models {
		if sel.Match(m) {
			return true
		}
	}
	return false
}

// Contains reports whether the model is a member.
func (c *Collection) Contains(m *model.Model) bool {
	return c.Get(m) != nil
}

// Where returns the models whose attributes equal every given pair.
func (c *Collection) Where(attrs model.Attrs) []*model.Model {
	return c.Filter(Matcher(attrs))
}

// FindWhere returns the first model whose attributes equal every given
// pair, or nil.
func (c *Collection) FindWhere(attrs model.Attrs) *model.Model {
	return c.Find(Matcher(attrs))
}

// SortBy returns the models ordered by the selector's value, stably,
// without touching the collection's own order.
func (c *Collection) SortBy(sel Selector) []*model.Model {
	out := c.Models()
	ByKey(func(m *model.Model) any { return sel.Value(m) }).sort(out)
	return out
}

// GroupBy buckets models by the string form of the selector's value,
// preserving order within each bucket.
func (c *Collection) GroupBy(sel Selector) map[string][]*model.Model {
	out := make(map[string][]*model.Model)
	for _, m := range c.models {
		key := stringValue(sel.Value(m))
		out[key] = append(out[key], m)
	}
	return out
}

// CountBy tallies models by the string form of the selector's value.
func (c *Collection) CountBy(sel Selector) map[string]int {
	out := make(map[string]int)
	for _, m := range c.models {
		out[stringValue(sel.Value(m))]++
	}
	return out
}

// IndexBy maps the string form of the selector's value to the last model
// producing it.
func (c *Collection) IndexBy(sel Selector) map[string]*model.Model {
	out := make(map[string]*model.Model)
	for _, m := range c.models {
		out[stringValue(sel.Value(m))] = m
	}
	return out
}

// MinBy returns the model with the smallest selector value, or nil when
// empty.
func (c *Collection) MinBy(sel Selector) *model.Model {
	var best *model.Model
	var bestVal any
	for _, m := range c.models {
		v := sel.Value(m)
		if best == nil || compareValues(v, bestVal) < 0 {
			best, bestVal = m, v
		}
	}
	return best
}

// MaxBy returns the model with the largest selector value, or nil when
// empty.
func (c *Collection) MaxBy(sel Selector) *model.Model {
	var best *model.Model
	var bestVal any
	for _, m := range c.models {
		v := sel.Value(m)
		if best == nil || compareValues(v, bestVal) > 0 {
			best, bestVal = m, v
		}
	}
	return best
}

// Partition splits the models into those matching the selector and those
// not, both in order.
func (c *Collection) Partition(sel Selector) (matching, rest []*model.Model) {
	for _, m := range c.models {
		if sel.Match(m) {
			matching = append(matching, m)
		} else {
			rest = append(rest, m)
		}
	}
	return matching, rest
}

// ToSlice returns the models as a plain slice, in order.
func (c *Collection) ToSlice() []*model.Model {
	return c.Models()
}

// First returns the first model, or nil when empty.
func (c *Collection) First() *model.Model {
	return c.At(0)
}

// Last returns the last model, or nil when empty.
func (c *Collection) Last() *model.Model {
	return c.At(len(c.models) - 1)
}

// FirstN returns up to n models from the front.
func (c *Collection) FirstN(n int) []*model.Model {
	return c.Slice(0, clamp(n, 0, len(c.models)))
}

// LastN returns up to n models from the back.
func (c *Collection) LastN(n int) []*model.Model {
	n = clamp(n, 0, len(c.models))
	return c.Slice(len(c.models)-n, len(c.models))
}

// Shuffle returns the models in random order.
func (c *Collection) Shuffle() []*model.Model {
	out := c.Models()
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Sample returns up to n models drawn at random without replacement.
func (c *Collection) Sample(n int) []*model.Model {
	out := c.Shuffle()
	return out[:clamp(n, 0, len(out))]
}
