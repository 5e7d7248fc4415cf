package collection

import (
	"github.com/keeldata/keel/pkg/model"
)

// Changes summarizes one reconciliation pass, carried by the "update" event.
type Changes struct {
	Added   []*model.Model
	Removed []*model.Model
	Merged  []*model.Model
}

// HasChanges returns true if the pass touched membership or merged
// attributes.
func (ch Changes) HasChanges() bool {
	return len(ch.Added) > 0 || len(ch.Removed) > 0 || len(ch.Merged) > 0
}

// setItem is one reconciliation input: an existing model or raw attributes.
type setItem struct {
	m     *model.Model
	attrs model.Attrs
}

// Set reconciles the collection's membership against the given models:
// models already present are kept, new ones are added, and members absent
// from the input are removed. It fires, in order, one "add" per added model
// (carrying its insertion index), one "sort" if order changed, and one
// "update" summarizing the pass. Returns the reconciled models in input
// order; nil input is a no-op.
func (c *Collection) Set(models []*model.Model, opts ...SetOption) []*model.Model {
	if models == nil {
		return nil
	}
	return c.reconcile(wrapModels(models), newSetOptions(opts...))
}

// SetOne reconciles a single model, returning its reconciled identity.
func (c *Collection) SetOne(m *model.Model, opts ...SetOption) *model.Model {
	if m == nil {
		return nil
	}
	return first(c.reconcile(wrapModels([]*model.Model{m}), newSetOptions(opts...)))
}

// SetData reconciles against raw attribute items. Items matching an
// existing model by id merge into it; the rest are built through the
// collection's factory. Items the factory rejects are dropped and fire
// "invalid".
func (c *Collection) SetData(items []model.Attrs, opts ...SetOption) []*model.Model {
	if items == nil {
		return nil
	}
	return c.reconcile(wrapAttrs(items), newSetOptions(opts...))
}

// Add adds models to the collection, skipping those already present
// (pass WithMerge to fold their attributes in). Membership is never removed.
func (c *Collection) Add(models []*model.Model, opts ...SetOption) []*model.Model {
	if models == nil {
		return nil
	}
	return c.reconcile(wrapModels(models), addOptions(opts))
}

// AddOne adds a single model, returning its reconciled identity.
func (c *Collection) AddOne(m *model.Model, opts ...SetOption) *model.Model {
	if m == nil {
		return nil
	}
	return first(c.reconcile(wrapModels([]*model.Model{m}), addOptions(opts)))
}

// AddData adds models built from raw attribute items.
func (c *Collection) AddData(items []model.Attrs, opts ...SetOption) []*model.Model {
	if items == nil {
		return nil
	}
	return c.reconcile(wrapAttrs(items), addOptions(opts))
}

// Remove removes the given models, matched by identity, id, or cid. Absent
// models are skipped without error. Batched removals fire one "update".
// Returns the models actually removed.
func (c *Collection) Remove(models []*model.Model, opts ...SetOption) []*model.Model {
	options := newSetOptions(opts...)

	seen := make(map[string]bool, len(models))
	targets := make([]*model.Model, 0, len(models))
	for _, m := range models {
		found := c.Get(m)
		if found == nil || seen[found.CID()] {
			continue
		}
		seen[found.CID()] = true
		targets = append(targets, found)
	}

	removed := c.removeModels(targets, options.silent)
	if !options.silent && len(removed) > 0 {
		c.Trigger("update", c, Changes{Removed: removed})
	}
	return removed
}

// RemoveOne removes a single model, returning it, or nil when absent.
func (c *Collection) RemoveOne(m *model.Model, opts ...SetOption) *model.Model {
	if m == nil {
		return nil
	}
	return first(c.Remove([]*model.Model{m}, opts...))
}

// RemoveByID removes the model matching key (id, cid, or raw attributes),
// returning it, or nil when absent.
func (c *Collection) RemoveByID(key any, opts ...SetOption) *model.Model {
	m := c.Get(key)
	if m == nil {
		return nil
	}
	return c.RemoveOne(m, opts...)
}

// Reset replaces the collection's membership wholesale without add/remove
// events, firing a single "reset" carrying the previous members.
func (c *Collection) Reset(models []*model.Model, opts ...SetOption) []*model.Model {
	options := newSetOptions(opts...)

	previous := c.models
	for _, m := range previous {
		c.removeReference(m)
	}
	c.models = nil
	c.byID = make(map[string]*model.Model)

	added := c.Add(models, Silent())

	if !options.silent {
		c.Trigger("reset", c, previous)
	}
	return added
}

// ResetData replaces membership with models built from raw attribute items.
func (c *Collection) ResetData(items []model.Attrs, opts ...SetOption) []*model.Model {
	options := newSetOptions(opts...)

	previous := c.models
	for _, m := range previous {
		c.removeReference(m)
	}
	c.models = nil
	c.byID = make(map[string]*model.Model)

	added := c.AddData(items, Silent())

	if !options.silent {
		c.Trigger("reset", c, previous)
	}
	return added
}

// reconcile is the single implementation behind Set, SetData, Add, and
// AddData.
func (c *Collection) reconcile(items []setItem, o *setOptions) []*model.Model {
	// Resolve an explicit insertion index, clamped to [0, len]; negative
	// values count from the end plus one.
	var at *int
	if o.at != nil {
		i := *o.at
		if i < 0 {
			i += len(c.models) + 1
		}
		i = clamp(i, 0, len(c.models))
		at = &i
	}

	sortable := c.comparator != nil && at == nil && o.sort
	sortAttr := ""
	if c.comparator != nil {
		sortAttr = c.comparator.sortAttr()
	}

	var kept, toAdd, toMerge, toRemove []*model.Model
	inSet := make(map[string]bool)
	resort := false
	result := make([]*model.Model, 0, len(items))

	for _, item := range items {
		var existing *model.Model
		if item.m != nil {
			existing = c.Get(item.m)
		} else {
			existing = c.Get(item.attrs)
		}

		switch {
		case existing != nil:
			if o.merge && item.m != existing {
				attrs := item.attrs
				if item.m != nil {
					attrs = item.m.Attributes()
				}
				if o.silent {
					_ = existing.Set(attrs, model.Silent())
				} else {
					_ = existing.Set(attrs)
				}
				toMerge = append(toMerge, existing)
				// A merge only forces a resort when it touched the
				// sort key (or touched anything, for comparators whose
				// key can't be named).
				if sortable && !resort {
					if sortAttr != "" {
						resort = existing.HasChanged(sortAttr)
					} else {
						resort = existing.HasChanged()
					}
				}
			}
			if !inSet[existing.CID()] {
				inSet[existing.CID()] = true
				kept = append(kept, existing)
			}
			result = append(result, existing)

		case o.add:
			m := item.m
			if m == nil {
				built, err := c.factory(item.attrs)
				if err != nil || built == nil {
					c.Trigger("invalid", c, item.attrs, err)
					continue
				}
				m = built
			}
			toAdd = append(toAdd, m)
			// Index the model now so duplicates later in this batch
			// resolve to it.
			c.addReference(m)
			inSet[m.CID()] = true
			kept = append(kept, m)
			result = append(result, m)
		}
	}

	if o.remove {
		for _, m := range c.models {
			if !inSet[m.CID()] {
				toRemove = append(toRemove, m)
			}
		}
		if len(toRemove) > 0 {
			c.removeModels(toRemove, o.silent)
		}
	}

	// Structural update. A full replace (both add and remove enabled, no
	// comparator-driven sort pending) swaps the backing list wholesale,
	// so the kept models take the input's order even when membership is
	// unchanged. Otherwise only the new models are spliced in.
	orderChanged := false
	replace := !sortable && o.add && o.remove
	if len(kept) > 0 && replace {
		orderChanged = len(c.models) != len(kept)
		if !orderChanged {
			for i, m := range c.models {
				if m != kept[i] {
					orderChanged = true
					break
				}
			}
		}
		c.models = append(c.models[:0], kept...)
	} else if len(toAdd) > 0 {
		if sortable {
			resort = true
		}
		index := len(c.models)
		if at != nil {
			index = *at
		}
		c.models = splice(c.models, toAdd, index)
	}

	if resort {
		c.Sort(Silent())
	}

	if !o.silent {
		for i, m := range toAdd {
			index := i
			if at != nil {
				index = *at + i
			} else {
				index = c.IndexOf(m)
			}
			m.Trigger("add", m, c, index)
		}
		if resort || orderChanged {
			c.Trigger("sort", c)
		}
		changes := Changes{Added: toAdd, Removed: toRemove, Merged: toMerge}
		if changes.HasChanges() {
			c.Trigger("update", c, changes)
		}
	}

	return result
}

// removeModels splices models out one at a time. The index is purged before
// the "remove" event fires, so a listener looking the model up during
// dispatch observes its absence.
func (c *Collection) removeModels(toRemove []*model.Model, silent bool) []*model.Model {
	removed := make([]*model.Model, 0, len(toRemove))
	for _, m := range toRemove {
		index := -1
		for i, cur := range c.models {
			if cur == m {
				index = i
				break
			}
		}
		if index == -1 {
			continue
		}

		c.models = append(c.models[:index], c.models[index+1:]...)
		c.unindex(m)

		if !silent {
			m.Trigger("remove", m, c, index)
		}

		removed = append(removed, m)
		c.removeReference(m)
	}
	return removed
}

// addOptions forces add-only reconciliation: merge defaults off, membership
// is never removed.
func addOptions(opts []SetOption) *setOptions {
	options := newSetOptions(append([]SetOption{WithoutMerge()}, opts...)...)
	options.add = true
	options.remove = false
	return options
}

func wrapModels(models []*model.Model) []setItem {
	items := make([]setItem, 0, len(models))
	for _, m := range models {
		if m == nil {
			continue
		}
		items = append(items, setItem{m: m})
	}
	return items
}

func wrapAttrs(attrs []model.Attrs) []setItem {
	items := make([]setItem, 0, len(attrs))
	for _, a := range attrs {
		items = append(items, setItem{attrs: a})
	}
	return items
}

// splice inserts items into list at index, preserving order.
func splice(list, items []*model.Model, index int) []*model.Model {
	out := make([]*model.Model, 0, len(list)+len(items))
	out = append(out, list[:index]...)
	out = append(out, items...)
	out = append(out, list[index:]...)
	return out
}

func first(models []*model.Model) *model.Model {
	if len(models) == 0 {
		return nil
	}
	return models[0]
}
